package png

import (
	"errors"
	"testing"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		channels  int
		pixelType imagebuf.PixelType
		wantCh    int
	}{
		{"gray8", 1, imagebuf.UInt8, 1},
		{"rgb8", 3, imagebuf.UInt8, 3},
		{"rgba8", 4, imagebuf.UInt8, 4},
		{"gray16", 1, imagebuf.UInt16, 1},
		{"rgb16", 3, imagebuf.UInt16, 3},
		{"rgba16", 4, imagebuf.UInt16, 4},
	}

	c := NewCodec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := codec.NewPatternBuffer(37, 23, tt.channels)
			if err != nil {
				t.Fatalf("NewPatternBuffer failed: %v", err)
			}
			got, n, err := codec.RoundTrip(c, c, src, codec.EncodeOptions{PixelType: tt.pixelType})
			if err != nil {
				t.Fatalf("RoundTrip failed: %v", err)
			}
			t.Logf("Encoded size: %d bytes", n)

			if got.Channels != tt.wantCh {
				t.Errorf("Channels = %d, want %d", got.Channels, tt.wantCh)
			}
			diff, err := codec.MaxSampleDiff(src, got)
			if err != nil {
				t.Fatal(err)
			}
			if diff != 0 {
				t.Errorf("Max sample difference = %d, want 0 (lossless)", diff)
			}
		})
	}
}

func TestEncodeRejectsFloat(t *testing.T) {
	src, _ := codec.NewPatternBuffer(4, 4, 3)
	_, _, err := codec.RoundTrip(NewCodec(), NewCodec(), src, codec.EncodeOptions{PixelType: imagebuf.Float32})
	if !errors.Is(err, codec.ErrUnsupportedPixelType) {
		t.Errorf("Encode(float) error = %v, want ErrUnsupportedPixelType", err)
	}
}
