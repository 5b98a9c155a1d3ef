package pnm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/cocosip/go-image-big64/codec"
)

func TestRoundTrip(t *testing.T) {
	c := NewCodec()
	for _, ch := range []int{1, 3} {
		src, err := codec.NewPatternBuffer(41, 19, ch)
		if err != nil {
			t.Fatalf("NewPatternBuffer failed: %v", err)
		}
		got, n, err := codec.RoundTrip(c, c, src, codec.EncodeOptions{})
		if err != nil {
			t.Fatalf("RoundTrip(ch %d) failed: %v", ch, err)
		}
		t.Logf("ch %d: %d bytes", ch, n)

		if got.Width != src.Width || got.Height != src.Height || got.Channels != ch {
			t.Fatalf("Decoded %s, want %s", got, src)
		}
		diff, err := codec.MaxSampleDiff(src, got)
		if err != nil {
			t.Fatal(err)
		}
		if diff != 0 {
			t.Errorf("ch %d: max sample difference %d, want 0", ch, diff)
		}
	}
}

func TestEncodeHeader(t *testing.T) {
	tests := []struct {
		channels int
		magic    string
	}{
		{1, "P5"},
		{3, "P6"},
	}
	for _, tt := range tests {
		src, _ := codec.NewPatternBuffer(3, 2, tt.channels)
		var data bytes.Buffer
		if err := NewCodec().Encode(&data, src, codec.EncodeOptions{}); err != nil {
			t.Fatalf("Encode(ch %d) failed: %v", tt.channels, err)
		}
		if !bytes.HasPrefix(data.Bytes(), []byte(tt.magic)) {
			t.Errorf("ch %d: header %q, want %s", tt.channels, data.Bytes()[:2], tt.magic)
		}
		if want := len(src.Pix); data.Len() < want || !bytes.HasSuffix(data.Bytes(), src.Pix) {
			t.Errorf("ch %d: raster is not the raw samples", tt.channels)
		}
	}
}

func TestDecodeHeaderComments(t *testing.T) {
	data := "P5\n# made by hand\n3 2\n255\n\x00\x01\x02\x03\x04\x05"
	got, err := NewCodec().Decode(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Width != 3 || got.Height != 2 || got.Channels != 1 {
		t.Fatalf("Decoded %s, want 3x2 ch 1", got)
	}
	if got.Pix[5] != 5 {
		t.Errorf("Pix[5] = %d, want 5", got.Pix[5])
	}
}

func TestDecodeWideSamples(t *testing.T) {
	data := "P5\n2 1\n65535\n\x00\x00\xff\xff"
	got, err := NewCodec().Decode(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Pix[0] != 0 || got.Pix[1] != 255 {
		t.Errorf("Pix = %v, want [0 255]", got.Pix)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not netpbm", "GIF89a"},
		{"truncated", "P6\n2 2\n255\n\x00\x00\x00"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCodec().Decode(strings.NewReader(tt.data))
			if !errors.Is(err, codec.ErrInvalidData) {
				t.Errorf("Decode error = %v, want ErrInvalidData", err)
			}
		})
	}
}

func TestEncodeRejectsAlpha(t *testing.T) {
	src, _ := codec.NewPatternBuffer(2, 2, 4)
	_, _, err := codec.RoundTrip(NewCodec(), NewCodec(), src, codec.EncodeOptions{})
	if !errors.Is(err, codec.ErrUnsupportedChannels) {
		t.Errorf("Encode(ch 4) error = %v, want ErrUnsupportedChannels", err)
	}
}
