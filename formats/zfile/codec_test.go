package zfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

func TestRoundTrip(t *testing.T) {
	c := NewCodec()
	for _, ch := range []int{1} {
		src, err := codec.NewPatternBuffer(41, 19, ch)
		if err != nil {
			t.Fatalf("NewPatternBuffer failed: %v", err)
		}
		got, n, err := codec.RoundTrip(c, c, src, codec.EncodeOptions{})
		if err != nil {
			t.Fatalf("RoundTrip(ch %d) failed: %v", ch, err)
		}
		t.Logf("ch %d: %d bytes", ch, n)

		if got.Width != src.Width || got.Height != src.Height {
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

func TestUncompressedLayout(t *testing.T) {
	src, _ := imagebuf.New(2, 1, 1)
	src.Pix[0], src.Pix[1] = 0, 255
	c := &Codec{}
	var data bytes.Buffer
	if err := c.Encode(&data, src, codec.EncodeOptions{PixelType: imagebuf.Float32}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	raw := data.Bytes()
	if len(raw) != headerSize+2*4 {
		t.Fatalf("Encoded size = %d, want %d", len(raw), headerSize+8)
	}
	if got := binary.LittleEndian.Uint32(raw); got != magic {
		t.Errorf("magic = %#x, want %#x", got, magic)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[headerSize+4:])); got != 1 {
		t.Errorf("Second depth = %g, want 1", got)
	}

	got, err := c.Decode(&data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(got.Pix, src.Pix) {
		t.Errorf("Pix = %v, want %v", got.Pix, src.Pix)
	}
}

func TestCompressedIsGzip(t *testing.T) {
	src, _ := codec.NewPatternBuffer(8, 8, 1)
	var data bytes.Buffer
	if err := NewCodec().Encode(&data, src, codec.EncodeOptions{}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if b := data.Bytes(); b[0] != 0x1f || b[1] != 0x8b {
		t.Errorf("Output starts with % x, want gzip magic", b[:2])
	}
}

func TestEncodeRejectsColor(t *testing.T) {
	src, _ := codec.NewPatternBuffer(4, 4, 3)
	err := NewCodec().Encode(&bytes.Buffer{}, src, codec.EncodeOptions{})
	if !errors.Is(err, codec.ErrUnsupportedChannels) {
		t.Errorf("Encode(ch 3) error = %v, want ErrUnsupportedChannels", err)
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-1, 0},
		{float32(math.NaN()), 0},
		{0.5, 128},
		{1.5, 255},
		{float32(100) / 255, 100},
	}
	for _, tt := range tests {
		if got := quantize(tt.in); got != tt.want {
			t.Errorf("quantize(%g) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
