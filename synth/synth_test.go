package synth

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cocosip/go-image-big64/imagebuf"
)

func TestGenerateDeterministic(t *testing.T) {
	g := Generator{}
	for _, ch := range []int{1, 3, 4} {
		a, err := g.Generate(64, ch, imagebuf.UInt8)
		if err != nil {
			t.Fatalf("Generate(ch %d) failed: %v", ch, err)
		}
		b, err := g.Generate(64, ch, imagebuf.UInt8)
		if err != nil {
			t.Fatalf("Generate(ch %d) failed: %v", ch, err)
		}
		for _, xy := range [][2]int{{0, 0}, {63, 0}, {0, 63}, {63, 63}} {
			pa, pb := a.Pixel(xy[0], xy[1]), b.Pixel(xy[0], xy[1])
			if !bytes.Equal(pa, pb) {
				t.Errorf("ch %d pixel %v differs: %v vs %v", ch, xy, pa, pb)
			}
		}
		if !bytes.Equal(a.Pix, b.Pix) {
			t.Errorf("ch %d: buffers differ", ch)
		}
	}
}

func TestGenerateCorners(t *testing.T) {
	buf, err := Generator{}.Generate(1024, 4, imagebuf.UInt8)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	tests := []struct {
		x, y int
		want []byte
	}{
		{0, 0, []byte{0, 0, 0, 255}},
		{1023, 0, []byte{255, 0, 0, 255}},
		{0, 1023, []byte{0, 255, 0, 255}},
		{1023, 1023, []byte{255, 255, 0, 255}},
	}
	for _, tt := range tests {
		if got := buf.Pixel(tt.x, tt.y); !bytes.Equal(got, tt.want) {
			t.Errorf("Pixel(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		g    Generator
		res  int
		ch   int
		pt   imagebuf.PixelType
		want error
	}{
		{"float", Generator{}, 16, 3, imagebuf.Float32, ErrUnsupported},
		{"uint16", Generator{}, 16, 3, imagebuf.UInt16, ErrUnsupported},
		{"below floor", Generator{}, 3, 3, imagebuf.UInt8, ErrUnsupported},
		{"over limit", Generator{MemoryLimit: 100}, 16, 3, imagebuf.UInt8, ErrAllocation},
		{"overflow", Generator{}, 1 << 40, 4, imagebuf.UInt8, ErrAllocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := tt.g.Generate(tt.res, tt.ch, tt.pt)
			if !errors.Is(err, tt.want) {
				t.Errorf("Generate error = %v, want %v", err, tt.want)
			}
			if buf != nil {
				t.Errorf("Generate returned a buffer with error")
			}
		})
	}
}

func TestGenerateChannels(t *testing.T) {
	buf, err := Generator{MemoryLimit: 1 << 20}.Generate(16, 1, imagebuf.Unknown)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if buf.Channels != 1 || len(buf.Pix) != 16*16 {
		t.Errorf("Generate = %s with %d bytes, want 16x16 ch 1", buf, len(buf.Pix))
	}
}
