// Package png registers the PNG format backed by image/png.
package png

import (
	"image/png"
	"io"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

// Codec implements codec.Encoder and codec.Decoder for PNG
type Codec struct {
	encoder png.Encoder
}

// NewCodec creates a PNG codec. Huge images are written with the fastest
// deflate level; the sweep measures container limits, not compression.
func NewCodec() *Codec {
	return &Codec{encoder: png.Encoder{CompressionLevel: png.BestSpeed}}
}

// Name returns the format name
func (c *Codec) Name() string { return "png" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"png"} }

// Encode writes buf as 8- or 16-bit PNG
func (c *Codec) Encode(w io.Writer, buf *imagebuf.Buffer, opts codec.EncodeOptions) error {
	if err := opts.Validate(imagebuf.UInt8, imagebuf.UInt16); err != nil {
		return err
	}
	if opts.PixelType == imagebuf.UInt16 {
		return c.encoder.Encode(w, buf.Image16())
	}
	return c.encoder.Encode(w, buf.Image())
}

// Decode reads a PNG, narrowing 16-bit samples to 8 bits
func (c *Codec) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, err
	}
	return imagebuf.FromImage(img)
}

func init() {
	codec.Register(NewCodec())
}
