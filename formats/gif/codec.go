// Package gif registers the GIF format backed by image/gif. Images are
// quantized to the Plan 9 palette with Floyd-Steinberg dithering, so round
// trips are lossy.
package gif

import (
	"image/gif"
	"io"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

const maxDimension = 65535

// Codec implements codec.Encoder and codec.Decoder for GIF
type Codec struct{}

// NewCodec creates a GIF codec
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns the format name
func (c *Codec) Name() string { return "gif" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"gif"} }

// Encode writes buf as a single-frame GIF
func (c *Codec) Encode(w io.Writer, buf *imagebuf.Buffer, opts codec.EncodeOptions) error {
	if err := opts.Validate(imagebuf.UInt8); err != nil {
		return err
	}
	if buf.Width > maxDimension || buf.Height > maxDimension {
		return codec.ErrImageTooLarge
	}
	return gif.Encode(w, buf.Image(), &gif.Options{NumColors: 256})
}

// Decode reads the first frame of a GIF
func (c *Codec) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	img, err := gif.Decode(r)
	if err != nil {
		return nil, err
	}
	return imagebuf.FromImage(img)
}

func init() {
	codec.Register(NewCodec())
}
