// Package jpeg registers the baseline JPEG format backed by image/jpeg.
package jpeg

import (
	"image/jpeg"
	"io"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

// DefaultQuality is the quality used when Codec.Quality is zero
const DefaultQuality = 100

// maxDimension is the largest width or height a SOF segment can describe
const maxDimension = 65535

// Codec implements codec.Encoder and codec.Decoder for JPEG
type Codec struct {
	// Quality 1-100, zero means DefaultQuality
	Quality int
}

// NewCodec creates a JPEG codec
func NewCodec() *Codec {
	return &Codec{Quality: DefaultQuality}
}

// Name returns the format name
func (c *Codec) Name() string { return "jpeg" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"jpg", "jpe", "jpeg", "jif", "jfif"} }

// Encode writes buf as baseline JPEG. Alpha is dropped.
func (c *Codec) Encode(w io.Writer, buf *imagebuf.Buffer, opts codec.EncodeOptions) error {
	if err := opts.Validate(imagebuf.UInt8); err != nil {
		return err
	}
	if buf.Width > maxDimension || buf.Height > maxDimension {
		return codec.ErrImageTooLarge
	}
	q := c.Quality
	if q == 0 {
		q = DefaultQuality
	}
	if q < 1 || q > 100 {
		return codec.ErrInvalidParameter
	}
	return jpeg.Encode(w, buf.Image(), &jpeg.Options{Quality: q})
}

// Decode reads a JPEG
func (c *Codec) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	img, err := jpeg.Decode(r)
	if err != nil {
		return nil, err
	}
	return imagebuf.FromImage(img)
}

func init() {
	codec.Register(NewCodec())
}
