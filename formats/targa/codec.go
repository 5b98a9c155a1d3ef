// Package targa registers Truevision TGA images backed by
// github.com/ftrvxmtrx/tga.
package targa

import (
	"fmt"
	"io"

	"github.com/ftrvxmtrx/tga"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

// Width and height are 16-bit header fields
const maxDimension = 65535

// Codec implements codec.Encoder and codec.Decoder for TGA
type Codec struct{}

// NewCodec creates a TGA codec
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns the format name
func (c *Codec) Name() string { return "targa" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"tga", "tpic"} }

// Encode writes buf as an uncompressed true color image
func (c *Codec) Encode(w io.Writer, buf *imagebuf.Buffer, opts codec.EncodeOptions) error {
	if err := opts.Validate(imagebuf.UInt8); err != nil {
		return err
	}
	if err := codec.CheckChannels(buf, 1, 3, 4); err != nil {
		return err
	}
	if buf.Width > maxDimension || buf.Height > maxDimension {
		return codec.ErrImageTooLarge
	}
	return tga.Encode(w, buf.Image())
}

// Decode reads a TGA, raw or run-length encoded
func (c *Codec) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	img, err := tga.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codec.ErrInvalidData, err)
	}
	return imagebuf.FromImage(img)
}

func init() {
	codec.Register(NewCodec())
}
