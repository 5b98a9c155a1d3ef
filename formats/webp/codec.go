// Package webp registers the WebP format. Images are written lossless with
// github.com/HugoSmits86/nativewebp and read with golang.org/x/image/webp.
package webp

import (
	"io"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/webp"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

// maxDimension is the VP8L limit: width and height are stored in 14 bits
const maxDimension = 16384

// Codec implements codec.Encoder and codec.Decoder for WebP
type Codec struct{}

// NewCodec creates a WebP codec
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns the format name
func (c *Codec) Name() string { return "webp" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"webp"} }

// Encode writes buf as lossless (VP8L) WebP
func (c *Codec) Encode(w io.Writer, buf *imagebuf.Buffer, opts codec.EncodeOptions) error {
	if err := opts.Validate(imagebuf.UInt8); err != nil {
		return err
	}
	if buf.Width > maxDimension || buf.Height > maxDimension {
		return codec.ErrImageTooLarge
	}
	return nativewebp.Encode(w, buf.Image(), nil)
}

// Decode reads a WebP
func (c *Codec) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	img, err := webp.Decode(r)
	if err != nil {
		return nil, err
	}
	return imagebuf.FromImage(img)
}

func init() {
	codec.Register(NewCodec())
}
