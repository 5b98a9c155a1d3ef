// Package bmp registers the Windows BMP format backed by golang.org/x/image/bmp.
package bmp

import (
	"io"

	"golang.org/x/image/bmp"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

// Codec implements codec.Encoder and codec.Decoder for BMP
type Codec struct{}

// NewCodec creates a BMP codec
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns the format name
func (c *Codec) Name() string { return "bmp" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"bmp", "dib"} }

// Encode writes buf as an uncompressed BMP. The file and image size fields
// are 32-bit, so anything past 4 GiB is refused.
func (c *Codec) Encode(w io.Writer, buf *imagebuf.Buffer, opts codec.EncodeOptions) error {
	if err := opts.Validate(imagebuf.UInt8); err != nil {
		return err
	}
	if fileSize(buf) > 1<<32-1 {
		return codec.ErrImageTooLarge
	}
	return bmp.Encode(w, buf.Image())
}

// Decode reads a BMP
func (c *Codec) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	img, err := bmp.Decode(r)
	if err != nil {
		return nil, err
	}
	return imagebuf.FromImage(img)
}

// fileSize estimates the encoded size: 54 header bytes plus rows padded to
// four bytes, 32 bits per pixel with alpha and 24 otherwise.
func fileSize(buf *imagebuf.Buffer) int64 {
	bpp := int64(3)
	switch buf.Channels {
	case 1:
		bpp = 1
	case 2, 4:
		bpp = 4
	}
	row := (int64(buf.Width)*bpp + 3) &^ 3
	return 54 + 1024 + row*int64(buf.Height)
}

func init() {
	codec.Register(NewCodec())
}
