// Package tiff registers the TIFF format backed by golang.org/x/image/tiff.
package tiff

import (
	"io"
	"os"

	"golang.org/x/image/tiff"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

// Codec implements codec.Encoder, codec.Decoder and codec.FileDecoder for TIFF
type Codec struct {
	options tiff.Options
}

// NewCodec creates a TIFF codec writing deflate-compressed strips with the
// horizontal predictor.
func NewCodec() *Codec {
	return &Codec{options: tiff.Options{Compression: tiff.Deflate, Predictor: true}}
}

// Name returns the format name
func (c *Codec) Name() string { return "tiff" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"tif", "tiff"} }

// Encode writes buf as a classic (32-bit offset) TIFF
func (c *Codec) Encode(w io.Writer, buf *imagebuf.Buffer, opts codec.EncodeOptions) error {
	if err := opts.Validate(imagebuf.UInt8); err != nil {
		return err
	}
	opt := c.options
	return tiff.Encode(w, buf.Image(), &opt)
}

// Decode reads a TIFF from a stream. The decoder needs random access, so
// a plain stream is buffered whole; DecodeFile avoids that copy.
func (c *Codec) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, err
	}
	return imagebuf.FromImage(img)
}

// DecodeFile reads a TIFF through the file's ReaderAt
func (c *Codec) DecodeFile(path string) (*imagebuf.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.Decode(f)
}

func init() {
	codec.Register(NewCodec())
}
