// Package pnm registers the binary Netpbm formats backed by
// github.com/spakin/netpbm. Gray buffers are written as P5 and RGB buffers
// as P6, both with a maximum value of 255.
package pnm

import (
	"fmt"
	"io"

	"github.com/spakin/netpbm"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

// Codec implements codec.Encoder and codec.Decoder for PNM
type Codec struct{}

// NewCodec creates a PNM codec
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns the format name
func (c *Codec) Name() string { return "pnm" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"ppm", "pgm", "pnm"} }

// Encode writes one channel buffers as P5 and three channel buffers as P6
func (c *Codec) Encode(w io.Writer, buf *imagebuf.Buffer, opts codec.EncodeOptions) error {
	if err := opts.Validate(imagebuf.UInt8); err != nil {
		return err
	}
	if err := codec.CheckChannels(buf, 1, 3); err != nil {
		return err
	}
	format := netpbm.PPM
	if buf.Channels == 1 {
		format = netpbm.PGM
	}
	return netpbm.Encode(w, buf.Image(), &netpbm.EncodeOptions{
		Format:   format,
		MaxValue: 255,
	})
}

// Decode reads a PGM or PPM image, raw or plain. Bitmaps are promoted to
// gray by luma and samples wider than 8 bits are scaled down.
func (c *Codec) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	img, err := netpbm.Decode(r, &netpbm.DecodeOptions{Target: netpbm.PNM})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codec.ErrInvalidData, err)
	}
	switch img.Format() {
	case netpbm.PBM, netpbm.PGM:
		return imagebuf.FromImageChannels(img, 1)
	case netpbm.PPM:
		return imagebuf.FromImageChannels(img, 3)
	}
	return nil, fmt.Errorf("%w: unsupported netpbm format %v", codec.ErrInvalidData, img.Format())
}

func init() {
	codec.Register(NewCodec())
}
