// Package null registers a write-only format that discards its input.
// The sweep excludes it by default.
package null

import (
	"io"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

// Codec implements codec.Encoder only
type Codec struct{}

// NewCodec creates a null codec
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns the format name
func (c *Codec) Name() string { return "null" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"null"} }

// Encode accepts any buffer and writes nothing
func (c *Codec) Encode(w io.Writer, buf *imagebuf.Buffer, opts codec.EncodeOptions) error {
	if buf == nil {
		return codec.ErrInvalidParameter
	}
	return nil
}

func init() {
	codec.Register(NewCodec())
}
