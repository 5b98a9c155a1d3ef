// Package codec defines the image file-format plugin interfaces and the
// registry the sweep enumerates. Plugins live under formats/ and register
// themselves from init().
package codec

import (
	"io"

	"github.com/cocosip/go-image-big64/imagebuf"
)

// Format is the minimal interface every plugin implements
type Format interface {
	// Name returns the format name used for lookups, e.g. "png"
	Name() string

	// Extensions returns the file extensions claimed by the format, preferred first
	Extensions() []string
}

// Encoder is a format that can write images
type Encoder interface {
	Format

	// Encode writes buf to w
	Encode(w io.Writer, buf *imagebuf.Buffer, opts EncodeOptions) error
}

// Decoder is a format that can read images from a stream
type Decoder interface {
	Format

	// Decode reads an image and returns it as an 8-bit buffer
	Decode(r io.Reader) (*imagebuf.Buffer, error)
}

// FileDecoder is a format whose reader needs a path rather than a stream.
// ReadFile prefers it over Decoder when a format implements both.
type FileDecoder interface {
	Format

	DecodeFile(path string) (*imagebuf.Buffer, error)
}

// EncodeOptions contains parameters for encoding
type EncodeOptions struct {
	// PixelType is the requested on-disk sample type. Unknown means UInt8.
	PixelType imagebuf.PixelType
}

// Validate checks the options against the pixel types an encoder supports
func (o EncodeOptions) Validate(supported ...imagebuf.PixelType) error {
	pt := o.PixelType
	if pt == imagebuf.Unknown {
		pt = imagebuf.UInt8
	}
	for _, s := range supported {
		if s == pt {
			return nil
		}
	}
	return ErrUnsupportedPixelType
}

// CheckChannels returns ErrUnsupportedChannels unless buf has one of the given channel counts
func CheckChannels(buf *imagebuf.Buffer, allowed ...int) error {
	if buf == nil {
		return ErrInvalidParameter
	}
	for _, n := range allowed {
		if buf.Channels == n {
			return nil
		}
	}
	return ErrUnsupportedChannels
}
