// Package imagebuf holds the in-memory pixel buffer the sweep works on:
// an 8-bit interleaved image plus the fill, compare and image.Image
// conversion primitives the codecs and the verifier share.
package imagebuf

import (
	"fmt"
	"math"
	"strings"
)

// MaxChannels is the largest channel count a Buffer can hold
const MaxChannels = 4

// PixelType names the per-channel storage type requested from a codec
type PixelType int

const (
	Unknown PixelType = iota
	UInt8
	UInt16
	Float32
)

func (t PixelType) String() string {
	switch t {
	case UInt8:
		return "uint8"
	case UInt16:
		return "uint16"
	case Float32:
		return "float"
	default:
		return "unknown"
	}
}

// ParsePixelType converts a pixel type name such as "uint8" into a PixelType
func ParsePixelType(s string) (PixelType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uint8", "u8":
		return UInt8, nil
	case "uint16", "u16":
		return UInt16, nil
	case "float", "float32", "f32":
		return Float32, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownPixelType, s)
}

// ROI is a half-open rectangle [XBegin, XEnd) x [YBegin, YEnd)
type ROI struct {
	XBegin, XEnd int
	YBegin, YEnd int
}

// Width returns the number of columns in the region
func (r ROI) Width() int { return r.XEnd - r.XBegin }

// Height returns the number of rows in the region
func (r ROI) Height() int { return r.YEnd - r.YBegin }

// Empty reports whether the region contains no pixels
func (r ROI) Empty() bool { return r.XEnd <= r.XBegin || r.YEnd <= r.YBegin }

// Contains reports whether other lies entirely inside r
func (r ROI) Contains(other ROI) bool {
	return other.XBegin >= r.XBegin && other.XEnd <= r.XEnd &&
		other.YBegin >= r.YBegin && other.YEnd <= r.YEnd
}

func (r ROI) String() string {
	return fmt.Sprintf("[%d,%d)x[%d,%d)", r.XBegin, r.XEnd, r.YBegin, r.YEnd)
}

// Buffer is an 8-bit interleaved, row-major image
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// SizeBytes returns the storage needed for a width x height x channels
// 8-bit image, or -1 if the product overflows int64.
func SizeBytes(width, height, channels int) int64 {
	if width <= 0 || height <= 0 || channels <= 0 {
		return 0
	}
	w, h, c := int64(width), int64(height), int64(channels)
	if w > math.MaxInt64/h || w*h > math.MaxInt64/c {
		return -1
	}
	return w * h * c
}

// New allocates a zeroed buffer. Sizes that overflow and make() panics
// surface as ErrAllocation. Running out of memory is fatal to the process
// and is not caught here; callers bound the size first.
func New(width, height, channels int) (buf *Buffer, err error) {
	if width <= 0 || height <= 0 || channels < 1 || channels > MaxChannels {
		return nil, fmt.Errorf("%w: %dx%d, %d channels", ErrInvalidDimensions, width, height, channels)
	}
	size := SizeBytes(width, height, channels)
	if size < 0 || size > int64(math.MaxInt) {
		return nil, fmt.Errorf("%w: %dx%dx%d overflows", ErrAllocation, width, height, channels)
	}

	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %d bytes: %v", ErrAllocation, size, r)
		}
	}()

	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]byte, int(size)),
	}, nil
}

// Sample returns channel c of the pixel at (x, y) read in the layout of a
// refChannels image. A channel the buffer lacks is 0, except the alpha of a
// two or four channel layout, which is 0xff.
func (b *Buffer) Sample(x, y, c, refChannels int) byte {
	if c < b.Channels {
		return b.Pix[b.PixOffset(x, y)+c]
	}
	if (refChannels == 2 || refChannels == 4) && c == refChannels-1 {
		return 0xff
	}
	return 0
}

// Bounds returns the full-image region
func (b *Buffer) Bounds() ROI {
	return ROI{XBegin: 0, XEnd: b.Width, YBegin: 0, YEnd: b.Height}
}

// Stride returns the number of bytes per row
func (b *Buffer) Stride() int { return b.Width * b.Channels }

// SizeBytes returns len(Pix) as int64
func (b *Buffer) SizeBytes() int64 { return int64(len(b.Pix)) }

// PixOffset returns the index of the first channel of pixel (x, y)
func (b *Buffer) PixOffset(x, y int) int {
	return y*b.Stride() + x*b.Channels
}

// Pixel returns the channel values of (x, y), sharing storage with Pix
func (b *Buffer) Pixel(x, y int) []byte {
	i := b.PixOffset(x, y)
	return b.Pix[i : i+b.Channels : i+b.Channels]
}

// Row returns row y, sharing storage with Pix
func (b *Buffer) Row(y int) []byte {
	i := y * b.Stride()
	return b.Pix[i : i+b.Stride()]
}

func (b *Buffer) String() string {
	return fmt.Sprintf("%dx%d ch %d", b.Width, b.Height, b.Channels)
}
