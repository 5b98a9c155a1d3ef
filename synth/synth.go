// Package synth builds the probe image for the big image sweep: a
// deterministic bilinear gradient between four corner colors.
package synth

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-image-big64/imagebuf"
)

// Corner colors. Alpha is 1 everywhere, so four channel probes are opaque.
var (
	TopLeft     = []float32{0, 0, 0, 1} // black
	TopRight    = []float32{1, 0, 0, 1} // red
	BottomLeft  = []float32{0, 1, 0, 1} // green
	BottomRight = []float32{1, 1, 0, 1} // yellow
)

// MinResolution is the smallest side at which the two 2x2 compare regions
// do not overlap
const MinResolution = 4

var (
	// ErrAllocation is returned when the buffer exceeds the memory limit or
	// cannot be allocated
	ErrAllocation = errors.New("synth: cannot allocate probe image")

	// ErrUnsupported is returned for pixel types other than 8-bit and for
	// resolutions below MinResolution
	ErrUnsupported = errors.New("synth: unsupported probe")
)

// Generator produces probe images
type Generator struct {
	// MemoryLimit caps the buffer size in bytes; zero means no limit
	MemoryLimit int64
}

// Generate returns a res x res gradient with the given channel count.
// Only imagebuf.UInt8 (or Unknown, meaning UInt8) is accepted.
func (g Generator) Generate(res, channels int, pt imagebuf.PixelType) (*imagebuf.Buffer, error) {
	if pt != imagebuf.UInt8 && pt != imagebuf.Unknown {
		return nil, fmt.Errorf("%w: pixel type %s", ErrUnsupported, pt)
	}
	if res < MinResolution {
		return nil, fmt.Errorf("%w: resolution %d below %d", ErrUnsupported, res, MinResolution)
	}

	size := imagebuf.SizeBytes(res, res, channels)
	if size < 0 || (g.MemoryLimit > 0 && size > g.MemoryLimit) {
		return nil, fmt.Errorf("%w: %dx%d ch %d needs %d bytes, limit %d",
			ErrAllocation, res, res, channels, size, g.MemoryLimit)
	}

	buf, err := imagebuf.New(res, res, channels)
	if err != nil {
		if errors.Is(err, imagebuf.ErrAllocation) {
			return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
		}
		return nil, err
	}
	if err := imagebuf.FillCorners(buf, TopLeft, TopRight, BottomLeft, BottomRight); err != nil {
		return nil, err
	}
	return buf, nil
}
