package imagebuf

import "errors"

var (
	// ErrInvalidDimensions is returned when width, height or channel count is out of range
	ErrInvalidDimensions = errors.New("imagebuf: invalid dimensions")

	// ErrAllocation is returned when the pixel storage cannot be allocated
	ErrAllocation = errors.New("imagebuf: allocation failed")

	// ErrROIOutOfBounds is returned when a region does not lie inside a buffer
	ErrROIOutOfBounds = errors.New("imagebuf: region out of bounds")

	// ErrCornerValues is returned when a fill color has fewer values than the buffer has channels
	ErrCornerValues = errors.New("imagebuf: not enough corner values for channel count")

	// ErrUnknownPixelType is returned when a pixel type name cannot be parsed
	ErrUnknownPixelType = errors.New("imagebuf: unknown pixel type")
)
