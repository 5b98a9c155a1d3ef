package codec

import "errors"

var (
	// ErrFormatNotFound is returned when a format is not found in the registry
	ErrFormatNotFound = errors.New("format not found")

	// ErrNoWriter is returned when a registered format has no encoder
	ErrNoWriter = errors.New("format has no writer")

	// ErrNoReader is returned when a registered format has no decoder
	ErrNoReader = errors.New("format has no reader")

	// ErrInvalidParameter is returned when encoding/decoding parameters are invalid
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnsupportedPixelType is returned when an encoder cannot store the requested pixel type
	ErrUnsupportedPixelType = errors.New("unsupported pixel type")

	// ErrUnsupportedChannels is returned when an encoder cannot store the buffer's channel count
	ErrUnsupportedChannels = errors.New("unsupported channel count")

	// ErrImageTooLarge is returned when the image exceeds a container limit
	ErrImageTooLarge = errors.New("image too large for format")

	// ErrInvalidData is returned when a decoder meets malformed input
	ErrInvalidData = errors.New("invalid image data")
)
