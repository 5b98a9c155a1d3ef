package enumerate

import "errors"

var (
	// ErrExcluded marks a format that is not a 2D bitmap sink
	ErrExcluded = errors.New("enumerate: format excluded from the sweep")

	// ErrNoWriter marks a format without an encoder. It is a skip, not a failure.
	ErrNoWriter = errors.New("enumerate: no writer for format")

	// ErrNotSelected marks a format left out by the Only filter
	ErrNotSelected = errors.New("enumerate: format not selected")
)
