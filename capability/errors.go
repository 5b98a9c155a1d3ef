package capability

import "errors"

var (
	// ErrInvalidPolicy is returned when a policy document cannot be parsed
	ErrInvalidPolicy = errors.New("capability: invalid policy document")

	// ErrInvalidEntry is returned when an entry breaks a limit
	ErrInvalidEntry = errors.New("capability: invalid entry")
)
