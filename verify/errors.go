package verify

import "errors"

// Failure classes. Outcome.Err wraps one of these around the cause.
var (
	ErrGeneration        = errors.New("generation failed")
	ErrEncode            = errors.New("encode failed")
	ErrDecode            = errors.New("decode failed")
	ErrToleranceExceeded = errors.New("tolerance exceeded")
	ErrUnexpectedFault   = errors.New("unexpected fault")
)
