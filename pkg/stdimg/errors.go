package stdimg

import "errors"

// Precondition failures. Callers match them with errors.Is; the operations wrap
// them with the offending argument.
var (
	ErrNilImage     = errors.New("image is nil")
	ErrEmptyImage   = errors.New("image has no pixels")
	ErrBufferLength = errors.New("pixel buffer length does not match dimensions")
	ErrSizeMismatch = errors.New("image dimensions differ")
	ErrInvalidParam = errors.New("invalid parameter")
)
