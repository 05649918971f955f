package shift

import "errors"

var (
	ErrInvalidID     = errors.New("shift: invalid id")
	ErrShiftNotFound = errors.New("shift: not found")
)
