package doctor

import "errors"

var (
	ErrInvalidID      = errors.New("doctor: invalid id")
	ErrDoctorNotFound = errors.New("doctor: not found")
)
