package assignment

import "errors"

var (
	ErrInvalidID          = errors.New("assignment: invalid id")
	ErrInvalidDoctorID    = errors.New("assignment: invalid doctor id")
	ErrInvalidShiftID     = errors.New("assignment: invalid shift id")
	ErrInvalidWindow      = errors.New("assignment: effective_from must not be after effective_to")
	ErrAssignmentNotFound = errors.New("assignment: not found")
	ErrShiftConflict      = errors.New("assignment: overlapping assignment for the same shift")
)
