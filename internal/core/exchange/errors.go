package exchange

import "errors"

var (
	ErrInvalidRequestID      = errors.New("exchange: invalid request id")
	ErrInvalidDoctorID       = errors.New("exchange: invalid doctor id")
	ErrInvalidAssignmentID   = errors.New("exchange: invalid assignment id")
	ErrInvalidSwapType       = errors.New("exchange: invalid swap type")
	ErrInvalidDecision       = errors.New("exchange: invalid decision")
	ErrExchangeDateRequired  = errors.New("exchange: exchange date is required for a temporary swap")
	ErrExchangeDateTooSoon   = errors.New("exchange: exchange date must be tomorrow or later")
	ErrCounterpartRequired   = errors.New("exchange: a permanent swap requires a counterpart")
	ErrCounterpartIncomplete = errors.New("exchange: counterpart doctor and assignment must both be set")
	ErrDuplicateRequest      = errors.New("exchange: a pending request already exists for this doctor pair and date")
	ErrRequestNotFound       = errors.New("exchange: request not found")
	ErrRequestNotPending     = errors.New("exchange: request has already been reviewed")
)
