package domain

import "errors"

// Common domain errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// Loan request errors
var (
	ErrLoanNotFound       = errors.New("loan not found")
	ErrPendingLoanExists  = errors.New("pending loan already exists")
	ErrPendingLoanMissing = errors.New("no pending loan")
)
