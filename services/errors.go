package services

import "errors"

// Sentinel errors recovered at the handler boundary and mapped to caller
// visible results. Insufficient balances are expected outcomes, not faults.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrNoSpins            = errors.New("no spins available")
	ErrInsufficientPoints = errors.New("insufficient points")
)
