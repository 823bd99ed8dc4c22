package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource or argument is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrInvalidState is returned when an operation is attempted from the
	// wrong lifecycle state.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnauthorized is returned when the caller lacks the required
	// capability or role relationship.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPaused is returned when the ledger is administratively halted.
	ErrPaused = errors.New("ledger paused")
)
