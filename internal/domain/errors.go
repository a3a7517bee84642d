package domain

import "errors"

var (
	// ErrInvalidInput marks a request missing a required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionNotFound covers unknown, expired and already completed sessions.
	ErrSessionNotFound = errors.New("session not found")

	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrClassifierUnavailable is internal: the analyzer always recovers from it
	// through the rule-based model.
	ErrClassifierUnavailable = errors.New("sentiment classifier unavailable")

	// ErrPersistence wraps a failed durable write. Chat flow logs and continues.
	ErrPersistence = errors.New("persistence failure")
)
