package persistence

import "errors"

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrGoalNotFound = errors.New("goal not found")

	// ErrAlreadyExists is returned by Insert when the id is already stored.
	// A retried insert whose first attempt committed reports this error.
	ErrAlreadyExists = errors.New("row already exists")

	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("remote store unavailable")
)
