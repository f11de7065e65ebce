package retry

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmptyAnswer marks an attempt whose answer text was blank.
	ErrEmptyAnswer = errors.New("empty answer")

	// ErrPanic marks an attempt that panicked.
	ErrPanic = errors.New("answer attempt panicked")
)
