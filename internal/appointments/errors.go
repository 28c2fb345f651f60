package appointments

import "errors"

var (
	// ErrNotFound means no appointment matches the lookup key.
	ErrNotFound = errors.New("appointments: not found")

	// ErrInvalidTransition means a transition was attempted on an
	// appointment that is no longer in the scheduled state. Non-retryable.
	ErrInvalidTransition = errors.New("appointments: invalid transition from non-scheduled state")
)
