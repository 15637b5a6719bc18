package domain

import "errors"

var (
	// ErrPostingNotFound is returned when a posting id does not resolve.
	ErrPostingNotFound = errors.New("posting not found")

	// ErrMatchNotFound is returned when a match id does not resolve.
	ErrMatchNotFound = errors.New("match not found")

	// ErrDuplicateMatch is returned by MatchRepository.CreateMatch when an
	// ACTIVE match already exists for the pair. The matcher recovers from it
	// by returning the existing record; it is never surfaced to callers.
	ErrDuplicateMatch = errors.New("active match already exists for this pair")

	// ErrTerminalState is returned when a lifecycle transition is attempted
	// on a match that is already COMPLETED, CANCELLED, or EXPIRED.
	ErrTerminalState = errors.New("match is in a terminal state")
)

// ValidationError reports a request that was rejected before any persistence
// took place: same post-type pairing, out-of-range score, and the like.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
