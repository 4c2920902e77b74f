package vocab

import (
	"errors"
	"fmt"
)

var (
	// ErrChatModelRequired is returned when a chat model is not provided.
	ErrChatModelRequired = errors.New("chat model required")

	// ErrSessionRepositoryRequired is returned when a session repository is not provided.
	ErrSessionRepositoryRequired = errors.New("session repository required")

	// ErrWrongStage is returned when a quiz stage is submitted out of order.
	ErrWrongStage = errors.New("quiz is not at that stage")

	// ErrNoProfile is returned when a session has not finished the quiz.
	ErrNoProfile = errors.New("quiz not finished")

	// ErrInputTooShort is returned when mining input is below the minimum length.
	ErrInputTooShort = errors.New("input too short")

	// ErrMalformedResponse is wrapped by every ParseError.
	ErrMalformedResponse = errors.New("malformed model response")
)

// ParseError reports why a model response could not be turned into items.
type ParseError struct {
	Stage  string // "decode" or "validate"
	Item   int    // offending item index when Stage is "validate", else -1
	Reason error
}

func (e *ParseError) Error() string {
	if e.Item >= 0 {
		return fmt.Sprintf("%s: %s item %d: %v", ErrMalformedResponse, e.Stage, e.Item, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrMalformedResponse, e.Stage, e.Reason)
}

// Unwrap exposes both ErrMalformedResponse and the underlying reason.
func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformedResponse, e.Reason}
}
