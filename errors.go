package liveframe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrBindingNotFound is reported when StartSession targets a container id
// that has no registered viewport binding. It is fatal to the start: there
// is no target to mutate, so no session is created and no retry happens.
var ErrBindingNotFound = errors.New("viewport binding not found")

// ErrPageClosed is reported when a signal or start arrives on a page that
// has already been torn down.
var ErrPageClosed = errors.New("page closed")

// FailureKind classifies a failed load attempt.
type FailureKind int

const (
	// LoadSignalFailure is a raw error signal from the embedding attempt.
	LoadSignalFailure FailureKind = iota

	// EmptyContentFailure is a load that signaled success but rendered no
	// content. An apparently-successful load that rendered nothing is
	// indistinguishable from a transient backend error, so it is routed
	// into the retry path exactly like a raw failure.
	EmptyContentFailure
)

func (k FailureKind) String() string {
	switch k {
	case LoadSignalFailure:
		return "load signal failure"
	case EmptyContentFailure:
		return "empty content"
	default:
		return "unknown failure"
	}
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiError collects multiple field errors from one validation pass
type MultiError []FieldError

func (e MultiError) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fieldErr := range e {
		msgs = append(msgs, fieldErr.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidationToMultiError converts go-playground/validator errors to MultiError
func ValidationToMultiError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	multi := make(MultiError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		multi = append(multi, FieldError{
			Field:   strings.ToLower(fieldErr.Field()),
			Message: validationMessage(fieldErr),
		})
	}
	return multi
}

// validationMessage produces a human-readable message for a single violation
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
