package wizard

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotInEditStep is returned when Submit is called outside the edit step.
	ErrNotInEditStep = errors.New("submit is only valid in the edit step")

	// ErrConfirmationDeclined is returned when the user declines the
	// yes/no confirmation prompt. The wizard stays in the edit step.
	ErrConfirmationDeclined = errors.New("confirmation declined")

	// ErrRecordNotLoaded is returned when the flow is started before the
	// canonical record has been fetched.
	ErrRecordNotLoaded = errors.New("record not loaded")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// RuleViolation is a client-side validation failure. It is detected before
// any network call and never reaches the gateway.
type RuleViolation struct {
	Field   FieldName
	Message string
}

func (e *RuleViolation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// GatewayError carries the user-displayable message for a failed submit or
// fetch. Message is the backend's own text when it provided one, otherwise
// a generic fallback.
type GatewayError struct {
	Message string
	Err     error
}

func (e *GatewayError) Error() string { return e.Message }
func (e *GatewayError) Unwrap() error { return e.Err }

// IsValidation reports whether the error was detected locally, before any
// network call.
func IsValidation(err error) bool {
	var rv *RuleViolation
	return errors.As(err, &rv)
}
