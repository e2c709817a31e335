package remote

import (
	"errors"
	"fmt"
)

// GenericUserMessage is shown when the error response carried nothing
// usable.
const GenericUserMessage = "Something went wrong. Please try again."

// Error is a failed cart API request: either the server rejected it or
// the request never completed. Message is safe to show to the shopper.
type Error struct {
	Status  int    // 0 when the request never reached the server
	Message string // user-facing, best effort
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("cart api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("cart api: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage extracts the shopper-facing message from err, falling
// back to the generic message.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericUserMessage
}
