package scheduling

import (
	"errors"
	"fmt"
)

// Error codes for the scheduling taxonomy.
const (
	CodeInvalidWindow   = "invalidWindow"
	CodeSlotTaken       = "slotTaken"
	CodeNotFound        = "notFound"
	CodeAlreadyTerminal = "alreadyTerminal"
)

// Error is a typed scheduling failure surfaced to callers as a structured
// result rather than a session fault.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewInvalidWindowError(format string, args ...interface{}) error {
	return &Error{Code: CodeInvalidWindow, Message: fmt.Sprintf(format, args...)}
}

func NewSlotTakenError(format string, args ...interface{}) error {
	return &Error{Code: CodeSlotTaken, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewAlreadyTerminalError(format string, args ...interface{}) error {
	return &Error{Code: CodeAlreadyTerminal, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the scheduling error code, or "" for other errors.
func CodeOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsSlotTaken reports whether err is a lost booking/reschedule race.
func IsSlotTaken(err error) bool {
	return CodeOf(err) == CodeSlotTaken
}
