package serrors

import "fmt"

// BaseError is the common error shape for errors that cross the HTTP boundary.
// Code is a stable machine-readable identifier, Message is an operator-facing
// description and LocalizedKey points at a translation bundle entry.
type BaseError struct {
	Code         string
	Message      string
	LocalizedKey string
}

func NewError(code, message, localizedKey string) *BaseError {
	return &BaseError{
		Code:         code,
		Message:      message,
		LocalizedKey: localizedKey,
	}
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetail returns a copy of the error with extra detail appended to the
// message. The code and localization key are preserved so callers matching on
// Code keep working.
func (e *BaseError) WithDetail(detail string) *BaseError {
	if detail == "" {
		return e
	}
	return &BaseError{
		Code:         e.Code,
		Message:      fmt.Sprintf("%s: %s", e.Message, detail),
		LocalizedKey: e.LocalizedKey,
	}
}
