package errorutil

import "fmt"

// Error carries an error code/message pair plus a retryable marker.
// The code/message pair is what ends up verbatim on a failed tax request.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Retriable creates a retryable error (network issues, temporary outages).
func Retriable(code, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// NonRetriable creates a non-retryable error (bad input, business rule hit).
func NonRetriable(code, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// NonRetriableWithDetails creates a non-retryable error with dev details.
func NonRetriableWithDetails(code, message, details string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Retryable:  false,
		DevDetails: details,
	}
}

// Wrap converts any error into an *Error. Unknown errors default to
// non-retryable so the queue does not loop on them.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	if e, ok := err.(*Error); ok {
		return e
	}

	return &Error{
		Code:       "internal",
		Message:    err.Error(),
		Retryable:  false,
		DevDetails: fmt.Sprintf("%+v", err),
	}
}
