// Package apperror defines the error categories shared by the HTTP handlers,
// the generation gateway and the API client. Every failed call resolves to
// exactly one Category.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Category is the user-facing class of a failure.
type Category string

const (
	CategoryValidation      Category = "VALIDATION_ERROR"
	CategoryNetwork         Category = "NETWORK_ERROR"
	CategoryBadRequest      Category = "BAD_REQUEST"
	CategoryAuth            Category = "AUTH_REQUIRED"
	CategoryPayloadTooLarge Category = "PAYLOAD_TOO_LARGE"
	CategoryServer          Category = "SERVICE_UNAVAILABLE"
	CategoryNotFound        Category = "NOT_FOUND"
	CategoryRateLimited     Category = "RATE_LIMITED"
	CategoryUnknown         Category = "UNKNOWN_ERROR"
)

// User-facing messages.
const (
	MsgValidation      = "Please fix the highlighted fields and try again."
	MsgNetwork         = "Unable to connect to the server. Please check your connection and try again."
	MsgBadRequest      = "Invalid request. Please check your ingredients and try again."
	MsgAuth            = "Authentication required. Please sign in and try again."
	MsgPayloadTooLarge = "The image is too large. Please choose a smaller file."
	MsgServer          = "Service temporarily unavailable. Please try again later."
	MsgRateLimited     = "Too many requests. Please wait a moment and try again."
	MsgUnknown         = "An unexpected error occurred. Please try again."
)

// Error is a categorized failure. Status is the HTTP status the server answers
// with, or the status the client received.
type Error struct {
	Category Category
	Message  string
	Status   int
	Fields   map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns Status, or the default status for the category.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Category {
	case CategoryValidation, CategoryBadRequest:
		return http.StatusBadRequest
	case CategoryAuth:
		return http.StatusUnauthorized
	case CategoryPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryRateLimited:
		return http.StatusTooManyRequests
	case CategoryNetwork, CategoryServer:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithCause attaches the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// Validation reports local input problems keyed by field.
func Validation(message string, fields map[string]string) *Error {
	if message == "" {
		message = MsgValidation
	}
	return &Error{Category: CategoryValidation, Message: message, Status: http.StatusBadRequest, Fields: fields}
}

// Network reports a call that produced no response at all.
func Network(cause error) *Error {
	return &Error{Category: CategoryNetwork, Message: MsgNetwork, Cause: cause}
}

// NotFound reports a missing resource, e.g. NotFound("recipe").
func NotFound(resource string) *Error {
	if resource == "" {
		resource = "resource"
	}
	msg := strings.ToUpper(resource[:1]) + resource[1:] + " not found"
	return &Error{Category: CategoryNotFound, Message: msg, Status: http.StatusNotFound}
}

// PayloadTooLarge reports an upload above limit bytes.
func PayloadTooLarge(limit int64) *Error {
	msg := MsgPayloadTooLarge
	if limit > 0 {
		msg = fmt.Sprintf("The image is too large. Maximum size is %dMB.", limit/(1024*1024))
	}
	return &Error{Category: CategoryPayloadTooLarge, Message: msg, Status: http.StatusRequestEntityTooLarge}
}

// Internal reports a server-side failure such as a database error. The
// message is shown to the caller; the cause is only logged.
func Internal(message string, cause error) *Error {
	if message == "" {
		message = MsgServer
	}
	return &Error{Category: CategoryServer, Message: message, Status: http.StatusInternalServerError, Cause: cause}
}

// RateLimited reports a caller over its request budget.
func RateLimited() *Error {
	return &Error{Category: CategoryRateLimited, Message: MsgRateLimited, Status: http.StatusTooManyRequests}
}

// Classify maps a non-success HTTP status to its category. message is the
// remote side's own error text; it is surfaced only for statuses without a
// dedicated category.
func Classify(status int, message string) *Error {
	switch {
	case status == http.StatusBadRequest:
		return &Error{Category: CategoryBadRequest, Message: MsgBadRequest, Status: status}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Category: CategoryAuth, Message: MsgAuth, Status: status}
	case status == http.StatusRequestEntityTooLarge:
		return &Error{Category: CategoryPayloadTooLarge, Message: MsgPayloadTooLarge, Status: status}
	case status >= 500:
		return &Error{Category: CategoryServer, Message: MsgServer, Status: status}
	default:
		msg := strings.TrimSpace(message)
		if msg == "" {
			msg = MsgUnknown
		}
		return &Error{Category: CategoryUnknown, Message: msg, Status: status}
	}
}

// FromProvider classifies an upstream provider failure and sets the status
// the gateway answers with. Provider outages become 503; statuses without a
// category become 424 so the provider's message survives to the caller.
func FromProvider(status int, message string) *Error {
	e := Classify(status, message)
	switch e.Category {
	case CategoryServer:
		e.Status = http.StatusServiceUnavailable
	case CategoryUnknown:
		e.Status = http.StatusFailedDependency
	}
	return e
}

// From returns err as an *Error, wrapping anything else as an internal failure.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("", err)
}

// Is reports whether err carries the given category.
func Is(err error, category Category) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Category == category
}
