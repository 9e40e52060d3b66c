// Package apperrors defines the error taxonomy shared by the lead pipeline.
// Every failure that reaches an HTTP handler is converted to an *Error so the
// client always receives the same envelope.
package apperrors

import (
	"errors"
	"net/http"
)

// Code is the machine-readable error classification returned to clients.
type Code string

const (
	CodeRateLimited Code = "RATE_LIMITED"
	CodeSpam        Code = "SPAM_DETECTED"
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeConfig      Code = "CONFIG_ERROR"
	CodeAirtable    Code = "AIRTABLE_ERROR"
	CodeEmail       Code = "EMAIL_ERROR"
	CodeNotFound    Code = "NOT_FOUND"
	CodeTooLarge    Code = "PAYLOAD_TOO_LARGE"
	CodeInternal    Code = "INTERNAL_ERROR"
)

const internalMessage = "Unexpected server error."

// Error is a classified failure. Message and Field are safe to show to the
// client; Err carries internal detail and is only logged.
type Error struct {
	Code    Code
	Status  int
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// RateLimited is returned when a client exceeds the submission window.
func RateLimited() *Error {
	return &Error{Code: CodeRateLimited, Status: http.StatusTooManyRequests, Message: "Too many requests. Please try again shortly."}
}

// Spam is returned when the honeypot field is filled in.
func Spam(field string) *Error {
	return &Error{Code: CodeSpam, Status: http.StatusBadRequest, Message: "Submission rejected.", Field: field}
}

func Validation(field, message string) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: message, Field: field}
}

func Config(message string) *Error {
	return &Error{Code: CodeConfig, Status: http.StatusInternalServerError, Message: message}
}

func Airtable(message string, err error) *Error {
	return &Error{Code: CodeAirtable, Status: http.StatusBadGateway, Message: message, Err: err}
}

func Email(message string, err error) *Error {
	return &Error{Code: CodeEmail, Status: http.StatusBadGateway, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: message}
}

func TooLarge() *Error {
	return &Error{Code: CodeTooLarge, Status: http.StatusRequestEntityTooLarge, Message: "Request body is too large."}
}

func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Status: http.StatusInternalServerError, Message: internalMessage, Err: err}
}

// From classifies err. Anything that is not already an *Error becomes an
// INTERNAL_ERROR so no raw error text reaches the client.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
