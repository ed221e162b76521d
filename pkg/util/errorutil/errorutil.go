package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the portal and its API responses.
const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "WRITE_CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeFetch        = "FETCH_FAILED"
	CodeWriteFailed  = "WRITE_FAILED"
	CodeAuthExpired  = "AUTH_EXPIRED"
	CodeInFlight     = "SUBMISSION_IN_FLIGHT"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail returns a copy of e carrying an extra detail entry.
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusUnprocessableEntity, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewFetchError reports a failed read from the helpdesk backend.
func NewFetchError(message string, err error) error {
	return &DomainError{Code: CodeFetch, Message: message, HTTPStatus: http.StatusBadGateway, Err: err}
}

// NewWriteFailure reports a rejected mutation.
func NewWriteFailure(message string, status int, err error) error {
	if status < 400 {
		status = http.StatusBadGateway
	}
	return &DomainError{Code: CodeWriteFailed, Message: message, HTTPStatus: status, Err: err}
}

// NewAuthExpired reports a missing or rejected bearer token.
func NewAuthExpired(message string) error {
	return NewDomainError(CodeAuthExpired, message, http.StatusUnauthorized, nil)
}

// NewInFlight reports a duplicate submission while a write is outstanding.
func NewInFlight(message string) error {
	return NewDomainError(CodeInFlight, message, http.StatusConflict, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// IsAuthExpired reports whether err requires the user to log in again.
func IsAuthExpired(err error) bool { return HasCode(err, CodeAuthExpired) }

// IsFetchError reports whether err is a failed backend read.
func IsFetchError(err error) bool { return HasCode(err, CodeFetch) }

// UserMessage returns the message safe to surface to a user.
func UserMessage(err error, fallback string) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Code != CodeInternal && domainErr.Message != "" {
		return domainErr.Message
	}
	return fallback
}
