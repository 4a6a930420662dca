package util

import (
	"errors"
	"fmt"
	"net/http"
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// NewAccessDenied reports that the caller is not a participant of the resource.
func NewAccessDenied(message string, details map[string]any) error {
	return NewDomainError("ACCESS_DENIED", message, http.StatusForbidden, details)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewWriteFailed wraps a rejected store write. The caller may retry the action.
func NewWriteFailed(operation string, err error) error {
	return &DomainError{
		Code:       "WRITE_FAILED",
		Message:    fmt.Sprintf("%s failed", operation),
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"operation": operation},
		Err:        err,
	}
}

// NewPartialCascade reports a multi-write action where only the leading writes landed.
func NewPartialCascade(message string, details map[string]any, err error) error {
	return &DomainError{
		Code:       "PARTIAL_CASCADE",
		Message:    message,
		HTTPStatus: http.StatusFailedDependency,
		Details:    details,
		Err:        err,
	}
}

func NewUnavailable(code, message string) error {
	return NewDomainError(code, message, http.StatusServiceUnavailable, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// WithDetail returns err with an extra detail when it is a DomainError.
func WithDetail(err error, key string, value any) error {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return err
	}
	details := make(map[string]any, len(domainErr.Details)+1)
	for k, v := range domainErr.Details {
		details[k] = v
	}
	details[key] = value
	clone := *domainErr
	clone.Details = details
	return &clone
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
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
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
