package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound        = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists   = new(ErrCodeAlreadyExists, "resource already exists")
	ErrVersionConflict = new(ErrCodeVersionConflict, "version conflict")
	ErrValidation      = new(ErrCodeValidation, "validation error")
	ErrHTTPClient      = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase        = new(ErrCodeDatabase, "database error")
	ErrSystem          = new(ErrCodeSystemError, "system error")

	// Billing transition error kinds. The downgrade message is a contract:
	// callers and clients match on "downgrade" and "not supported".
	ErrAlreadyOnTarget       = new(ErrCodeAlreadyOnTarget, "subscription is already on the requested billing period")
	ErrDowngradeNotSupported = new(ErrCodeDowngradeNotSupported, "downgrade from annual to monthly is not supported")
	ErrMissingProviderHandle = new(ErrCodeMissingProviderHandle, "subscription has no payment provider handle")
	ErrPaymentProvider       = new(ErrCodePaymentProvider, "payment provider request failed")
	ErrPersistence           = new(ErrCodePersistence, "failed to persist state after provider update")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrHTTPClient:            http.StatusInternalServerError,
		ErrDatabase:              http.StatusInternalServerError,
		ErrNotFound:              http.StatusNotFound,
		ErrAlreadyExists:         http.StatusConflict,
		ErrVersionConflict:       http.StatusConflict,
		ErrValidation:            http.StatusBadRequest,
		ErrSystem:                http.StatusInternalServerError,
		ErrAlreadyOnTarget:       http.StatusConflict,
		ErrDowngradeNotSupported: http.StatusBadRequest,
		ErrMissingProviderHandle: http.StatusUnprocessableEntity,
		ErrPaymentProvider:       http.StatusBadGateway,
		ErrPersistence:           http.StatusInternalServerError,
	}
)

const (
	ErrCodeHTTPClient      = "http_client_error"
	ErrCodeSystemError     = "system_error"
	ErrCodeNotFound        = "not_found"
	ErrCodeAlreadyExists   = "already_exists"
	ErrCodeVersionConflict = "version_conflict"
	ErrCodeValidation      = "validation_error"
	ErrCodeDatabase        = "database_error"

	ErrCodeAlreadyOnTarget       = "already_on_target"
	ErrCodeDowngradeNotSupported = "downgrade_not_supported"
	ErrCodeMissingProviderHandle = "missing_provider_handle"
	ErrCodePaymentProvider       = "payment_provider_error"
	ErrCodePersistence           = "persistence_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// New creates a new InternalError
func New(code string, message string) *InternalError {
	return new(code, message)
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsVersionConflict checks if an error is a version conflict error
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsAlreadyOnTarget checks if an error is an already on target error
func IsAlreadyOnTarget(err error) bool {
	return errors.Is(err, ErrAlreadyOnTarget)
}

// IsDowngradeNotSupported checks if an error is a downgrade not supported error
func IsDowngradeNotSupported(err error) bool {
	return errors.Is(err, ErrDowngradeNotSupported)
}

// IsPaymentProvider checks if an error is a payment provider error
func IsPaymentProvider(err error) bool {
	return errors.Is(err, ErrPaymentProvider)
}

// IsPersistence checks if an error is a persistence error
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
