package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Telephony
	ErrTelephonyNotConfigured = fmt.Errorf("telephony client is not initialized, check the provider credentials")

	// CRM
	ErrCRMNotConfigured = fmt.Errorf("CRM base URL is not configured")

	// Common
	ErrNotFound   = fmt.Errorf("record not found")
	ErrBadRequest = fmt.Errorf("bad request")
)

// ValidationError is a missing or malformed input field. Always 400, raised before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError is a referenced CRM entity that does not exist.
type NotFoundError struct {
	Entity  string
	ID      string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NewNotFoundError(entity, id, message string) error {
	return &NotFoundError{Entity: entity, ID: id, Message: message}
}

// UpstreamError is a failed CRM call. Status is 500 when the CRM never answered.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string { return e.Message }
func (e *UpstreamError) Unwrap() error { return e.Err }

// ProvisioningError is a failed telephony provider call. Code carries the provider's own error code.
type ProvisioningError struct {
	Status  int
	Message string
	Code    int
	Err     error
}

func (e *ProvisioningError) Error() string { return e.Message }
func (e *ProvisioningError) Unwrap() error { return e.Err }

// HttpError is a controller level error with a user facing message.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

// StatusCode maps an error to the HTTP status it should surface with.
func StatusCode(err error) int {
	var (
		validationErr   *ValidationError
		notFoundErr     *NotFoundError
		upstreamErr     *UpstreamError
		provisioningErr *ProvisioningError
		httpErr         *HttpError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &provisioningErr):
		return statusOrDefault(provisioningErr.Status)
	case errors.As(err, &upstreamErr):
		return statusOrDefault(upstreamErr.Status)
	case errors.As(err, &httpErr):
		return statusOrDefault(httpErr.Code)
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Message returns the caller facing message of err.
func Message(err error) string {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	var (
		validationErr   *ValidationError
		notFoundErr     *NotFoundError
		upstreamErr     *UpstreamError
		provisioningErr *ProvisioningError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &notFoundErr):
		return notFoundErr.Error()
	case errors.As(err, &provisioningErr):
		return provisioningErr.Error()
	case errors.As(err, &upstreamErr):
		return upstreamErr.Error()
	}
	return err.Error()
}

// ProviderCode returns the telephony provider error code carried by err, if any.
func ProviderCode(err error) (int, bool) {
	var provisioningErr *ProvisioningError
	if errors.As(err, &provisioningErr) && provisioningErr.Code != 0 {
		return provisioningErr.Code, true
	}
	return 0, false
}

func statusOrDefault(status int) int {
	if status < 100 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}
