package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation             ErrorType = "validation"
	ErrorTypeInvalidInput           ErrorType = "invalid_input"
	ErrorTypeMissingOperationHandle ErrorType = "missing_operation_handle"
	ErrorTypeTimeout                ErrorType = "timeout"
	ErrorTypeOperationFailed        ErrorType = "operation_failed"
	ErrorTypeTransport              ErrorType = "transport"
	ErrorTypeMissingArtifact        ErrorType = "missing_artifact"
	ErrorTypeNotFound               ErrorType = "not_found"
	ErrorTypeUnauthorized           ErrorType = "unauthorized"
	ErrorTypeInternal               ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`

	// UpstreamStatus is the HTTP status reported by the remote service, if any.
	UpstreamStatus int `json:"upstream_status,omitempty"`
	// Payload keeps the service-reported body for diagnostics.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Details:    firstDetail(details),
		StatusCode: http.StatusBadRequest,
	}
}

// NewInvalidInputError reports a bad target, an unsupported extension or a
// target the operation cannot accept.
func NewInvalidInputError(message string, details ...string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidInput,
		Message:    message,
		Details:    firstDetail(details),
		StatusCode: http.StatusBadRequest,
	}
}

// NewMissingOperationHandleError is returned when a submission was accepted
// but carried no resumption locator.
func NewMissingOperationHandleError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeMissingOperationHandle,
		Message:    message,
		StatusCode: http.StatusBadGateway,
	}
}

// NewTimeoutError creates a new polling timeout error
func NewTimeoutError(message string, details ...string) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    message,
		Details:    firstDetail(details),
		StatusCode: http.StatusGatewayTimeout,
	}
}

// NewOperationFailedError carries the failure payload reported by the service.
func NewOperationFailedError(message string, payload []byte) *AppError {
	return &AppError{
		Type:       ErrorTypeOperationFailed,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Payload:    json.RawMessage(payload),
	}
}

// NewTransportError wraps a network or HTTP-layer failure. upstreamStatus is
// zero when no response was received.
func NewTransportError(message string, upstreamStatus int, cause error) *AppError {
	return &AppError{
		Type:           ErrorTypeTransport,
		Message:        message,
		StatusCode:     http.StatusBadGateway,
		Cause:          cause,
		UpstreamStatus: upstreamStatus,
	}
}

// NewMissingArtifactError names the companion file that a batch requires.
func NewMissingArtifactError(message string, artifact string) *AppError {
	return &AppError{
		Type:       ErrorTypeMissingArtifact,
		Message:    message,
		Details:    artifact,
		StatusCode: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := As(err); ok {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	if appErr, ok := As(err); ok && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func firstDetail(details []string) string {
	if len(details) > 0 {
		return details[0]
	}
	return ""
}
