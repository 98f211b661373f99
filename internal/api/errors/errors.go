package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	apperrors "media-notes/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindForbidden          ErrorKind = "forbidden"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
	KindPaymentRequired    ErrorKind = "payment_required"
	KindPayloadTooLarge    ErrorKind = "payload_too_large"
	KindUnsupportedMedia   ErrorKind = "unsupported_media_type"
	KindUnprocessable      ErrorKind = "unprocessable_media"
	KindBadGateway         ErrorKind = "upstream_failure"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Code      string            `json:"code,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindPaymentRequired:
		return http.StatusPaymentRequired
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case KindBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithDetail sets one detail entry and returns e
func (e *APIError) WithDetail(key, value string) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Kind:    KindUnauthorized,
		Message: message,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Kind:    KindForbidden,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Kind:    KindServiceUnavailable,
		Message: message,
	}
}

var appKinds = map[apperrors.Kind]ErrorKind{
	apperrors.KindInsufficientCredit: KindPaymentRequired,
	apperrors.KindTooLarge:           KindPayloadTooLarge,
	apperrors.KindUnsupportedFormat:  KindUnsupportedMedia,
	apperrors.KindCorruptMedia:       KindUnprocessable,
	apperrors.KindConversion:         KindUnprocessable,
	apperrors.KindFetch:              KindBadGateway,
	apperrors.KindTranscription:      KindBadGateway,
	apperrors.KindSummarize:          KindBadGateway,
	apperrors.KindNotFound:           KindNotFound,
	apperrors.KindAlreadyExists:      KindConflict,
	apperrors.KindInvalidReservation: KindConflict,
	apperrors.KindInvalidInput:       KindValidation,
	apperrors.KindStorage:            KindServiceUnavailable,
}

// FromAppError converts an application error into its HTTP form. Unknown
// errors become a generic internal error so causes do not leak to clients.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	kind := apperrors.KindOf(err)
	mapped, ok := appKinds[kind]
	if !ok {
		return &APIError{Kind: KindInternal, Message: "Internal server error", Code: string(apperrors.KindUnknown)}
	}
	return &APIError{Kind: mapped, Message: err.Error(), Code: string(kind)}
}
