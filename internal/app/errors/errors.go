package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error for callers that need to branch on it
// (job outcomes, HTTP status mapping, metrics labels).
type Kind string

const (
	KindUnknown            Kind = "unknown"
	KindInsufficientCredit Kind = "insufficient_credit"
	KindFetch              Kind = "fetch"
	KindUnsupportedFormat  Kind = "unsupported_format"
	KindTooLarge           Kind = "too_large"
	KindCorruptMedia       Kind = "corrupt_media"
	KindConversion         Kind = "conversion"
	KindTranscription      Kind = "transcription"
	KindSummarize          Kind = "summarize"
	KindPersistenceWarning Kind = "persistence_warning"
	KindNotFound           Kind = "not_found"
	KindAlreadyExists      Kind = "already_exists"
	KindInvalidReservation Kind = "invalid_reservation"
	KindInvalidInput       Kind = "invalid_input"
	KindStorage            Kind = "storage"
)

// Sentinels, one per kind. Compare with errors.Is.
var (
	ErrInsufficientCredit = NewKind(KindInsufficientCredit, "insufficient credit")
	ErrFetch              = NewKind(KindFetch, "failed to fetch media")
	ErrUnsupportedFormat  = NewKind(KindUnsupportedFormat, "unsupported media format")
	ErrTooLarge           = NewKind(KindTooLarge, "media exceeds size limit")
	ErrCorruptMedia       = NewKind(KindCorruptMedia, "media is corrupt or unreadable")
	ErrConversion         = NewKind(KindConversion, "audio conversion failed")
	ErrTranscription      = NewKind(KindTranscription, "transcription failed")
	ErrSummarize          = NewKind(KindSummarize, "summarization failed")
	ErrPersistenceWarning = NewKind(KindPersistenceWarning, "result could not be persisted")
	ErrNotFound           = NewKind(KindNotFound, "not found")
	ErrAlreadyExists      = NewKind(KindAlreadyExists, "already exists")
	ErrInvalidReservation = NewKind(KindInvalidReservation, "invalid reservation state")
	ErrInvalidInput       = NewKind(KindInvalidInput, "invalid input")
	ErrStorage            = NewKind(KindStorage, "storage failure")
)

// Error represents a standardized error
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{kind: KindUnknown, message: message}
}

// NewKind creates a new error of the given kind
func NewKind(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Newf creates a new formatted error of the given kind
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context. The kind is inherited from
// the wrapped error when it carries one.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    KindOf(err),
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    KindOf(err),
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// WithKind wraps err under the given kind. Errors that already carry a
// known kind keep it.
func WithKind(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	if k := KindOf(err); k != KindUnknown {
		kind = k
	}
	return &Error{kind: kind, message: message, cause: err}
}

// WrapKind wraps err under kind. Unlike WithKind the new kind always wins,
// the original stays reachable through errors.Is.
func WrapKind(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, message: message, cause: err}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the classification of e
func (e *Error) Kind() Kind {
	return e.kind
}

// Message returns the message without the cause chain
func (e *Error) Message() string {
	return e.message
}

// Is matches errors of the same kind. Unclassified errors match by message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.kind == KindUnknown || t.kind == KindUnknown {
		return e.kind == t.kind && e.message == t.message
	}
	return e.kind == t.kind
}

// KindOf returns the first kind found in err's chain
func KindOf(err error) Kind {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return KindUnknown
		}
		if e.kind != KindUnknown {
			return e.kind
		}
		err = e.cause
	}
	return KindUnknown
}

// Helper functions for common patterns

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Newf(KindInvalidInput, "%s is required", field)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Newf(KindInvalidInput, "%s is invalid: %s", field, reason)
}

// NotFound returns an error for items that were not found
func NotFound(itemType string, identifier string) error {
	return Newf(KindNotFound, "%s not found: %s", itemType, identifier)
}

// AlreadyExists returns an error for items that already exist
func AlreadyExists(itemType string, identifier string) error {
	return Newf(KindAlreadyExists, "%s already exists: %s", itemType, identifier)
}

// IsValidationError reports whether err is an input validation failure
func IsValidationError(err error) bool {
	return KindOf(err) == KindInvalidInput
}
