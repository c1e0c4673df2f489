package domain

import "errors"

var ErrNotFound = errors.New("not found")

// ErrorKind is the machine-readable error category surfaced to clients.
type ErrorKind string

const (
	KindFileSizeExceeded     ErrorKind = "FileSizeExceeded"
	KindInvalidFileType      ErrorKind = "InvalidFileType"
	KindImageProcessingError ErrorKind = "ImageProcessingError"
	KindLogoOverlayError     ErrorKind = "LogoOverlayError"
	KindAIGenerationFailed   ErrorKind = "AIGenerationFailed"
	KindStorageError         ErrorKind = "StorageError"
	KindDatabaseError        ErrorKind = "DatabaseError"
	KindInternal             ErrorKind = "InternalError"
)

// Error carries an error kind plus a human-readable message. Details are
// only exposed to clients when the service runs in debug mode.
type Error struct {
	Kind    ErrorKind
	Message string
	Details string
	Err     error
}

func NewError(kind ErrorKind, message, details string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// WrapError attaches an underlying cause so errors.Is/As keep working.
func WrapError(kind ErrorKind, message string, err error) *Error {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &Error{Kind: kind, Message: message, Details: details, Err: err}
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the error kind from err, defaulting to KindInternal
// for anything not classified by the pipeline.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
