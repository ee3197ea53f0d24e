package docqa

import (
	"errors"
	"fmt"
)

// General error codes.
const (
	ECONFLICT = "conflict"
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
)

// Engine error codes. Each maps to a distinct condition so transports can
// translate them into appropriate responses.
const (
	// ENODIR reports a corpus directory that does not exist.
	ENODIR = "corpus_directory_missing"

	// ENODOCS reports a corpus directory without any loadable pages.
	ENODOCS = "no_documents"

	// EEMBED reports a failure of the embedding provider.
	EEMBED = "embedding_failure"

	// ENOTREADY reports a query against a corpus that is not ready.
	ENOTREADY = "corpus_not_ready"

	// EUNPARSABLE reports a model response with mismatched reasoning markers.
	// It is recovered internally and never returned to callers of the engine.
	EUNPARSABLE = "unparsable_response"

	// ESYNTHESIS reports a failure of the language model.
	ESYNTHESIS = "synthesis_failure"
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract out the code & message.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable error message.
	Message string

	// Underlying cause, if any.
	Err error
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("docqa error: code=%s message=%s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("docqa error: code=%s message=%s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError returns an Error with a given code and formatted message that
// keeps err as its cause.
func WrapError(err error, code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
