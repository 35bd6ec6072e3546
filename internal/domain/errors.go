// Package domain defines the core data model for eigenlog: records,
// severities, host/app identity labels, and the structured error type
// shared across the storage, query, and HTTP layers.
package domain

import (
	"errors"
	"fmt"
)

// Error represents a domain error with a structured error code.
type Error struct {
	Code    string // e.g. "EL-AUTH-4010"
	Message string
	Details string
	Cause   error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetails returns a copy of the error with additional details attached.
func (e *Error) WithDetails(details string) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, Cause: e.Cause}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, Cause: cause}
}

// IsError reports whether err is a domain *Error, optionally matching code.
func IsError(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// ErrorCode extracts the code from err if it is a domain *Error.
func ErrorCode(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// The fixed set of recognized error kinds.
var (
	ErrInvalidApiKey                   = newError("EL-AUTH-4010", "invalid api key")
	ErrInvalidSubmissionContentType    = newError("EL-WIRE-4150", "invalid submission content type")
	ErrUnsupportedSerializationMimeType = newError("EL-WIRE-4151", "unsupported serialization mime type")
	ErrParsePartitionName              = newError("EL-PART-4000", "could not parse partition name")
	ErrParseIdentity                   = newError("EL-ID-4001", "host/app identity failed validation")
	ErrInvalidLengthBytesForId         = newError("EL-ID-4002", "key bytes are not 16 bytes long")
	ErrMonotonicId                     = newError("EL-ID-5001", "id generator could not produce a new id")
	ErrRegex                           = newError("EL-QUERY-4001", "malformed filter regex")
	ErrStorage                         = newError("EL-STORE-5000", "storage engine failure")
	ErrNetwork                         = newError("EL-NET-5010", "network transport failure")
	ErrSerialization                   = newError("EL-WIRE-5020", "serialization failure")
	ErrSubscriberClosed                = newError("EL-SUB-5030", "logging channel hung up")
	ErrFlushResponse                   = newError("EL-SUB-5031", "flush completion signal could not be delivered")
)
