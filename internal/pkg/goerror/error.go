// Package goerror carries the error taxonomy shared by usecases and the HTTP
// layer: a Type bucket, a stable Code reported to clients as "reason", and
// the HTTP status each code maps to.
package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

// Store sentinels. Outbound adapters translate driver errors into these and
// usecases translate them into business errors.
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource conflict")
)

// Type classifies errors into high-level buckets used by the application.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "VALIDATION"
	case TypeBusiness:
		return "BUSINESS"
	case TypeServer:
		return "SERVER"
	default:
		return "UNKNOWN"
	}
}

// Code is a stable identifier used for mapping errors to HTTP status codes.
type Code int

const (
	// CodeInternal represents an internal or unspecified error.
	CodeInternal Code = iota
	// CodeInvalidFormat indicates a body that could not be decoded.
	CodeInvalidFormat
	// CodeInvalidInput indicates a decoded body that failed validation.
	CodeInvalidInput
	// CodeNotFound indicates no account, or no pending enrollment.
	CodeNotFound
	// CodeConflict indicates a duplicate identifier or an already enabled factor.
	CodeConflict
	// CodeInvalidCredentials indicates an unknown identifier or a wrong password.
	CodeInvalidCredentials
	// CodeInvalidCode indicates a one-time code that did not verify.
	CodeInvalidCode
	// CodeNotEnrolled indicates the account has no active second factor.
	CodeNotEnrolled
	// CodeLoginRequired indicates the step needs a password-verified login first.
	CodeLoginRequired
	// CodeUnavailable indicates the backing store could not be reached.
	CodeUnavailable
)

var codes = map[Code]struct {
	reason string
	status int
}{
	CodeInternal:           {"INTERNAL", http.StatusInternalServerError},
	CodeInvalidFormat:      {"INVALID_FORMAT", http.StatusBadRequest},
	CodeInvalidInput:       {"INVALID_INPUT", http.StatusUnprocessableEntity},
	CodeNotFound:           {"NOT_FOUND", http.StatusNotFound},
	CodeConflict:           {"CONFLICT", http.StatusConflict},
	CodeInvalidCredentials: {"INVALID_CREDENTIALS", http.StatusUnauthorized},
	CodeInvalidCode:        {"INVALID_CODE", http.StatusUnauthorized},
	CodeNotEnrolled:        {"NOT_ENROLLED", http.StatusForbidden},
	CodeLoginRequired:      {"LOGIN_REQUIRED", http.StatusUnauthorized},
	CodeUnavailable:        {"STORE_UNAVAILABLE", http.StatusServiceUnavailable},
}

// String returns the reason reported to clients for the error code.
func (c Code) String() string {
	if info, ok := codes[c]; ok {
		return info.reason
	}
	return codes[CodeInternal].reason
}

// Status returns the HTTP status for the code.
func (c Code) Status() int {
	if info, ok := codes[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Error is a structured error used across the application.
//
// The cause, when present, is what Error() returns and what errors.Is sees;
// msg is the client-facing text and never includes the cause.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	default:
		return e.errType.String() + " error"
	}
}

// String is a verbose form for logs.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q cause=%v", e.errType, e.code, e.msg, e.err)
}

func (e *Error) Msg() string { return e.msg }
func (e *Error) Type() Type { return e.errType }
func (e *Error) Code() Code { return e.code }
func (e *Error) Fields() map[string]string { return e.fields }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) StatusCode() int { return e.code.Status() }

func newError(err error, msg string, et Type, code Code) *Error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer wraps an unexpected failure. The cause stays in logs only.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

// NewUnavailable wraps a backing store failure.
func NewUnavailable(err error) error {
	return newError(err, "Service temporarily unavailable", TypeServer, CodeUnavailable)
}

// NewBusiness reports a rule the request broke.
func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewInvalidInput reports a validation failure, either from err or from
// field/message pairs in kv. An odd kv is treated as a malformed request.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	e := newError(nil, "Validation error", TypeValidation, CodeInvalidInput)
	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

// NewInvalidFormat reports a request body that could not be decoded.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return newError(nil, msg, TypeValidation, CodeInvalidFormat)
}
