// Package errors carries the analyzer's typed error vocabulary. Failures
// travel as a DomainError so callers branch on the code while the message
// keeps the offending path, module, or rule attached.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies a failure for programmatic handling.
type ErrorCode string

const (
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotSupported    ErrorCode = "NOT_SUPPORTED"
	CodeParseError      ErrorCode = "PARSE_ERROR"
)

// Context keys attached to errors on their way up the pipeline.
const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxModule    = "module"
	CtxRule      = "rule"
)

// DomainError pairs a code with a message, an optional cause, and free-form
// context values.
type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]any
}

func (e *DomainError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Context) > 0 {
		fmt.Fprintf(&b, " %v", e.Context)
	}
	return b.String()
}

func (e *DomainError) Unwrap() error { return e.Err }

// WithContext records a key/value pair on the error and returns it for
// chaining.
func (e *DomainError) WithContext(key string, value any) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Newf(code ErrorCode, format string, args ...any) error {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps err as the cause behind a coded message.
func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// AddContext attaches key/value to err's DomainError. A plain error is
// promoted to CodeInternal first so the context has somewhere to live.
func AddContext(err error, key string, value any) error {
	var de *DomainError
	if errors.As(err, &de) {
		return de.WithContext(key, value)
	}
	de = &DomainError{Code: CodeInternal, Message: "untyped error", Err: err}
	return de.WithContext(key, value)
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
