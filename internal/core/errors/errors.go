// Package errors defines the coded domain errors returned across cratedeps.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ErrorCode string

const (
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotSupported    ErrorCode = "NOT_SUPPORTED"
	CodeIO              ErrorCode = "IO_ERROR"
	CodeParse           ErrorCode = "PARSE_ERROR"
)

// Well-known context keys.
const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxLine      = "line"
	CtxColumn    = "column"
)

// DomainError carries a machine-readable code, a short message, the
// underlying cause and optional key/value context.
type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]any
}

func (e *DomainError) WithContext(key string, value any) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]any, 2)
	}
	e.Context[key] = value
	return e
}

// Error renders "[CODE] message: cause (k=v, ...)" with context keys sorted.
func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString("[" + string(e.Code) + "] " + e.Message)
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	if len(e.Context) == 0 {
		return b.String()
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
	}
	b.WriteString(")")
	return b.String()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// AddContext annotates the first DomainError in err's chain. Errors without
// one are wrapped as CodeInternal first.
func AddContext(err error, key string, value any) error {
	if de, ok := asDomain(err); ok {
		de.WithContext(key, value)
		return err
	}
	return (&DomainError{Code: CodeInternal, Message: "unexpected error", Err: err}).WithContext(key, value)
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code && code != ""
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if de, ok := asDomain(err); ok {
		return de.Code
	}
	return ""
}

func asDomain(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}
