// Package errs provides structured error types and helpers for materialcalc.
package errs

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// Code identifies a validation or parse failure category.
type Code string

const (
	// CodeEmptyInput indicates a required field was left blank.
	CodeEmptyInput Code = "empty_input"
	// CodeInvalidNumber indicates text that cannot be read as a number.
	CodeInvalidNumber Code = "invalid_number"
	// CodeAmbiguousNumberFormat indicates comma/dot mixing that cannot be resolved.
	CodeAmbiguousNumberFormat Code = "ambiguous_number_format"
	// CodeNegativeNotAllowed indicates a negative value in a field that only accepts magnitudes.
	CodeNegativeNotAllowed Code = "negative_not_allowed"
	// CodeTooLarge indicates a value above the configured ceiling.
	CodeTooLarge Code = "too_large"
	// CodeMustBePositive indicates zero where a strictly positive value is required.
	CodeMustBePositive Code = "must_be_positive"
	// CodeInvalidBorder indicates an inner measure that is not smaller than its outer pair.
	CodeInvalidBorder Code = "invalid_border"
	// CodeInvalidCoats indicates a coat count that is not a positive integer.
	CodeInvalidCoats Code = "invalid_coats"
	// CodeUnknownUnit indicates an unrecognised unit selector.
	CodeUnknownUnit Code = "unknown_unit"
	// CodeUnknownShape indicates an unrecognised shape tag.
	CodeUnknownShape Code = "unknown_shape"
	// CodeUnknownMaterial indicates an unrecognised material preset.
	CodeUnknownMaterial Code = "unknown_material"
	// CodeInvalid indicates a malformed request envelope.
	CodeInvalid Code = "invalid_request"
)

// E captures a structured failure keyed to the offending input field.
type E struct {
	Field       string
	Code        Code
	HTTP        int
	Message     string
	Remediation string
	Details     map[string]string

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the field and error code.
func New(field string, code Code, opts ...Option) *E {
	e := &E{
		Field:       strings.TrimSpace(field),
		Code:        code,
		HTTP:        0,
		Message:     "",
		Remediation: "",
		Details:     nil,
		cause:       nil,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithRemediation attaches remediation guidance to the error.
func WithRemediation(remediation string) Option {
	trimmed := strings.TrimSpace(remediation)
	return func(e *E) {
		e.Remediation = trimmed
	}
}

// WithHTTP records the associated HTTP status code.
func WithHTTP(status int) Option {
	return func(e *E) {
		e.HTTP = status
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

// WithDetail appends a single key/value pair of diagnostic context.
func WithDetail(key, value string) Option {
	return func(e *E) {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			return
		}
		if e.Details == nil {
			e.Details = make(map[string]string, 1)
		}
		e.Details[trimmedKey] = strings.TrimSpace(value)
	}
}

// Error renders "field: code: message", followed by any remediation, sorted
// details and cause. HTTP status is left out; it belongs to transports.
func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if field := strings.TrimSpace(e.Field); field != "" {
		b.WriteString(field)
		b.WriteString(": ")
	}
	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	b.WriteString(code)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Remediation != "" {
		b.WriteString(" (")
		b.WriteString(e.Remediation)
		b.WriteString(")")
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(k + "=" + strconv.Quote(e.Details[k]))
		}
		b.WriteString("]")
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *E) Unwrap() error { return e.cause }

// Is reports whether target is an *E carrying the same code.
func (e *E) Is(target error) bool {
	var other *E
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code
}

// InField returns a copy of e re-keyed to field. The receiver is left untouched.
func (e *E) InField(field string) *E {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Field = strings.TrimSpace(field)
	if len(e.Details) > 0 {
		clone.Details = make(map[string]string, len(e.Details))
		for k, v := range e.Details {
			clone.Details[k] = v
		}
	}
	return &clone
}

// CodeOf extracts the error code from err, or the empty code when err is not an *E.
func CodeOf(err error) Code {
	var e *E
	if errors.As(err, &e) && e != nil {
		return e.Code
	}
	return ""
}

// FieldOf extracts the offending field from err, or the empty string when err is not an *E.
func FieldOf(err error) string {
	var e *E
	if errors.As(err, &e) && e != nil {
		return e.Field
	}
	return ""
}
