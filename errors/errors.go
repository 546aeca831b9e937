package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseValidate Phase = "validate" // boundary argument validation
	PhaseParse    Phase = "parse"    // ticket/address parsing
	PhaseStore    Phase = "store"    // blob store operations
	PhaseNetwork  Phase = "network"  // endpoint and downloads
	PhaseDocs     Phase = "docs"     // document engine operations
	PhaseRuntime  Phase = "runtime"  // node lifecycle and task execution
)

// Kind categorizes the error
type Kind string

const (
	KindNilPointer    Kind = "nil_pointer"
	KindInvalidUTF8   Kind = "invalid_utf8"
	KindInvalidHex    Kind = "invalid_hex"
	KindInvalidLength Kind = "invalid_length"
	KindInvalidInput  Kind = "invalid_input"
	KindInvalidTicket Kind = "invalid_ticket"
	KindNotFound      Kind = "not_found"
	KindNotEnabled    Kind = "not_enabled"
	KindTimeout       Kind = "timeout"
	KindCanceled      Kind = "canceled"
	KindIO            Kind = "io"
	KindSignature     Kind = "signature"
	KindClosed        Kind = "closed"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the argument path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NilArgument reports a required argument that was null
func NilArgument(name string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindNilPointer,
		Path:   []string{name},
		Detail: fmt.Sprintf("%s cannot be null", name),
	}
}

// InvalidUTF8 reports malformed UTF-8 in a string argument
func InvalidUTF8(name string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInvalidUTF8,
		Path:   []string{name},
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidHex reports a malformed hex string argument
func InvalidHex(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInvalidHex,
		Path:   []string{name},
		Detail: "invalid hex string",
		Cause:  cause,
	}
}

// InvalidLength reports key material of the wrong size
func InvalidLength(name string, want, got int) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInvalidLength,
		Path:   []string{name},
		Detail: fmt.Sprintf("expected %d bytes, got %d", want, got),
		Value:  got,
	}
}

// NotEnabled reports an operation against a feature the node was created without
func NotEnabled(feature string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindNotEnabled,
		Detail: fmt.Sprintf("%s not enabled on this node", feature),
	}
}

// StaleHandle reports a handle that no longer resolves to a live resource
func StaleHandle(name string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindNotFound,
		Path:   []string{name},
		Detail: fmt.Sprintf("%s is not a live handle", name),
	}
}

// Timeout reports an operation that exceeded its deadline
func Timeout(op string, ms uint64) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindTimeout,
		Detail: fmt.Sprintf("%s timed out after %dms", op, ms),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidTicket,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// IO wraps a filesystem or storage failure
func IO(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Detail: detail,
		Cause:  cause,
	}
}

// BadSignature reports an entry whose author signature did not verify
func BadSignature(detail string) *Error {
	return &Error{
		Phase:  PhaseDocs,
		Kind:   KindSignature,
		Detail: detail,
	}
}

// Closed reports an operation against a resource that has shut down
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// As re-exports the standard matcher so callers need a single errors import
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// KindOf extracts the Kind from err, or "" for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
