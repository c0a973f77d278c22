package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates which bridge operation was running when the error occurred
type Phase string

const (
	PhaseValidate Phase = "validate" // host argument validation
	PhaseMarshal  Phase = "marshal"  // host <-> engine value conversion
	PhaseRuntime  Phase = "runtime"  // runtime creation and destruction
	PhaseContext  Phase = "context"  // context creation and destruction
	PhaseRoot     Phase = "root"     // object allocation and rooting
	PhaseInit     Phase = "init"     // standard class installation
	PhaseEvaluate Phase = "evaluate" // script evaluation
	PhaseProperty Phase = "property" // property get/define
	PhaseCall     Phase = "call"     // function invocation
)

// Kind categorizes the error
type Kind string

const (
	// KindArgument is a host argument of the wrong shape or type, detected
	// before any engine call.
	KindArgument Kind = "argument"
	// KindUnicodeSupport means the engine cannot represent the string.
	KindUnicodeSupport Kind = "unicode_support"
	// KindAllocation means an engine call failed without leaving an exception.
	KindAllocation Kind = "allocation"
	// KindScriptException is an exception raised inside the engine.
	KindScriptException Kind = "script_exception"
	// KindLifecycle is an ownership violation: use after release, double
	// release, or destroying a runtime that still has dependents.
	KindLifecycle Kind = "lifecycle"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
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

// Op sets the name of the failing operation
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
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

// ScriptError is an engine exception that was drained from its context and
// translated for the host.
type ScriptError struct {
	// Value is the thrown value when it was a primitive (nil, bool,
	// float64, string). Thrown objects are described by Name/Message only,
	// so an error never owns a rooted handle.
	Value    any
	Phase    Phase
	Name     string
	Message  string
	Stack    string
	Filename string
	Line     int
	Column   int
}

// Error implements the error interface
func (e *ScriptError) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(KindScriptException))
	b.WriteString(": ")

	switch {
	case e.Name != "" && e.Message != "":
		b.WriteString(e.Name)
		b.WriteString(": ")
		b.WriteString(e.Message)
	case e.Name != "":
		b.WriteString(e.Name)
	case e.Message != "":
		b.WriteString(e.Message)
	default:
		b.WriteString("uncaught exception")
	}

	if e.Filename != "" {
		b.WriteString(" at ")
		b.WriteString(e.Filename)
		if e.Line > 0 {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(e.Line))
			if e.Column > 0 {
				b.WriteByte(':')
				b.WriteString(strconv.Itoa(e.Column))
			}
		}
	}

	return b.String()
}

// Is matches any *ScriptError, or an *Error template of kind
// script_exception with the same phase.
func (e *ScriptError) Is(target error) bool {
	switch t := target.(type) {
	case *ScriptError:
		return true
	case *Error:
		return t.Kind == KindScriptException && t.Phase == e.Phase
	}
	return false
}

// KindOf returns the kind of the first bridge error in err's chain, or ""
// when err is not a bridge error.
func KindOf(err error) Kind {
	var se *ScriptError
	if stderrors.As(err, &se) {
		return KindScriptException
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HasKind reports whether err's chain holds a bridge error of kind k.
func HasKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Convenience constructors for common error patterns

// Argument creates an argument validation error
func Argument(op, detail string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindArgument,
		Op:     op,
		Detail: detail,
	}
}

// InvalidArgument wraps a validator failure as an argument error
func InvalidArgument(op string, cause error) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindArgument,
		Op:     op,
		Detail: "invalid parameters",
		Cause:  cause,
	}
}

// UnicodeSupport creates an error for strings the engine cannot represent
func UnicodeSupport(op, detail string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindUnicodeSupport,
		Op:     op,
		Detail: detail,
	}
}

// Allocation creates an error for an engine call that failed without an
// exception. call names the engine function, e.g. "NewObject()".
func Allocation(phase Phase, call string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: call + " failed",
	}
}

// Lifecycle creates an ownership violation error
func Lifecycle(phase Phase, op, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLifecycle,
		Op:     op,
		Detail: detail,
	}
}

// Overflow creates an error for a host number the engine cannot hold exactly
func Overflow(op string, value any) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindArgument,
		Op:     op,
		Value:  value,
		Detail: fmt.Sprintf("value %v is not exactly representable as a double", value),
	}
}

// Unsupported creates an error for a host value with no engine representation
func Unsupported(op string, value any) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindArgument,
		Op:     op,
		Value:  value,
		Detail: fmt.Sprintf("unsupported host type %T", value),
	}
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

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
