package engine

import (
	"go.uber.org/zap"

	"github.com/wippyai/js-runtime/roots"
)

// RootID identifies a slot in a heap's root table.
type RootID = roots.Handle

// HeapConfig holds configuration for heap creation
type HeapConfig struct {
	// Logger receives engine diagnostics. nil means the package logger.
	Logger *zap.Logger

	// MaxRoots bounds the root table. 0 means unbounded.
	MaxRoots int

	// MaxStringBytes bounds a single NewString allocation. 0 means unbounded.
	MaxStringBytes int

	// MaxCallStackSize bounds script recursion. 0 means the engine default.
	MaxCallStackSize int
}

// Engine creates heaps. It is the only entry point into an engine backend.
type Engine interface {
	// Name identifies the backend, e.g. "goja".
	Name() string

	// NewHeap creates an independent managed heap.
	NewHeap(cfg HeapConfig) (Heap, error)
}

// Heap is one engine heap with its collector and root table.
type Heap interface {
	// NewContext creates an execution context bound to this heap.
	NewContext() (Context, error)

	// AddRoot registers obj so the collector treats it as reachable.
	// Returns false when the root table is full or the heap is destroyed.
	AddRoot(obj Object, name string) (RootID, bool)

	// RemoveRoot unregisters a root. Returns false for an unknown or
	// already removed id.
	RemoveRoot(id RootID) bool

	// RootCount returns the number of live roots.
	RootCount() int

	// ContextCount returns the number of live contexts.
	ContextCount() int

	// Destroy releases the heap. It fails while contexts or roots are live.
	Destroy() error
}

// Context is an execution environment on a heap. Every method except
// BeginRequest, InRequest, Destroy and the exception accessors must be
// called between BeginRequest and EndRequest.
//
// Methods returning a bool report engine failure with false. A failure may
// leave an exception pending, which stays on the context until cleared.
// While an exception is pending, script-running methods refuse to run.
type Context interface {
	// BeginRequest opens a request bracket. Nested brackets panic.
	BeginRequest()

	// EndRequest closes the request bracket.
	EndRequest()

	// InRequest reports whether a request bracket is open.
	InRequest() bool

	// StringsAreUTF8 reports whether NewString decodes its input as UTF-8.
	StringsAreUTF8() bool

	// NewString copies a host-encoded buffer into an engine string.
	NewString(b []byte) (String, bool)

	// NewObject allocates a plain object. The object is unrooted.
	NewObject() (Object, bool)

	// InitStandardClasses installs the built-in global bindings on obj.
	InitStandardClasses(obj Object) bool

	// GetProperty reads a named property.
	GetProperty(obj Object, name String) (Value, bool)

	// DefineProperty assigns a named property.
	DefineProperty(obj Object, name String, v Value) bool

	// IsCallable reports whether obj is a function.
	IsCallable(obj Object) bool

	// CallFunction calls fn with the given this and arguments. this may be nil.
	CallFunction(this, fn Object, args []Value) (Value, bool)

	// EvaluateScript runs src with global as the global scope. filename and
	// line are used for error locations.
	EvaluateScript(global Object, src []byte, filename string, line int) (Value, bool)

	// IsExceptionPending reports whether an exception waits to be retrieved.
	IsExceptionPending() bool

	// PendingException returns the pending exception without clearing it.
	PendingException() (Exception, bool)

	// ClearPendingException discards the pending exception.
	ClearPendingException()

	// Destroy releases the context. Further calls are invalid.
	Destroy()
}

// Object is a reference to an object on an engine heap.
type Object interface {
	// Same reports whether both refer to one heap object.
	Same(other Object) bool
}

// String is a string allocated on an engine heap.
type String interface {
	// UTF16 returns the string's code units.
	UTF16() []uint16

	// Len returns the length in UTF-16 code units.
	Len() int

	// String returns the UTF-8 form.
	String() string
}

// ExceptionReport describes a pending exception.
type ExceptionReport struct {
	Name     string
	Message  string
	Stack    string
	Filename string
	Line     int
	Column   int
}

// Exception is a thrown value together with its report.
type Exception struct {
	Value  Value
	Report ExceptionReport
}
