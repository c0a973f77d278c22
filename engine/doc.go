// Package engine defines the capabilities the bridge consumes from an
// embedded script engine, and provides a goja-backed implementation.
//
// # Architecture
//
// The engine package provides four main types:
//
//	Engine   - Creates heaps (GojaEngine is the goja backend)
//	Heap     - One managed heap with its root table
//	Context  - An execution environment on a heap
//	Value    - The tagged value: undefined, null, boolean, number, string, object
//
// # Calling Convention
//
// Context methods report engine failure with a false result, like the C
// engine APIs this layer models. A failure caused by script leaves an
// exception pending on the context:
//
//	ctx.BeginRequest()
//	defer ctx.EndRequest()
//
//	v, ok := ctx.EvaluateScript(global, src, "main.js", 1)
//	if !ok {
//	    if ex, pending := ctx.PendingException(); pending {
//	        ctx.ClearPendingException()
//	        return translate(ex)
//	    }
//	    return errAllocation
//	}
//
// A pending exception blocks EvaluateScript, GetProperty, DefineProperty and
// CallFunction until it is cleared; callers must drain it before returning.
//
// # Rooting
//
// Objects returned by NewObject are unrooted. To hold one outside the heap,
// register it with Heap.AddRoot and unregister it with Heap.RemoveRoot
// exactly once. Heap.Destroy refuses to run while roots or contexts remain.
//
// # Standard Classes
//
// A goja heap starts with an empty global scope. InitStandardClasses
// installs Object, Array, Function, JSON, Math and the other built-ins on
// any object, which can then serve as the global of EvaluateScript.
//
// # Thread Safety
//
// Heaps and contexts are not safe for concurrent use. Callers serialize all
// access to one heap.
package engine
