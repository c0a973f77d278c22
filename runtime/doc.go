// Package runtime is the host-facing bridge to an embedded JavaScript engine.
//
// # Quick Start
//
//	rt, err := runtime.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	ctx, err := rt.NewContext()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	global, err := ctx.NewObject()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer global.Release()
//
//	if err := ctx.InitStandardClasses(global); err != nil {
//	    log.Fatal(err)
//	}
//
//	v, err := ctx.EvaluateScript(runtime.EvaluateParams{
//	    Global:   global,
//	    Source:   []byte("[1, 2, 3].map(x => x * 2).join()"),
//	    Filename: "main.js",
//	    Line:     1,
//	})
//	fmt.Println(v) // "2,4,6"
//
// Deferred calls run in reverse order, so the object is released and the
// context closed before the runtime is.
//
// # Ownership
//
// A Runtime holds one reference for its owner and one for every live Context
// and Object. Close fails with a lifecycle error until all of them are gone.
// An Object is rooted in the engine heap from the moment it is returned until
// Release; releasing twice is an error. Objects the host drops without
// releasing are unrooted when the Go collector reclaims them, and a warning
// is logged.
//
// # Values
//
// Engine values map to host values as follows:
//
//	undefined -> runtime.Undefined
//	null      -> nil
//	boolean   -> bool
//	number    -> float64
//	string    -> string
//	object    -> *Object
//
// # Errors
//
// Every error is an *errors.Error or, for exceptions thrown by script, an
// *errors.ScriptError. errors.KindOf tells them apart:
//
//	argument          bad parameters, caught before the engine is called
//	unicode_support   a string the engine cannot take
//	allocation        the engine failed without raising an exception
//	script_exception  script threw; name, message and location are kept
//	lifecycle         use after release or close, or close with dependents
//
// A thrown exception is always cleared from the context before the call
// returns, so the next call on the same context starts clean.
//
// # Thread Safety
//
// All contexts of a runtime share one lock, held for the duration of each
// operation. Starting an operation on a context that is already inside one
// panics.
package runtime
