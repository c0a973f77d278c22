// Package jsruntime bridges Go hosts and an embedded JavaScript engine.
//
// Engine objects are exposed to Go as rooted handles, engine values are
// marshalled to plain Go values, and exceptions raised by script are drained
// from their context and returned as structured errors.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	jsruntime/
//	├── runtime/         Host-facing API: runtimes, contexts, objects, evaluation
//	├── engine/          Engine capability interfaces and the goja backend
//	├── roots/           Handle table backing each heap's GC roots
//	├── errors/          Structured error types for debugging
//	├── cmd/jsrun/       Command line runner and interactive REPL
//	└── examples/        Usage examples
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
//	v, err := ctx.Eval(global, "2 + 2")
//	fmt.Println(v) // 4
package jsruntime
