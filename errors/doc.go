// Package errors provides structured error types for the js-runtime bridge.
//
// Errors are categorized by Phase (which operation was running) and Kind
// (error category). Kinds follow the bridge error taxonomy:
//
//	argument          host passed the wrong shape or type; no engine call was made
//	unicode_support   the engine cannot represent the string
//	allocation        the engine failed without leaving an exception
//	script_exception  an engine exception, drained and translated
//	lifecycle         use after release, double release, runtime still in use
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseProperty, errors.KindArgument).
//		Op("GetProperty").
//		Detail("object belongs to a different runtime").
//		Build()
//
// Script exceptions are reported as *ScriptError, which carries the
// exception name, message, stack and source location:
//
//	var se *errors.ScriptError
//	if errors.As(err, &se) {
//	    fmt.Println(se.Name, se.Line)
//	}
//
// KindOf classifies any error chain without type assertions.
package errors
