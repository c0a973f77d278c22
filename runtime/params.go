package runtime

import "github.com/wippyai/js-runtime/errors"

// EvaluateParams are the arguments of EvaluateScript.
type EvaluateParams struct {
	// Global is the object the script resolves free names against.
	Global *Object `validate:"required"`
	// Source is UTF-8 script text.
	Source []byte
	// Filename is reported in exception locations.
	Filename string
	// Line is the line number of the first source line. 0 means 1.
	Line int `validate:"gte=0,lte=2147483647"`
}

// PropertyParams are the arguments of GetProperty.
type PropertyParams struct {
	Object *Object `validate:"required"`
	Name   string
}

// DefineParams are the arguments of DefineProperty.
type DefineParams struct {
	Object *Object `validate:"required"`
	Name   string
	// Value is any host value accepted by ToEngine.
	Value any
}

// CallParams are the arguments of CallFunction.
type CallParams struct {
	// This is the receiver. nil calls with an undefined this.
	This     *Object
	Function *Object `validate:"required"`
	Args     []any
}

func validateParams(op string, p any) error {
	if err := validate.Struct(p); err != nil {
		return errors.InvalidArgument(op, err)
	}
	return nil
}
