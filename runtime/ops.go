package runtime

import (
	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
)

// NewObject allocates an empty engine object and roots it before returning.
func (c *Context) NewObject() (*Object, error) {
	end, err := c.enter("NewObject")
	if err != nil {
		return nil, err
	}
	defer end()

	obj, ok := c.ec.NewObject()
	if !ok {
		return nil, c.fail(errors.PhaseRoot, "NewObject()")
	}
	return c.rt.rootLocked(obj, "NewObject")
}

// InitStandardClasses installs the engine's built-in bindings (Object,
// Array, Math, JSON and the rest) on global.
func (c *Context) InitStandardClasses(global *Object) error {
	end, err := c.enter("InitStandardClasses", handleArg{obj: global, param: "global"})
	if err != nil {
		return err
	}
	defer end()

	if !c.ec.InitStandardClasses(global.obj) {
		return c.fail(errors.PhaseInit, "InitStandardClasses()")
	}
	return nil
}

// EvaluateScript runs p.Source with p.Global as the global scope and returns
// the completion value in host form.
func (c *Context) EvaluateScript(p EvaluateParams) (any, error) {
	if err := validateParams("EvaluateScript", p); err != nil {
		return nil, err
	}
	if err := c.stringCapable("EvaluateScript", p.Source, p.Filename); err != nil {
		return nil, err
	}
	line := p.Line
	if line == 0 {
		line = 1
	}

	end, err := c.enter("EvaluateScript", handleArg{obj: p.Global, param: "Global"})
	if err != nil {
		return nil, err
	}
	defer end()

	v, ok := c.ec.EvaluateScript(p.Global.obj, p.Source, p.Filename, line)
	if !ok {
		return nil, c.fail(errors.PhaseEvaluate, "EvaluateScript()")
	}
	return c.toHostLocked(v)
}

// Eval evaluates source against global from line 1 of a file named "eval".
func (c *Context) Eval(global *Object, source string) (any, error) {
	return c.EvaluateScript(EvaluateParams{
		Global:   global,
		Source:   []byte(source),
		Filename: "eval",
		Line:     1,
	})
}

// GetProperty reads a named property. Getters run and may throw.
func (c *Context) GetProperty(p PropertyParams) (any, error) {
	if err := validateParams("GetProperty", p); err != nil {
		return nil, err
	}
	if err := c.stringCapable("GetProperty", p.Name); err != nil {
		return nil, err
	}

	end, err := c.enter("GetProperty", handleArg{obj: p.Object, param: "Object"})
	if err != nil {
		return nil, err
	}
	defer end()

	name, err := c.newStringLocked(errors.PhaseProperty, p.Name)
	if err != nil {
		return nil, err
	}
	v, ok := c.ec.GetProperty(p.Object.obj, name)
	if !ok {
		return nil, c.fail(errors.PhaseProperty, "GetProperty()")
	}
	return c.toHostLocked(v)
}

// DefineProperty stores p.Value under p.Name. Setters run and may throw.
func (c *Context) DefineProperty(p DefineParams) error {
	if err := validateParams("DefineProperty", p); err != nil {
		return err
	}
	if err := c.stringCapable("DefineProperty", p.Name, p.Value); err != nil {
		return err
	}

	end, err := c.enter("DefineProperty", handleArg{obj: p.Object, param: "Object"})
	if err != nil {
		return err
	}
	defer end()

	value, err := c.toEngineLocked("DefineProperty", p.Value)
	if err != nil {
		return err
	}
	name, err := c.newStringLocked(errors.PhaseProperty, p.Name)
	if err != nil {
		return err
	}
	if !c.ec.DefineProperty(p.Object.obj, name, value) {
		return c.fail(errors.PhaseProperty, "DefineProperty()")
	}
	return nil
}

// CallFunction calls p.Function with p.This and the marshalled p.Args.
func (c *Context) CallFunction(p CallParams) (any, error) {
	if err := validateParams("CallFunction", p); err != nil {
		return nil, err
	}
	if err := c.stringCapable("CallFunction", p.Args...); err != nil {
		return nil, err
	}

	end, err := c.enter("CallFunction",
		handleArg{obj: p.Function, param: "Function"},
		handleArg{obj: p.This, param: "This", optional: true})
	if err != nil {
		return nil, err
	}
	defer end()

	if !c.ec.IsCallable(p.Function.obj) {
		return nil, errors.Argument("CallFunction", "Function is not callable")
	}

	args := make([]engine.Value, len(p.Args))
	for i, a := range p.Args {
		v, err := c.toEngineLocked("CallFunction", a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	var this engine.Object
	if p.This != nil {
		this = p.This.obj
	}
	v, ok := c.ec.CallFunction(this, p.Function.obj, args)
	if !ok {
		return nil, c.fail(errors.PhaseCall, "CallFunction()")
	}
	return c.toHostLocked(v)
}
