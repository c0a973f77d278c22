package runtime

import (
	"reflect"
	"unicode/utf8"

	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
)

// maxSafeInteger is the largest magnitude a double holds without rounding.
const maxSafeInteger = 1 << 53

// ToHost converts an engine value to its host form:
//
//	undefined -> Undefined
//	null      -> nil
//	boolean   -> bool
//	number    -> float64
//	string    -> string
//	object    -> *Object (rooted; the caller must Release it)
func (c *Context) ToHost(v engine.Value) (any, error) {
	end, err := c.enter("ToHost")
	if err != nil {
		return nil, err
	}
	defer end()
	return c.toHostLocked(v)
}

// ToEngine converts a host value to an engine value. Strings allocate on the
// engine heap. Integers outside ±2^53 and unknown types are rejected.
func (c *Context) ToEngine(v any) (engine.Value, error) {
	if err := c.stringCapable("ToEngine", v); err != nil {
		return engine.Undefined(), err
	}
	end, err := c.enter("ToEngine")
	if err != nil {
		return engine.Undefined(), err
	}
	defer end()
	return c.toEngineLocked("ToEngine", v)
}

func (c *Context) toHostLocked(v engine.Value) (any, error) {
	switch v.Tag() {
	case engine.TagUndefined:
		return Undefined, nil
	case engine.TagNull:
		return nil, nil
	case engine.TagBool:
		return v.AsBool(), nil
	case engine.TagNumber:
		return v.AsNumber(), nil
	case engine.TagString:
		s := v.AsString()
		if s == nil {
			return nil, errors.Allocation(errors.PhaseMarshal, "String()")
		}
		return s.String(), nil
	case engine.TagObject:
		return c.rt.rootLocked(v.AsObject(), "ToHost")
	default:
		return nil, errors.New(errors.PhaseMarshal, errors.KindArgument).
			Op("ToHost").
			Detail("unknown value tag %d", v.Tag()).
			Build()
	}
}

func (c *Context) toEngineLocked(op string, v any) (engine.Value, error) {
	switch x := v.(type) {
	case nil:
		return engine.Null(), nil
	case UndefinedType:
		return engine.Undefined(), nil
	case bool:
		return engine.Bool(x), nil
	case float64:
		return engine.Number(x), nil
	case float32:
		return engine.Number(float64(x)), nil
	case string:
		s, err := c.newStringLocked(errors.PhaseMarshal, x)
		if err != nil {
			return engine.Undefined(), err
		}
		return engine.StringValue(s), nil
	case *Object:
		if err := x.usable(c.rt, op, "value"); err != nil {
			return engine.Undefined(), err
		}
		return engine.ObjectValue(x.obj), nil
	case engine.Value:
		return engine.Undefined(), errors.Unsupported(op, v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n > maxSafeInteger || n < -maxSafeInteger {
			return engine.Undefined(), errors.Overflow(op, v)
		}
		return engine.Number(float64(n)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > maxSafeInteger {
			return engine.Undefined(), errors.Overflow(op, v)
		}
		return engine.Number(float64(n)), nil
	case reflect.Float32, reflect.Float64:
		return engine.Number(rv.Float()), nil
	case reflect.Bool:
		return engine.Bool(rv.Bool()), nil
	case reflect.String:
		return c.toEngineLocked(op, rv.String())
	}
	return engine.Undefined(), errors.Unsupported(op, v)
}

// newStringLocked allocates an engine string. The encoding checks in
// stringCapable have already run for host-supplied strings.
func (c *Context) newStringLocked(phase errors.Phase, s string) (engine.String, error) {
	es, ok := c.ec.NewString([]byte(s))
	if !ok {
		return nil, c.fail(phase, "NewString()")
	}
	return es, nil
}

// stringCapable fails with a unicode support error when v holds a string the
// engine cannot take as UTF-8. It runs before any engine call.
func (c *Context) stringCapable(op string, values ...any) error {
	for _, v := range values {
		var ok, isString bool
		switch x := v.(type) {
		case string:
			ok, isString = utf8.ValidString(x), true
		case []byte:
			ok, isString = utf8.Valid(x), true
		default:
			if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
				ok, isString = utf8.ValidString(rv.String()), true
			}
		}
		if !isString {
			continue
		}
		if !c.ec.StringsAreUTF8() {
			return errors.UnicodeSupport(op, "engine does not accept UTF-8 strings")
		}
		if !ok {
			return errors.UnicodeSupport(op, "string is not valid UTF-8")
		}
	}
	return nil
}

