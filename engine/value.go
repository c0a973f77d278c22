package engine

import "strconv"

// Tag discriminates engine values.
type Tag uint8

const (
	TagUndefined Tag = iota
	TagNull
	TagBool
	TagNumber
	TagString
	TagObject
)

func (t Tag) String() string {
	switch t {
	case TagUndefined:
		return "undefined"
	case TagNull:
		return "null"
	case TagBool:
		return "boolean"
	case TagNumber:
		return "number"
	case TagString:
		return "string"
	case TagObject:
		return "object"
	default:
		return "tag(" + strconv.Itoa(int(t)) + ")"
	}
}

// Value is the engine's tagged value. The zero Value is undefined.
type Value struct {
	str String
	obj Object
	num float64
	tag Tag
	b   bool
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{tag: TagUndefined} }

// Null returns the null value.
func Null() Value { return Value{tag: TagNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{tag: TagBool, b: b} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{tag: TagNumber, num: f} }

// StringValue wraps an engine string.
func StringValue(s String) Value { return Value{tag: TagString, str: s} }

// ObjectValue wraps an object reference.
func ObjectValue(o Object) Value { return Value{tag: TagObject, obj: o} }

// Tag returns the value's discriminator.
func (v Value) Tag() Tag { return v.tag }

// AsBool returns the boolean payload.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the numeric payload.
func (v Value) AsNumber() float64 { return v.num }

// AsString returns the string payload, nil unless tagged string.
func (v Value) AsString() String { return v.str }

// AsObject returns the object payload, nil unless tagged object.
func (v Value) AsObject() Object { return v.obj }
