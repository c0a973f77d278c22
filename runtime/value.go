package runtime

// UndefinedType is the host representation of the engine's undefined.
type UndefinedType struct{}

func (UndefinedType) String() string {
	return "undefined"
}

// Undefined is the host value for the engine's undefined. The engine's null
// is the Go nil.
var Undefined UndefinedType

// IsUndefined reports whether v is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(UndefinedType)
	return ok
}
