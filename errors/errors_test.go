package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseProperty,
				Kind:   KindArgument,
				Op:     "GetProperty",
				Detail: "object released",
			},
			contains: []string{"[property]", "argument", "in GetProperty", "object released"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseRoot,
				Kind:  KindAllocation,
			},
			contains: []string{"[root]", "allocation"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRuntime,
				Kind:   KindAllocation,
				Detail: "heap full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[runtime]", "allocation", "heap full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseMarshal,
		Kind:  KindArgument,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseEvaluate,
		Kind:   KindAllocation,
		Detail: "EvaluateScript() failed",
	}

	if !err.Is(&Error{Phase: PhaseEvaluate, Kind: KindAllocation}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseRoot, Kind: KindAllocation}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseEvaluate, Kind: KindArgument}) {
		t.Error("Is should not match different kind")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !Is(wrapped, &Error{Phase: PhaseEvaluate, Kind: KindAllocation}) {
		t.Error("Is should match through wrapping")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseCall, KindArgument).
		Op("CallFunction").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "function", "number").
		Build()

	if err.Phase != PhaseCall {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseCall)
	}
	if err.Kind != KindArgument {
		t.Errorf("Kind = %v, want %v", err.Kind, KindArgument)
	}
	if err.Op != "CallFunction" {
		t.Errorf("Op = %v, want CallFunction", err.Op)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected function, got number" {
		t.Errorf("Detail = %v, want 'expected function, got number'", err.Detail)
	}
}

func TestScriptError(t *testing.T) {
	err := &ScriptError{
		Phase:    PhaseEvaluate,
		Name:     "SyntaxError",
		Message:  "Unexpected end of input",
		Filename: "<string>",
		Line:     3,
		Column:   4,
	}

	msg := err.Error()
	for _, s := range []string{"[evaluate]", "script_exception", "SyntaxError: Unexpected end of input", "<string>:3:4"} {
		if !strings.Contains(msg, s) {
			t.Errorf("error message %q does not contain %q", msg, s)
		}
	}

	if !errors.Is(err, &ScriptError{}) {
		t.Error("errors.Is should match any ScriptError")
	}
	if !errors.Is(err, &Error{Phase: PhaseEvaluate, Kind: KindScriptException}) {
		t.Error("errors.Is should match a script_exception template")
	}
	if errors.Is(err, &Error{Phase: PhaseProperty, Kind: KindScriptException}) {
		t.Error("errors.Is should not match another phase")
	}

	bare := &ScriptError{Phase: PhaseProperty, Value: 7.0}
	if !strings.Contains(bare.Error(), "uncaught exception") {
		t.Errorf("bare error = %q", bare.Error())
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain", errors.New("x"), ""},
		{"argument", Argument("NewObject", "bad"), KindArgument},
		{"wrapped allocation", fmt.Errorf("ctx: %w", Allocation(PhaseRoot, "NewObject()")), KindAllocation},
		{"script", &ScriptError{Phase: PhaseEvaluate}, KindScriptException},
		{"wrapped script", fmt.Errorf("ctx: %w", &ScriptError{}), KindScriptException},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
			if tt.want != "" && !HasKind(tt.err, tt.want) {
				t.Errorf("HasKind(%q) = false", tt.want)
			}
		})
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Argument", func(t *testing.T) {
		err := Argument("GetProperty", "object is nil")
		if err.Kind != KindArgument || err.Phase != PhaseValidate {
			t.Errorf("Kind=%v Phase=%v", err.Kind, err.Phase)
		}
	})

	t.Run("InvalidArgument", func(t *testing.T) {
		cause := errors.New("Line must be >= 1")
		err := InvalidArgument("EvaluateScript", cause)
		if err.Kind != KindArgument || !errors.Is(err, cause) {
			t.Errorf("Kind=%v Cause=%v", err.Kind, err.Cause)
		}
	})

	t.Run("UnicodeSupport", func(t *testing.T) {
		err := UnicodeSupport("GetProperty", "invalid UTF-8")
		if err.Kind != KindUnicodeSupport {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnicodeSupport)
		}
	})

	t.Run("Allocation", func(t *testing.T) {
		err := Allocation(PhaseRoot, "NewObject()")
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !strings.Contains(err.Error(), "NewObject() failed") {
			t.Errorf("Error() = %v, should name the engine call", err.Error())
		}
	})

	t.Run("Lifecycle", func(t *testing.T) {
		err := Lifecycle(PhaseRuntime, "Close", "2 dependents alive")
		if err.Kind != KindLifecycle {
			t.Errorf("Kind = %v, want %v", err.Kind, KindLifecycle)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow("ToEngine", int64(1)<<60)
		if err.Kind != KindArgument || err.Phase != PhaseMarshal {
			t.Errorf("Kind=%v Phase=%v", err.Kind, err.Phase)
		}
		if err.Value != int64(1)<<60 {
			t.Errorf("Value = %v", err.Value)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported("ToEngine", struct{}{})
		if !strings.Contains(err.Detail, "struct {}") {
			t.Errorf("Detail = %v", err.Detail)
		}
	})
}
