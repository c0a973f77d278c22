package engine

import (
	"errors"
	"testing"
)

func newTestHeap(t *testing.T, cfg HeapConfig) (Heap, Context) {
	t.Helper()
	h, err := NewGojaEngine().NewHeap(cfg)
	if err != nil {
		t.Fatalf("NewHeap failed: %v", err)
	}
	c, err := h.NewContext()
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	return h, c
}

// newGlobal returns a rooted object with standard classes, inside a request.
func newGlobal(t *testing.T, h Heap, c Context) (Object, RootID) {
	t.Helper()
	obj, ok := c.NewObject()
	if !ok {
		t.Fatal("NewObject failed")
	}
	id, ok := h.AddRoot(obj, "global")
	if !ok {
		t.Fatal("AddRoot failed")
	}
	if !c.InitStandardClasses(obj) {
		t.Fatal("InitStandardClasses failed")
	}
	return obj, id
}

func mustString(t *testing.T, c Context, s string) String {
	t.Helper()
	str, ok := c.NewString([]byte(s))
	if !ok {
		t.Fatalf("NewString(%q) failed", s)
	}
	return str
}

func TestGojaEngine_Name(t *testing.T) {
	if got := NewGojaEngine().Name(); got != "goja" {
		t.Errorf("Name() = %q, want goja", got)
	}
}

func TestHeap_Lifecycle(t *testing.T) {
	h, c := newTestHeap(t, HeapConfig{})

	if h.ContextCount() != 1 {
		t.Fatalf("ContextCount() = %d, want 1", h.ContextCount())
	}
	if err := h.Destroy(); !errors.Is(err, ErrContextsAlive) {
		t.Fatalf("Destroy with live context: %v", err)
	}

	c.BeginRequest()
	obj, ok := c.NewObject()
	if !ok {
		t.Fatal("NewObject failed")
	}
	id, ok := h.AddRoot(obj, "test")
	if !ok {
		t.Fatal("AddRoot failed")
	}
	c.EndRequest()
	c.Destroy()
	c.Destroy()

	if h.ContextCount() != 0 {
		t.Fatalf("ContextCount() = %d after Destroy", h.ContextCount())
	}
	if err := h.Destroy(); !errors.Is(err, ErrRootsAlive) {
		t.Fatalf("Destroy with live root: %v", err)
	}

	if !h.RemoveRoot(id) {
		t.Fatal("RemoveRoot failed")
	}
	if h.RemoveRoot(id) {
		t.Fatal("second RemoveRoot should fail")
	}

	if err := h.Destroy(); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if err := h.Destroy(); !errors.Is(err, ErrHeapDestroyed) {
		t.Fatalf("second Destroy: %v", err)
	}
	if _, err := h.NewContext(); !errors.Is(err, ErrHeapDestroyed) {
		t.Fatalf("NewContext after Destroy: %v", err)
	}
}

func TestHeap_MaxRoots(t *testing.T) {
	h, c := newTestHeap(t, HeapConfig{MaxRoots: 1})
	c.BeginRequest()
	defer c.EndRequest()

	a, _ := c.NewObject()
	b, _ := c.NewObject()

	if _, ok := h.AddRoot(a, "a"); !ok {
		t.Fatal("first AddRoot failed")
	}
	if _, ok := h.AddRoot(b, "b"); ok {
		t.Fatal("AddRoot beyond MaxRoots should fail")
	}
	if c.IsExceptionPending() {
		t.Fatal("root table overflow must not raise")
	}
	if h.RootCount() != 1 {
		t.Fatalf("RootCount() = %d, want 1", h.RootCount())
	}
}

func TestContext_RequestBracket(t *testing.T) {
	_, c := newTestHeap(t, HeapConfig{})

	if c.InRequest() {
		t.Fatal("new context should be idle")
	}
	c.BeginRequest()
	if !c.InRequest() {
		t.Fatal("expected InRequest after BeginRequest")
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("nested BeginRequest should panic")
			}
		}()
		c.BeginRequest()
	}()

	c.EndRequest()
	if c.InRequest() {
		t.Fatal("expected idle after EndRequest")
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("NewObject outside a request should panic")
			}
		}()
		c.NewObject()
	}()
}

func TestContext_EvaluateScript(t *testing.T) {
	h, c := newTestHeap(t, HeapConfig{})
	c.BeginRequest()
	defer c.EndRequest()
	global, _ := newGlobal(t, h, c)

	tests := []struct {
		src  string
		tag  Tag
		want any
	}{
		{"2+2", TagNumber, 4.0},
		{"'a'+'b'", TagString, "ab"},
		{"undefined", TagUndefined, nil},
		{"null", TagNull, nil},
		{"!0", TagBool, true},
		{"[]", TagObject, nil},
		{"typeof Symbol.iterator", TagString, "symbol"},
		{"Symbol('s')", TagString, "Symbol(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, ok := c.EvaluateScript(global, []byte(tt.src), "test.js", 1)
			if !ok {
				ex, _ := c.PendingException()
				c.ClearPendingException()
				t.Fatalf("EvaluateScript failed: %+v", ex.Report)
			}
			if v.Tag() != tt.tag {
				t.Fatalf("tag = %v, want %v", v.Tag(), tt.tag)
			}
			switch tt.tag {
			case TagNumber:
				if v.AsNumber() != tt.want {
					t.Errorf("got %v, want %v", v.AsNumber(), tt.want)
				}
			case TagString:
				if v.AsString().String() != tt.want {
					t.Errorf("got %q, want %q", v.AsString().String(), tt.want)
				}
			case TagBool:
				if v.AsBool() != tt.want {
					t.Errorf("got %v, want %v", v.AsBool(), tt.want)
				}
			}
		})
	}
}

func TestContext_PendingExceptionBlocks(t *testing.T) {
	h, c := newTestHeap(t, HeapConfig{})
	c.BeginRequest()
	defer c.EndRequest()
	global, _ := newGlobal(t, h, c)

	if _, ok := c.EvaluateScript(global, []byte("throw new Error('first')"), "a.js", 1); ok {
		t.Fatal("expected failure")
	}
	if !c.IsExceptionPending() {
		t.Fatal("expected pending exception")
	}

	// refused without replacing the pending exception
	if _, ok := c.EvaluateScript(global, []byte("1"), "b.js", 1); ok {
		t.Fatal("EvaluateScript should refuse while an exception is pending")
	}
	if _, ok := c.GetProperty(global, mustString(t, c, "Object")); ok {
		t.Fatal("GetProperty should refuse while an exception is pending")
	}

	ex, ok := c.PendingException()
	if !ok || ex.Report.Message != "first" {
		t.Fatalf("PendingException() = %+v, %v", ex.Report, ok)
	}
	if ex.Value.Tag() != TagObject {
		t.Errorf("thrown value tag = %v, want object", ex.Value.Tag())
	}

	c.ClearPendingException()
	if c.IsExceptionPending() {
		t.Fatal("exception still pending after clear")
	}
	if v, ok := c.EvaluateScript(global, []byte("1"), "b.js", 1); !ok || v.AsNumber() != 1 {
		t.Fatal("EvaluateScript should succeed after clear")
	}
}

func TestContext_ExceptionReport(t *testing.T) {
	h, c := newTestHeap(t, HeapConfig{})
	c.BeginRequest()
	defer c.EndRequest()
	global, _ := newGlobal(t, h, c)

	tests := []struct {
		name     string
		src      string
		line     int
		wantName string
		wantMsg  string
		wantLine int
	}{
		{"type error", "throw new TypeError('bad')", 1, "TypeError", "bad", 1},
		{"offset line", "\n\nthrow new RangeError('far')", 10, "RangeError", "far", 12},
		{"reference error", "missing()", 5, "ReferenceError", "missing is not defined", 5},
		{"primitive", "throw 'text'", 1, "", "text", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := c.EvaluateScript(global, []byte(tt.src), "report.js", tt.line); ok {
				t.Fatal("expected failure")
			}
			ex, ok := c.PendingException()
			c.ClearPendingException()
			if !ok {
				t.Fatal("expected pending exception")
			}
			r := ex.Report
			if r.Name != tt.wantName || r.Message != tt.wantMsg {
				t.Errorf("report = %q: %q, want %q: %q", r.Name, r.Message, tt.wantName, tt.wantMsg)
			}
			if r.Filename != "report.js" || r.Line != tt.wantLine {
				t.Errorf("location = %s:%d, want report.js:%d", r.Filename, r.Line, tt.wantLine)
			}
		})
	}
}

func TestContext_SyntaxError(t *testing.T) {
	h, c := newTestHeap(t, HeapConfig{})
	c.BeginRequest()
	defer c.EndRequest()
	global, _ := newGlobal(t, h, c)

	if _, ok := c.EvaluateScript(global, []byte("var = 1"), "syntax.js", 7); ok {
		t.Fatal("expected failure")
	}
	ex, ok := c.PendingException()
	c.ClearPendingException()
	if !ok {
		t.Fatal("expected pending exception")
	}
	if ex.Report.Name != "SyntaxError" {
		t.Errorf("Name = %q, want SyntaxError", ex.Report.Name)
	}
	if ex.Report.Filename != "syntax.js" || ex.Report.Line != 7 {
		t.Errorf("location = %s:%d, want syntax.js:7", ex.Report.Filename, ex.Report.Line)
	}
}

func TestContext_StandardClasses(t *testing.T) {
	h, c := newTestHeap(t, HeapConfig{})
	c.BeginRequest()
	defer c.EndRequest()

	bare, _ := c.NewObject()
	v, ok := c.GetProperty(bare, mustString(t, c, "Object"))
	if !ok || v.Tag() != TagUndefined {
		t.Fatalf("fresh object has Object: %v", v.Tag())
	}

	global, _ := newGlobal(t, h, c)
	for _, name := range []string{"Object", "Array", "JSON", "Math", "Error"} {
		v, ok := c.GetProperty(global, mustString(t, c, name))
		if !ok || v.Tag() != TagObject {
			t.Errorf("%s: tag %v, ok %v", name, v.Tag(), ok)
		}
	}

	self, ok := c.GetProperty(global, mustString(t, c, "globalThis"))
	if !ok || !self.AsObject().Same(global) {
		t.Error("globalThis should be the global object")
	}

	// built-ins are not enumerable
	keys, ok := c.EvaluateScript(global, []byte("Object.keys(globalThis).length"), "keys.js", 1)
	if !ok || keys.AsNumber() != 0 {
		t.Errorf("enumerable standard bindings: %v", keys.AsNumber())
	}
}

func TestContext_DefineAndCall(t *testing.T) {
	h, c := newTestHeap(t, HeapConfig{})
	c.BeginRequest()
	defer c.EndRequest()
	global, _ := newGlobal(t, h, c)

	if !c.DefineProperty(global, mustString(t, c, "n"), Number(20)) {
		t.Fatal("DefineProperty failed")
	}
	fnValue, ok := c.EvaluateScript(global, []byte("(function(k) { return n + k + this.extra })"), "fn.js", 1)
	if !ok || fnValue.Tag() != TagObject {
		t.Fatal("expected function object")
	}
	fn := fnValue.AsObject()
	if !c.IsCallable(fn) {
		t.Fatal("IsCallable = false")
	}
	if c.IsCallable(global) {
		t.Fatal("global should not be callable")
	}

	this, _ := c.NewObject()
	c.DefineProperty(this, mustString(t, c, "extra"), Number(0.5))

	v, ok := c.CallFunction(this, fn, []Value{Number(1.5)})
	if !ok || v.AsNumber() != 22 {
		t.Fatalf("CallFunction = %v, %v", v.AsNumber(), ok)
	}

	if _, ok := c.CallFunction(nil, global, nil); ok {
		t.Fatal("calling a non-function should fail")
	}
	if c.IsExceptionPending() {
		t.Fatal("calling a non-function must not raise")
	}
}

func TestContext_NewString(t *testing.T) {
	_, c := newTestHeap(t, HeapConfig{MaxStringBytes: 8})
	c.BeginRequest()
	defer c.EndRequest()

	if !c.StringsAreUTF8() {
		t.Fatal("goja contexts take UTF-8")
	}

	s := mustString(t, c, "a𝄞")
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3 UTF-16 units", s.Len())
	}
	if u := s.UTF16(); len(u) != 3 || u[0] != 'a' || u[1] != 0xD834 || u[2] != 0xDD1E {
		t.Errorf("UTF16() = %x", u)
	}

	if _, ok := c.NewString([]byte("far too long")); ok {
		t.Error("NewString over MaxStringBytes should fail")
	}
	if _, ok := c.NewString([]byte{0xff}); ok {
		t.Error("NewString with invalid UTF-8 should fail")
	}
	if c.IsExceptionPending() {
		t.Error("string failures must not raise")
	}
}

func TestContext_StackOverflow(t *testing.T) {
	h, c := newTestHeap(t, HeapConfig{MaxCallStackSize: 32})
	c.BeginRequest()
	defer c.EndRequest()
	global, _ := newGlobal(t, h, c)

	if _, ok := c.EvaluateScript(global, []byte("var f = function() { return f() }; f()"), "deep.js", 1); ok {
		t.Fatal("expected stack overflow")
	}
	if !c.IsExceptionPending() {
		t.Fatal("expected pending exception")
	}
	c.ClearPendingException()

	if v, ok := c.EvaluateScript(global, []byte("3"), "after.js", 1); !ok || v.AsNumber() != 3 {
		t.Fatal("heap unusable after stack overflow")
	}
}
