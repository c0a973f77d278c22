package main

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestSession_Eval(t *testing.T) {
	s, err := openSession(zap.NewNop())
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}

	tests := []struct {
		src  string
		want string
	}{
		{"2+2", "4"},
		{"0.1 * 3", "0.30000000000000004"},
		{"'a'+'b'", "ab"},
		{"undefined", "undefined"},
		{"null", "null"},
		{"1 > 2", "false"},
		{"({a: 1, b: [true, 'x']})", `{"a":1,"b":[true,"x"]}`},
		{"(function() {})", "[object]"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := s.eval([]byte(tt.src), "test.js", 1)
			if err != nil {
				t.Fatalf("eval failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("eval(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}

	if n := s.rt.RootCount(); n != 1 {
		t.Errorf("RootCount() = %d after eval, want only the global", n)
	}
	if err := s.close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !s.rt.Closed() {
		t.Error("runtime should be closed")
	}
}

func TestSession_EvalError(t *testing.T) {
	s, err := openSession(zap.NewNop())
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	defer func() {
		if err := s.close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	}()

	_, err = s.eval([]byte("throw new TypeError('nope')"), "<repl>", 4)
	if err == nil {
		t.Fatal("expected error")
	}
	if got, want := describeError(err), "TypeError: nope (<repl>:4:"; !strings.HasPrefix(got, want) {
		t.Errorf("describeError() = %q, want prefix %q", got, want)
	}

	if out, err := s.eval([]byte("1+1"), "<repl>", 5); err != nil || out != "2" {
		t.Errorf("eval after error = %q, %v", out, err)
	}
}

func TestSession_CloseContinuesAfterError(t *testing.T) {
	s, err := openSession(zap.NewNop())
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	if err := s.global.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if err := s.close(); err == nil {
		t.Fatal("close should report the double release")
	}
	if !s.ctx.Closed() {
		t.Error("context should be closed")
	}
	if !s.rt.Closed() {
		t.Error("runtime should be closed")
	}
}
