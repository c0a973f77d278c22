package engine

import (
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestLogger_Default(t *testing.T) {
	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("Logger() returned nil")
	}
}

func TestLogger_ConcurrentSet(t *testing.T) {
	defer SetLogger(nil)

	custom := zap.NewNop()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetLogger(custom)
		}()
		go func() {
			defer wg.Done()
			if Logger() == nil {
				t.Error("Logger() returned nil")
			}
			h, err := NewGojaEngine().NewHeap(HeapConfig{})
			if err != nil {
				t.Error(err)
				return
			}
			_ = h.Destroy()
		}()
	}
	wg.Wait()

	if Logger() != custom {
		t.Error("Logger() should return the configured logger")
	}
}
