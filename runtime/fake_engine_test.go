package runtime

import (
	"sync/atomic"

	"github.com/wippyai/js-runtime/engine"
)

// fakeEngine wraps the goja engine and forces capability failures.
type fakeEngine struct {
	inner engine.Engine

	noUTF8        bool
	failNewObject bool
	failInit      bool
	evaluated     atomic.Int32
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{inner: engine.NewGojaEngine()}
}

func (e *fakeEngine) Name() string {
	return "fake"
}

func (e *fakeEngine) NewHeap(cfg engine.HeapConfig) (engine.Heap, error) {
	h, err := e.inner.NewHeap(cfg)
	if err != nil {
		return nil, err
	}
	return &fakeHeap{Heap: h, e: e}, nil
}

type fakeHeap struct {
	engine.Heap
	e *fakeEngine
}

func (h *fakeHeap) NewContext() (engine.Context, error) {
	c, err := h.Heap.NewContext()
	if err != nil {
		return nil, err
	}
	return &fakeContext{Context: c, e: h.e}, nil
}

type fakeContext struct {
	engine.Context
	e *fakeEngine
}

func (c *fakeContext) StringsAreUTF8() bool {
	return !c.e.noUTF8
}

func (c *fakeContext) NewObject() (engine.Object, bool) {
	if c.e.failNewObject {
		return nil, false
	}
	return c.Context.NewObject()
}

func (c *fakeContext) InitStandardClasses(obj engine.Object) bool {
	if c.e.failInit {
		return false
	}
	return c.Context.InitStandardClasses(obj)
}

func (c *fakeContext) EvaluateScript(global engine.Object, src []byte, filename string, line int) (engine.Value, bool) {
	c.e.evaluated.Add(1)
	return c.Context.EvaluateScript(global, src, filename, line)
}
