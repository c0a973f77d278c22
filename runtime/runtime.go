package runtime

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
	"github.com/wippyai/js-runtime/roots"
)

// Runtime owns one engine heap. Contexts and objects created from it hold a
// counted reference; Close refuses to destroy the heap while any remain.
type Runtime struct {
	heap     engine.Heap
	logger   *zap.Logger
	name     string
	refs     int
	contexts int
	objects  int
	closed   bool

	// mu serializes request brackets and root table mutation for every
	// context of this runtime.
	mu sync.Mutex
}

// New creates a runtime with a fresh engine heap.
func New(opts ...Option) (*Runtime, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}

	heap, err := cfg.Engine.NewHeap(engine.HeapConfig{
		Logger:           cfg.Logger,
		MaxRoots:         cfg.MaxRoots,
		MaxStringBytes:   cfg.MaxStringBytes,
		MaxCallStackSize: cfg.MaxCallStackSize,
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindAllocation, err, "NewHeap() failed")
	}
	if heap == nil {
		return nil, errors.Allocation(errors.PhaseRuntime, "NewHeap()")
	}

	r := &Runtime{
		heap:   heap,
		logger: cfg.Logger.With(zap.String("engine", cfg.Engine.Name())),
		name:   cfg.Engine.Name(),
		refs:   1,
	}

	if obs, ok := heap.(engine.RootObserver); ok {
		obs.ObserveRoots(roots.ObserverFunc(r.onRootEvent))
	}

	r.logger.Debug("runtime created", zap.Int("max_roots", cfg.MaxRoots))
	return r, nil
}

func (r *Runtime) onRootEvent(e roots.Event) {
	r.logger.Debug("root "+e.Type.String(),
		zap.Uint32("root", uint32(e.Handle)),
		zap.String("name", e.Name),
		zap.Int("live", e.Len))
}

// Engine returns the name of the engine backend.
func (r *Runtime) Engine() string {
	return r.name
}

// NewContext creates an execution context on this runtime.
func (r *Runtime) NewContext() (*Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.Lifecycle(errors.PhaseContext, "NewContext", "runtime closed")
	}

	ec, err := r.heap.NewContext()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseContext, errors.KindAllocation, err, "NewContext() failed")
	}
	if ec == nil {
		return nil, errors.Allocation(errors.PhaseContext, "NewContext()")
	}

	r.refs++
	r.contexts++
	r.logger.Debug("context created", zap.Int("contexts", r.contexts))

	return &Context{rt: r, ec: ec}, nil
}

// Close destroys the heap. It fails without side effects while contexts or
// objects created from this runtime are still alive.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errors.Lifecycle(errors.PhaseRuntime, "Close", "runtime already closed")
	}
	if r.contexts > 0 || r.objects > 0 {
		return errors.Lifecycle(errors.PhaseRuntime, "Close",
			fmt.Sprintf("%d contexts and %d objects still reference the runtime", r.contexts, r.objects))
	}

	if err := r.heap.Destroy(); err != nil {
		return errors.Wrap(errors.PhaseRuntime, errors.KindLifecycle, err, "Destroy() refused")
	}

	r.closed = true
	r.refs = 0
	r.logger.Debug("runtime destroyed")
	return nil
}

// Closed reports whether the heap has been destroyed.
func (r *Runtime) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Refs returns the reference count: one for the owner plus one per live
// context and object. It is zero once the runtime is closed.
func (r *Runtime) Refs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refs
}

// RootCount returns the size of the heap's root table.
func (r *Runtime) RootCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	return r.heap.RootCount()
}

// releaseContextLocked drops a closed context's reference. Requires r.mu.
func (r *Runtime) releaseContextLocked() {
	r.refs--
	r.contexts--
	r.logger.Debug("context closed", zap.Int("contexts", r.contexts))
}

// rootLocked registers obj and wraps it in a handle. Requires r.mu.
func (r *Runtime) rootLocked(obj engine.Object, name string) (*Object, error) {
	id, ok := r.heap.AddRoot(obj, name)
	if !ok {
		return nil, errors.Allocation(errors.PhaseRoot, "AddRoot()")
	}
	r.refs++
	r.objects++
	return newObject(r, obj, id), nil
}

// unroot removes a root added by rootLocked. The slot guarantees it is
// called at most once per root.
func (r *Runtime) unroot(id engine.RootID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.heap.RemoveRoot(id) {
		// the slot's flag makes this unreachable unless the engine lost it
		r.logger.Error("root missing on release", zap.Uint32("root", uint32(id)))
	}
	r.refs--
	r.objects--
}
