package runtime

import (
	"fmt"
	goruntime "runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
)

// Object is a host handle to an engine object. It occupies exactly one slot
// in its runtime's root table until Release. A handle the host drops without
// releasing is unrooted when the Go collector reclaims it.
type Object struct {
	obj     engine.Object
	slot    *rootSlot
	cleanup goruntime.Cleanup
}

// rootSlot is shared between a handle and its collector cleanup, so the
// root is removed exactly once by whichever runs first.
type rootSlot struct {
	rt       *Runtime
	id       engine.RootID
	released atomic.Bool
}

func newObject(rt *Runtime, obj engine.Object, id engine.RootID) *Object {
	slot := &rootSlot{rt: rt, id: id}
	o := &Object{obj: obj, slot: slot}
	o.cleanup = goruntime.AddCleanup(o, collectSlot, slot)
	return o
}

func collectSlot(slot *rootSlot) {
	if !slot.released.CompareAndSwap(false, true) {
		return
	}
	slot.rt.logger.Warn("rooted object collected without Release", zap.Uint32("root", uint32(slot.id)))
	slot.rt.unroot(slot.id)
}

// Release removes the object's root. A second Release returns a lifecycle
// error and leaves the root table untouched.
func (o *Object) Release() error {
	if !o.slot.released.CompareAndSwap(false, true) {
		return errors.Lifecycle(errors.PhaseRoot, "Release", "object already released")
	}
	o.cleanup.Stop()
	o.slot.rt.unroot(o.slot.id)
	return nil
}

// Released reports whether Release has been called.
func (o *Object) Released() bool {
	return o.slot.released.Load()
}

// Runtime returns the runtime the object lives in.
func (o *Object) Runtime() *Runtime {
	return o.slot.rt
}

// Same reports whether both handles refer to one engine object.
func (o *Object) Same(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.slot.rt == other.slot.rt && o.obj.Same(other.obj)
}

func (o *Object) String() string {
	if o.Released() {
		return "[object released]"
	}
	return fmt.Sprintf("[object root %d]", o.slot.id)
}

// usable checks that o can be passed to an operation on rt.
func (o *Object) usable(rt *Runtime, op, param string) error {
	if o == nil {
		return errors.Argument(op, param+" is nil")
	}
	if o.Released() {
		return errors.Lifecycle(errors.PhaseValidate, op, param+" was released")
	}
	if o.slot.rt != rt {
		return errors.Argument(op, param+" belongs to a different runtime")
	}
	return nil
}
