package runtime

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
)

const (
	stateIdle int32 = iota
	stateInRequest
	stateClosed
)

// Context is an execution context bound to one Runtime. Every operation runs
// inside a request bracket that holds the runtime lock until it returns.
type Context struct {
	rt    *Runtime
	ec    engine.Context
	state atomic.Int32
}

// Runtime returns the runtime the context was created on.
func (c *Context) Runtime() *Runtime {
	return c.rt
}

// handleArg is an object passed into a bracketed operation.
type handleArg struct {
	obj      *Object
	param    string
	optional bool
}

// enter opens a request bracket for op. Handles are checked after the
// runtime lock is taken, so none can be unrooted while the bracket is open.
// The returned func closes the bracket and must be called on every path.
//
// Opening a second bracket on a context that is already in a request is a
// programming error and panics.
func (c *Context) enter(op string, handles ...handleArg) (func(), error) {
	if !c.state.CompareAndSwap(stateIdle, stateInRequest) {
		if c.state.Load() == stateClosed {
			return nil, errors.Lifecycle(errors.PhaseContext, op, "context closed")
		}
		panic("runtime: nested request on context in " + op)
	}

	c.rt.mu.Lock()
	if err := c.check(op, handles); err != nil {
		c.rt.mu.Unlock()
		c.state.Store(stateIdle)
		return nil, err
	}

	c.ec.BeginRequest()
	return func() {
		if c.ec.IsExceptionPending() {
			ex, _ := c.ec.PendingException()
			c.ec.ClearPendingException()
			c.rt.logger.Error("exception left pending at end of request",
				zap.String("op", op),
				zap.String("exception", ex.Report.Name),
				zap.String("message", ex.Report.Message))
		}
		c.ec.EndRequest()
		c.rt.mu.Unlock()
		c.state.Store(stateIdle)
	}, nil
}

func (c *Context) check(op string, handles []handleArg) error {
	if c.rt.closed {
		return errors.Lifecycle(errors.PhaseContext, op, "runtime closed")
	}
	for _, h := range handles {
		if h.obj == nil && h.optional {
			continue
		}
		if err := h.obj.usable(c.rt, op, h.param); err != nil {
			return err
		}
	}
	return nil
}

// Close destroys the context and drops its reference on the runtime.
// Objects created through the context stay valid; they belong to the
// runtime.
func (c *Context) Close() error {
	if !c.state.CompareAndSwap(stateIdle, stateClosed) {
		if c.state.Load() == stateClosed {
			return errors.Lifecycle(errors.PhaseContext, "Close", "context already closed")
		}
		return errors.Lifecycle(errors.PhaseContext, "Close", "context is in a request")
	}

	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()

	c.ec.Destroy()
	c.rt.releaseContextLocked()
	return nil
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool {
	return c.state.Load() == stateClosed
}
