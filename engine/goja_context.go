package engine

import (
	"unicode/utf8"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

type gojaContext struct {
	heap      *gojaHeap
	pending   *Exception
	inRequest bool
	destroyed bool
}

func (c *gojaContext) BeginRequest() {
	if c.destroyed {
		panic("engine: BeginRequest on destroyed context")
	}
	if c.inRequest {
		panic("engine: nested request on context")
	}
	c.inRequest = true
}

func (c *gojaContext) EndRequest() {
	if !c.inRequest {
		panic("engine: EndRequest without BeginRequest")
	}
	c.inRequest = false
}

func (c *gojaContext) InRequest() bool {
	return c.inRequest
}

func (c *gojaContext) requireRequest(op string) {
	if !c.inRequest {
		panic("engine: " + op + " outside request")
	}
}

// refusePending reports whether a pending exception blocks op.
func (c *gojaContext) refusePending(op string) bool {
	if c.pending == nil {
		return false
	}
	c.heap.logger.Warn("operation refused while exception pending",
		zap.String("op", op),
		zap.String("exception", c.pending.Report.Name))
	return true
}

func (c *gojaContext) StringsAreUTF8() bool {
	return true
}

func (c *gojaContext) NewString(b []byte) (String, bool) {
	c.requireRequest("NewString")
	if c.heap.maxString > 0 && len(b) > c.heap.maxString {
		return nil, false
	}
	if !utf8.Valid(b) {
		return nil, false
	}
	s := string(b)
	return gojaString{v: c.heap.vm.ToValue(s), s: s}, true
}

func (c *gojaContext) NewObject() (Object, bool) {
	c.requireRequest("NewObject")
	return gojaObject{o: c.heap.vm.NewObject()}, true
}

func (c *gojaContext) InitStandardClasses(obj Object) bool {
	c.requireRequest("InitStandardClasses")
	o, ok := unwrapObject(obj)
	if !ok {
		return false
	}
	if len(c.heap.standard) == 0 {
		c.heap.logger.Debug("init standard classes", zap.Error(errNotInitialized))
		return false
	}

	for _, b := range c.heap.standard {
		value := b.value
		writable, configurable := goja.FLAG_TRUE, goja.FLAG_TRUE
		if b.name == "globalThis" {
			value = o
		}
		if permanent[b.name] {
			writable, configurable = goja.FLAG_FALSE, goja.FLAG_FALSE
		}
		if err := o.DefineDataProperty(b.name, value, writable, configurable, goja.FLAG_FALSE); err != nil {
			c.heap.logger.Debug("define standard binding failed",
				zap.String("name", b.name), zap.Error(err))
			return false
		}
	}
	return true
}

func (c *gojaContext) GetProperty(obj Object, name String) (Value, bool) {
	c.requireRequest("GetProperty")
	if c.refusePending("GetProperty") {
		return Undefined(), false
	}
	o, ok := unwrapObject(obj)
	if !ok || name == nil {
		return Undefined(), false
	}

	key, ok := c.heap.toGoja(StringValue(name))
	if !ok {
		return Undefined(), false
	}

	var result goja.Value
	if !c.guard(func() error {
		var err error
		result, err = c.heap.getter(goja.Undefined(), o, key)
		return err
	}) {
		return Undefined(), false
	}
	return c.heap.fromGoja(result), true
}

func (c *gojaContext) DefineProperty(obj Object, name String, v Value) bool {
	c.requireRequest("DefineProperty")
	if c.refusePending("DefineProperty") {
		return false
	}
	o, ok := unwrapObject(obj)
	if !ok || name == nil {
		return false
	}
	gv, ok := c.heap.toGoja(v)
	if !ok {
		return false
	}
	return c.guard(func() error {
		return o.Set(name.String(), gv)
	})
}

func (c *gojaContext) IsCallable(obj Object) bool {
	o, ok := unwrapObject(obj)
	if !ok {
		return false
	}
	_, ok = goja.AssertFunction(o)
	return ok
}

func (c *gojaContext) CallFunction(this, fn Object, args []Value) (Value, bool) {
	c.requireRequest("CallFunction")
	if c.refusePending("CallFunction") {
		return Undefined(), false
	}
	f, ok := unwrapObject(fn)
	if !ok {
		return Undefined(), false
	}
	callable, ok := goja.AssertFunction(f)
	if !ok {
		return Undefined(), false
	}

	thisValue := goja.Undefined()
	if this != nil {
		t, ok := unwrapObject(this)
		if !ok {
			return Undefined(), false
		}
		thisValue = t
	}

	gargs := make([]goja.Value, len(args))
	for i, a := range args {
		gv, ok := c.heap.toGoja(a)
		if !ok {
			return Undefined(), false
		}
		gargs[i] = gv
	}

	var result goja.Value
	if !c.guard(func() error {
		var err error
		result, err = callable(thisValue, gargs...)
		return err
	}) {
		return Undefined(), false
	}
	return c.heap.fromGoja(result), true
}

func (c *gojaContext) EvaluateScript(global Object, src []byte, filename string, line int) (Value, bool) {
	c.requireRequest("EvaluateScript")
	if c.refusePending("EvaluateScript") {
		return Undefined(), false
	}
	g, ok := unwrapObject(global)
	if !ok {
		return Undefined(), false
	}
	if line < 1 {
		line = 1
	}
	c.heap.setLineOffset(filename, line-1)

	script, err := compileScoped(filename, string(src))
	if err != nil {
		c.raise(err)
		return Undefined(), false
	}
	if !c.guard(func() error { return c.declareVars(g, script.vars) }) {
		return Undefined(), false
	}

	realGlobal := c.heap.vm.GlobalObject()
	before, err := c.heap.propertyNames(realGlobal)
	if err != nil {
		c.raise(err)
		return Undefined(), false
	}
	if err := realGlobal.DefineDataProperty(scopeBinding, g, goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		c.raise(err)
		return Undefined(), false
	}
	defer func() {
		_ = realGlobal.Delete(scopeBinding)
		c.adoptImplicitGlobals(realGlobal, g, before)
	}()

	var result goja.Value
	if !c.guard(func() error {
		var err error
		result, err = c.heap.vm.RunProgram(script.program)
		return err
	}) {
		return Undefined(), false
	}
	return c.heap.fromGoja(result), true
}

// declareVars creates the script's var-declared names on g, as a global
// var declaration does: a name g already owns keeps its value.
func (c *gojaContext) declareVars(g *goja.Object, names []string) error {
	for _, name := range names {
		own, err := c.heap.hasOwnProperty(g, name)
		if err != nil {
			return err
		}
		if own {
			continue
		}
		if err := g.DefineDataProperty(name, goja.Undefined(), goja.FLAG_TRUE, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
			return err
		}
	}
	return nil
}

// adoptImplicitGlobals moves properties a sloppy assignment to an
// undeclared name created on the engine global during the run onto g.
func (c *gojaContext) adoptImplicitGlobals(realGlobal, g *goja.Object, before []string) {
	defer func() {
		if r := recover(); r != nil {
			c.heap.logger.Debug("adopt implicit globals", zap.Any("panic", r))
		}
	}()
	after, err := c.heap.propertyNames(realGlobal)
	if err != nil || len(after) == len(before) {
		return
	}
	known := make(map[string]bool, len(before))
	for _, name := range before {
		known[name] = true
	}
	for _, name := range after {
		if known[name] || name == scopeBinding {
			continue
		}
		v := realGlobal.Get(name)
		if err := realGlobal.Delete(name); err != nil {
			continue
		}
		if err := g.DefineDataProperty(name, v, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
			c.heap.logger.Debug("implicit global not adopted", zap.String("name", name), zap.Error(err))
		}
	}
}

// guard runs fn and turns a returned error or a thrown goja exception into
// the pending exception.
func (c *gojaContext) guard(fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ex, isException := r.(*goja.Exception)
			if !isException {
				panic(r)
			}
			c.raise(ex)
			ok = false
		}
	}()
	if err := fn(); err != nil {
		c.raise(err)
		return false
	}
	return true
}

func (c *gojaContext) IsExceptionPending() bool {
	return c.pending != nil
}

func (c *gojaContext) PendingException() (Exception, bool) {
	if c.pending == nil {
		return Exception{}, false
	}
	return *c.pending, true
}

func (c *gojaContext) ClearPendingException() {
	c.pending = nil
}

func (c *gojaContext) Destroy() {
	if c.destroyed {
		return
	}
	if c.pending != nil {
		c.heap.logger.Warn("context destroyed with pending exception",
			zap.String("exception", c.pending.Report.Name),
			zap.String("message", c.pending.Report.Message))
		c.pending = nil
	}
	c.destroyed = true
	c.heap.contexts--
}
