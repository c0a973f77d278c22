package engine

import (
	"errors"
	"unicode/utf16"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/js-runtime/roots"
)

var (
	ErrHeapDestroyed  = errors.New("engine heap destroyed")
	ErrContextsAlive  = errors.New("engine heap has live contexts")
	ErrRootsAlive     = errors.New("engine heap has live roots")
	errNotInitialized = errors.New("standard classes snapshot missing")
)

// permanent are goja globals that cannot be deleted from the global object.
var permanent = map[string]bool{
	"undefined": true,
	"NaN":       true,
	"Infinity":  true,
}

// GojaEngine implements Engine using goja
type GojaEngine struct{}

// NewGojaEngine creates a goja-backed engine
func NewGojaEngine() *GojaEngine {
	return &GojaEngine{}
}

// Name returns "goja".
func (e *GojaEngine) Name() string {
	return "goja"
}

// NewHeap creates a goja runtime with its own root table. The runtime's
// built-in global bindings are detached from its global object and kept for
// InitStandardClasses, so a script only sees what was installed on the
// global it runs against.
func (e *GojaEngine) NewHeap(cfg HeapConfig) (Heap, error) {
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}

	vm := goja.New()
	if cfg.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(cfg.MaxCallStackSize)
	}

	get, err := vm.RunString(getterSource)
	if err != nil {
		return nil, err
	}
	getter, _ := goja.AssertFunction(get)

	h := &gojaHeap{
		vm:        vm,
		getter:    getter,
		roots:     roots.NewTable[*goja.Object](cfg.MaxRoots),
		logger:    log,
		lines:     make(map[string]int),
		maxString: cfg.MaxStringBytes,
	}
	if err := h.captureIntrinsics(); err != nil {
		return nil, err
	}
	if err := h.detachStandardClasses(); err != nil {
		return nil, err
	}

	log.Debug("heap created",
		zap.Int("standard_bindings", len(h.standard)),
		zap.Int("max_roots", cfg.MaxRoots))

	return h, nil
}

type binding struct {
	value goja.Value
	name  string
}

// getterSource reads a property through a callable so a throwing getter
// unwinds the vm the same way a function call does.
const getterSource = `(function(o, k) { return o[k] })`

type gojaHeap struct {
	vm        *goja.Runtime
	getter    goja.Callable
	ownNames  goja.Callable
	hasOwn    goja.Callable
	roots     *roots.Table[*goja.Object]
	logger    *zap.Logger
	syntaxErr goja.Value
	standard  []binding
	// lines maps a script filename to the offset added to its positions
	lines     map[string]int
	maxString int
	contexts  int
	destroyed bool
}

// captureIntrinsics keeps Object.getOwnPropertyNames and
// Object.prototype.hasOwnProperty for host-side use once the global no
// longer carries Object.
func (h *gojaHeap) captureIntrinsics() error {
	ctor, ok := h.vm.Get("Object").(*goja.Object)
	if !ok {
		return errNotInitialized
	}
	h.ownNames, ok = goja.AssertFunction(ctor.Get("getOwnPropertyNames"))
	if !ok {
		return errNotInitialized
	}
	proto, ok := ctor.Get("prototype").(*goja.Object)
	if !ok {
		return errNotInitialized
	}
	h.hasOwn, ok = goja.AssertFunction(proto.Get("hasOwnProperty"))
	if !ok {
		return errNotInitialized
	}
	return nil
}

// propertyNames returns the own string-keyed property names of o,
// enumerable or not.
func (h *gojaHeap) propertyNames(o *goja.Object) ([]string, error) {
	v, err := h.ownNames(goja.Undefined(), o)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := h.vm.ExportTo(v, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (h *gojaHeap) hasOwnProperty(o *goja.Object, name string) (bool, error) {
	v, err := h.hasOwn(o, h.vm.ToValue(name))
	if err != nil {
		return false, err
	}
	return v.ToBoolean(), nil
}

func (h *gojaHeap) detachStandardClasses() error {
	global := h.vm.GlobalObject()
	names, err := h.propertyNames(global)
	if err != nil {
		return err
	}
	for _, name := range names {
		v := global.Get(name)
		if v == nil {
			continue
		}
		h.standard = append(h.standard, binding{name: name, value: v})
		if name == "SyntaxError" {
			h.syntaxErr = v
		}
		if !permanent[name] {
			_ = global.Delete(name)
		}
	}
	return nil
}

// setLineOffset records that positions in filename start at line off+1.
// The latest evaluation of a filename wins.
func (h *gojaHeap) setLineOffset(filename string, off int) {
	if off == 0 {
		delete(h.lines, filename)
		return
	}
	h.lines[filename] = off
}

func (h *gojaHeap) lineOffset(filename string) int {
	return h.lines[filename]
}

func (h *gojaHeap) NewContext() (Context, error) {
	if h.destroyed {
		return nil, ErrHeapDestroyed
	}
	h.contexts++
	return &gojaContext{heap: h}, nil
}

func (h *gojaHeap) AddRoot(obj Object, name string) (RootID, bool) {
	o, ok := unwrapObject(obj)
	if !ok || h.destroyed {
		return 0, false
	}
	id, err := h.roots.Add(name, o)
	if err != nil {
		h.logger.Debug("add root failed", zap.String("name", name), zap.Error(err))
		return 0, false
	}
	return id, true
}

func (h *gojaHeap) RemoveRoot(id RootID) bool {
	_, ok := h.roots.Remove(id)
	return ok
}

func (h *gojaHeap) RootCount() int {
	return h.roots.Len()
}

func (h *gojaHeap) ContextCount() int {
	return h.contexts
}

func (h *gojaHeap) Destroy() error {
	if h.destroyed {
		return ErrHeapDestroyed
	}
	if h.contexts > 0 {
		return ErrContextsAlive
	}
	if h.roots.Len() > 0 {
		h.roots.Each(func(id roots.Handle, name string, _ *goja.Object) bool {
			h.logger.Debug("live root blocks destroy", zap.Uint32("root", uint32(id)), zap.String("name", name))
			return true
		})
		return ErrRootsAlive
	}
	h.roots.Close()
	h.destroyed = true
	h.standard = nil
	h.syntaxErr = nil
	h.lines = nil
	h.vm = nil
	h.logger.Debug("heap destroyed")
	return nil
}

// RootObserver is implemented by heaps whose root table accepts observers.
type RootObserver interface {
	ObserveRoots(o roots.Observer)
}

func (h *gojaHeap) ObserveRoots(o roots.Observer) {
	h.roots.Subscribe(o)
}

type gojaObject struct {
	o *goja.Object
}

func (g gojaObject) Same(other Object) bool {
	o, ok := other.(gojaObject)
	return ok && o.o == g.o
}

func unwrapObject(obj Object) (*goja.Object, bool) {
	g, ok := obj.(gojaObject)
	if !ok || g.o == nil {
		return nil, false
	}
	return g.o, true
}

// gojaString pairs an engine string with its Go form. The Go form replaces
// unpaired surrogates with U+FFFD; UTF16 and Len read the engine string.
type gojaString struct {
	v goja.Value
	s string
}

func (g gojaString) UTF16() []uint16 {
	str, ok := g.v.(goja.String)
	if !ok {
		return utf16.Encode([]rune(g.s))
	}
	units := make([]uint16, str.Length())
	for i := range units {
		units[i] = str.CharAt(i)
	}
	return units
}

func (g gojaString) Len() int {
	if str, ok := g.v.(goja.String); ok {
		return str.Length()
	}
	return len(utf16.Encode([]rune(g.s)))
}

func (g gojaString) String() string {
	return g.s
}

func (h *gojaHeap) fromGoja(v goja.Value) Value {
	if v == nil || goja.IsUndefined(v) {
		return Undefined()
	}
	if goja.IsNull(v) {
		return Null()
	}
	if o, ok := v.(*goja.Object); ok {
		return ObjectValue(gojaObject{o: o})
	}
	switch x := v.Export().(type) {
	case bool:
		return Bool(x)
	case int64:
		return Number(float64(x))
	case float64:
		return Number(x)
	case string:
		return StringValue(gojaString{v: v, s: x})
	default:
		// symbols and bigints have no tag of their own
		s := v.String()
		return StringValue(gojaString{v: h.vm.ToValue(s), s: s})
	}
}

func (h *gojaHeap) toGoja(v Value) (goja.Value, bool) {
	switch v.Tag() {
	case TagUndefined:
		return goja.Undefined(), true
	case TagNull:
		return goja.Null(), true
	case TagBool:
		return h.vm.ToValue(v.AsBool()), true
	case TagNumber:
		return h.vm.ToValue(v.AsNumber()), true
	case TagString:
		if s, ok := v.AsString().(gojaString); ok {
			return s.v, true
		}
		if v.AsString() == nil {
			return nil, false
		}
		return h.vm.ToValue(v.AsString().String()), true
	case TagObject:
		o, ok := unwrapObject(v.AsObject())
		if !ok {
			return nil, false
		}
		return o, true
	default:
		return nil, false
	}
}
