package roots

import (
	"errors"
	"sync"
)

var (
	ErrClosed = errors.New("root table closed")
	ErrFull   = errors.New("root table full")
)

// Table holds the values a collector must treat as reachable. Each Add
// occupies exactly one slot until the matching Remove.
type Table[T any] struct {
	entries   []entry[T]
	freeList  []Handle
	observers []Observer
	limit     int
	live      int
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry[T any] struct {
	value T
	name  string
	valid bool
}

// NewTable creates a root table. limit bounds the number of live roots;
// zero means unbounded.
func NewTable[T any](limit int) *Table[T] {
	return &Table[T]{
		entries:  make([]entry[T], 0, 64),
		freeList: make([]Handle, 0, 16),
		limit:    limit,
	}
}

// Add registers value as a root and returns its handle.
func (t *Table[T]) Add(name string, value T) (Handle, error) {
	t.mu.Lock()

	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}
	if t.limit > 0 && t.live >= t.limit {
		t.mu.Unlock()
		return 0, ErrFull
	}

	e := entry[T]{
		value: value,
		name:  name,
		valid: true,
	}

	var handle Handle
	if len(t.freeList) > 0 {
		handle = t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.entries[handle-1] = e
	} else {
		t.entries = append(t.entries, e)
		handle = Handle(len(t.entries))
	}
	t.live++
	live := t.live
	t.mu.Unlock()

	t.notify(Event{
		Type:   EventAdded,
		Handle: handle,
		Name:   name,
		Len:    live,
	})

	return handle, nil
}

// Get retrieves a rooted value by handle.
func (t *Table[T]) Get(handle Handle) (T, bool) {
	var zero T
	if handle == 0 {
		return zero, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := handle - 1
	if int(idx) >= len(t.entries) {
		return zero, false
	}

	e := t.entries[idx]
	if !e.valid {
		return zero, false
	}
	return e.value, true
}

// Remove unregisters a root and returns (value, true). An unknown or
// already removed handle returns false and leaves the table untouched.
func (t *Table[T]) Remove(handle Handle) (T, bool) {
	var zero T
	if handle == 0 {
		return zero, false
	}

	t.mu.Lock()

	idx := handle - 1
	if int(idx) >= len(t.entries) {
		t.mu.Unlock()
		return zero, false
	}

	e := &t.entries[idx]
	if !e.valid {
		t.mu.Unlock()
		return zero, false
	}

	value := e.value
	name := e.name
	e.valid = false
	e.value = zero
	e.name = ""
	t.freeList = append(t.freeList, handle)
	t.live--
	live := t.live
	t.mu.Unlock()

	t.notify(Event{
		Type:   EventRemoved,
		Handle: handle,
		Name:   name,
		Len:    live,
	})

	return value, true
}

// Name returns the debugging name a root was registered with.
func (t *Table[T]) Name(handle Handle) (string, bool) {
	if handle == 0 {
		return "", false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := handle - 1
	if int(idx) >= len(t.entries) || !t.entries[idx].valid {
		return "", false
	}
	return t.entries[idx].name, true
}

// Len returns the number of live roots.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// Limit returns the configured ceiling, zero when unbounded.
func (t *Table[T]) Limit() int {
	return t.limit
}

// Each iterates over all live roots.
func (t *Table[T]) Each(fn func(Handle, string, T) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, e := range t.entries {
		if e.valid {
			if !fn(Handle(i+1), e.name, e.value) {
				break
			}
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Close stops accepting roots. It reports how many were still live; the
// caller decides whether that is an error.
func (t *Table[T]) Close() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0
	}
	t.closed = true
	live := t.live

	t.entries = nil
	t.freeList = nil
	t.live = 0
	return live
}

func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnRootEvent(e)
	}
}
