// Package roots provides the root table of an engine heap.
//
// A root is a slot that keeps an engine object reachable for the tracing
// collector while something outside the heap still refers to it. Every slot
// is identified by an integer handle:
//
//	table := roots.NewTable[*goja.Object](0)
//
//	// Register a root, get a handle
//	h, err := table.Add("host object", obj)
//
//	// Unregister exactly once
//	obj, ok := table.Remove(h)
//
// Remove on a handle that was already removed returns false and changes
// nothing, so a slot can never be freed twice. Freed handles are reused.
//
// # Ceiling
//
// A non-zero limit bounds the number of live roots; Add returns ErrFull
// once it is reached.
//
// # Observers
//
// Observers see every add and remove together with the live count:
//
//	table.Subscribe(roots.ObserverFunc(func(e roots.Event) {
//	    log.Printf("root %d %s (%d live)", e.Handle, e.Type, e.Len)
//	}))
package roots
