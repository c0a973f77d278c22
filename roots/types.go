package roots

// Handle is an opaque reference to a root slot in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Event types for root lifecycle notifications.
type EventType uint8

const (
	EventAdded EventType = iota
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a root lifecycle event.
type Event struct {
	Name   string
	Handle Handle
	Len    int
	Type   EventType
}

// Observer receives notifications about root lifecycle events.
type Observer interface {
	OnRootEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnRootEvent calls f(e).
func (f ObserverFunc) OnRootEvent(e Event) {
	f(e)
}
