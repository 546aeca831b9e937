package resource

// Handle is an opaque reference to a resource in a table.
// The low 32 bits hold the slot index plus one, the high 32 bits hold the
// slot's generation at insert time. Handle 0 is reserved and always invalid.
type Handle uint64

// index returns the zero-based slot index encoded in the handle.
func (h Handle) index() uint32 {
	return uint32(h&0xffffffff) - 1
}

// generation returns the generation counter encoded in the handle.
func (h Handle) generation() uint32 {
	return uint32(h >> 32)
}

func makeHandle(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index+1))
}

// Event types for resource lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	TypeID uint32
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Dropper is optionally implemented by resource values that need cleanup.
type Dropper interface {
	Drop()
}
