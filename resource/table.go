package resource

import (
	"sync"
)

// Table maps generation-tagged handles to live resource values.
//
// Slots are reused through a free list; every reuse bumps the slot's
// generation so handles minted before the reuse no longer resolve.
type Table struct {
	slots     []slot
	freeList  []uint32
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type slot struct {
	value      any
	typeID     uint32
	generation uint32
	valid      bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		slots:    make([]slot, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

// Insert adds a value and returns its handle.
// Returns 0 if the table has been closed.
func (t *Table) Insert(typeID uint32, value any) Handle {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0
	}

	var idx uint32
	if n := len(t.freeList); n > 0 {
		idx = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		s := &t.slots[idx]
		s.value = value
		s.typeID = typeID
		s.valid = true
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot{
			value:  value,
			typeID: typeID,
			valid:  true,
		})
	}
	h := makeHandle(idx, t.slots[idx].generation)
	t.mu.Unlock()

	t.notify(Event{
		Type:   EventCreated,
		Handle: h,
		TypeID: typeID,
		Value:  value,
	})

	return h
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.lookup(handle)
	if !ok {
		return nil, false
	}
	return s.value, true
}

// GetTyped retrieves a value only if it matches the expected type.
func (t *Table) GetTyped(handle Handle, typeID uint32) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.lookup(handle)
	if !ok || s.typeID != typeID {
		return nil, false
	}
	return s.value, true
}

// Remove drops a resource and returns (value, true) if found.
// The slot's generation is bumped so the handle cannot resolve again;
// removing the same handle twice is a miss, not a corruption.
// If the value implements Dropper its Drop method runs after removal.
func (t *Table) Remove(handle Handle) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	t.mu.Lock()
	s, ok := t.lookup(handle)
	if !ok {
		t.mu.Unlock()
		return nil, false
	}

	value := s.value
	typeID := s.typeID
	s.value = nil
	s.valid = false
	s.generation++
	t.freeList = append(t.freeList, handle.index())
	t.mu.Unlock()

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return value, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of active resources.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for i := range t.slots {
		if t.slots[i].valid {
			count++
		}
	}
	return count
}

// Clear drops all resources.
func (t *Table) Clear() {
	var handles []Handle
	t.mu.RLock()
	for i := range t.slots {
		if t.slots[i].valid {
			handles = append(handles, makeHandle(uint32(i), t.slots[i].generation))
		}
	}
	t.mu.RUnlock()

	for _, h := range handles {
		t.Remove(h)
	}
}

// Close releases all resources and stops accepting inserts.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true

	var dropped []any
	for i := range t.slots {
		if t.slots[i].valid {
			dropped = append(dropped, t.slots[i].value)
			t.slots[i].valid = false
			t.slots[i].value = nil
		}
	}
	t.slots = nil
	t.freeList = nil
	t.mu.Unlock()

	for _, v := range dropped {
		if d, ok := v.(Dropper); ok {
			d.Drop()
		}
	}
	return nil
}

// lookup resolves a handle to its slot. Caller holds t.mu.
func (t *Table) lookup(handle Handle) (*slot, bool) {
	idx := handle.index()
	if int(idx) >= len(t.slots) {
		return nil, false
	}
	s := &t.slots[idx]
	if !s.valid || s.generation != handle.generation() {
		return nil, false
	}
	return s, true
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
