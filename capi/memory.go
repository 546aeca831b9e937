package capi

import (
	"sync"
	"sync/atomic"
)

// Outward ownership transfer is tracked: every OwnedBytes and
// OwnedString carries an allocation id registered at creation and
// retired at free. AllocCount exposes the live count so embedders can
// assert leak-freedom in tests.

var allocs = struct {
	sync.Mutex
	live map[uint64]struct{}
	next uint64
}{live: make(map[uint64]struct{})}

var allocCount atomic.Int64

func newAlloc() uint64 {
	allocs.Lock()
	allocs.next++
	id := allocs.next
	allocs.live[id] = struct{}{}
	allocs.Unlock()
	allocCount.Add(1)
	return id
}

// retire removes id from the live set. Returns false if id was never
// allocated or was already freed.
func retire(id uint64) bool {
	if id == 0 {
		return false
	}
	allocs.Lock()
	_, ok := allocs.live[id]
	if ok {
		delete(allocs.live, id)
	}
	allocs.Unlock()
	if ok {
		allocCount.Add(-1)
	}
	return ok
}

// AllocCount returns the number of owned values not yet freed.
func AllocCount() int64 {
	return allocCount.Load()
}

// OwnedBytes is a buffer whose ownership has moved to the caller.
// Release with BytesFree. The zero value is the null buffer.
type OwnedBytes struct {
	Data  []byte
	alloc uint64
}

// OwnedString is a string whose ownership has moved to the caller.
// Release with StringFree. The zero value is the null string.
type OwnedString struct {
	Value string
	alloc uint64
}

func ownBytes(data []byte) OwnedBytes {
	return OwnedBytes{Data: data, alloc: newAlloc()}
}

func ownString(s string) OwnedString {
	return OwnedString{Value: s, alloc: newAlloc()}
}

// BytesFree releases b. Freeing the zero value or an already-freed
// buffer is a no-op.
func BytesFree(b *OwnedBytes) {
	if b == nil {
		return
	}
	if retire(b.alloc) {
		b.Data = nil
	}
	b.alloc = 0
}

// StringFree releases s. Freeing the zero value or an already-freed
// string is a no-op.
func StringFree(s *OwnedString) {
	if s == nil {
		return
	}
	if retire(s.alloc) {
		s.Value = ""
	}
	s.alloc = 0
}

// DocEntryFree releases an entry delivered to a callback. Nil is a
// no-op.
func DocEntryFree(e *DocEntry) {
	if e == nil {
		return
	}
	BytesFree(&e.Key)
}

// DocEventFree releases an event delivered to a subscription. Nil is a
// no-op.
func DocEventFree(ev *DocEvent) {
	if ev == nil {
		return
	}
	DocEntryFree(ev.Entry)
	ev.Entry = nil
}

// copyIn detaches an input buffer from the caller's backing array.
// A nil input stays nil so null detection still works downstream.
func copyIn(data []byte) []byte {
	if data == nil {
		return nil
	}
	return append([]byte(nil), data...)
}
