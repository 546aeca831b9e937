package capi

import (
	"github.com/arkavo-org/iroh-go/docs"
	"github.com/arkavo-org/iroh-go/resource"
)

// DocSubscribe opens a live event stream on a document and returns the
// subscription handle. Events arrive on a stream goroutine owned by
// the node's runner until the stream terminates; cancellation and
// document close both end the stream with OnComplete.
func DocSubscribe(dh DocHandle, cb SubscribeCallback) SubscriptionHandle {
	n, doc, err := resolveDoc(dh)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return 0
	}
	sub, err := doc.Subscribe()
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return 0
	}

	sh := registry.Insert(subType, &subResource{cancel: sub.Cancel})

	err = n.SpawnStream(func() {
		for ev := range sub.Events() {
			if cb.OnEvent != nil {
				cb.OnEvent(toDocEvent(ev), cb.Userdata)
			}
		}
		registry.Remove(sh)
		if cb.OnComplete != nil {
			cb.OnComplete(cb.Userdata)
		}
	})
	if err != nil {
		registry.Remove(sh)
		fail(cb.OnFailure, cb.Userdata, err)
		return 0
	}

	return SubscriptionHandle(sh)
}

// SubscriptionCancel stops event delivery and consumes the handle.
// Canceling twice, or canceling a handle whose stream already ended, is
// a no-op.
func SubscriptionCancel(sh SubscriptionHandle) {
	registry.Remove(resource.Handle(sh))
}

func toDocEvent(ev docs.Event) *DocEvent {
	out := &DocEvent{
		Peer:        ev.Peer,
		ContentHash: ev.ContentHash,
		Entry:       nil,
	}
	switch ev.Kind {
	case docs.EventInsertLocal:
		out.Type = EventTypeInsertLocal
	case docs.EventInsertRemote:
		out.Type = EventTypeInsertRemote
	case docs.EventContentReady:
		out.Type = EventTypeContentReady
	case docs.EventPendingContentReady:
		out.Type = EventTypePendingContentReady
	case docs.EventNeighborUp:
		out.Type = EventTypeNeighborUp
	case docs.EventNeighborDown:
		out.Type = EventTypeNeighborDown
	case docs.EventSyncFinished:
		out.Type = EventTypeSyncFinished
	}
	if ev.Entry != nil {
		out.Entry = &DocEntry{
			Author:      ev.Entry.Author.Hex(),
			Key:         ownBytes(append([]byte(nil), ev.Entry.Key...)),
			ContentHash: ev.Entry.ContentHash,
			ContentSize: ev.Entry.ContentSize,
			Timestamp:   ev.Entry.Timestamp,
		}
	}
	return out
}
