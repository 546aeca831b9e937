package docs

import "sync"

// EventKind identifies a document live event.
type EventKind uint8

const (
	// EventInsertLocal fires when a local write lands in the document.
	EventInsertLocal EventKind = iota
	// EventInsertRemote fires when a synced entry from a peer is applied.
	EventInsertRemote
	// EventContentReady fires once the blob content referenced by a
	// previously-seen entry finishes downloading.
	EventContentReady
	// EventPendingContentReady fires when all outstanding content
	// fetches have finished.
	EventPendingContentReady
	// EventNeighborUp fires when a peer joins the document swarm.
	EventNeighborUp
	// EventNeighborDown fires when a peer leaves the document swarm.
	EventNeighborDown
	// EventSyncFinished fires when a sync round with a peer completes.
	EventSyncFinished
)

func (k EventKind) String() string {
	switch k {
	case EventInsertLocal:
		return "insert-local"
	case EventInsertRemote:
		return "insert-remote"
	case EventContentReady:
		return "content-ready"
	case EventPendingContentReady:
		return "pending-content-ready"
	case EventNeighborUp:
		return "neighbor-up"
	case EventNeighborDown:
		return "neighbor-down"
	case EventSyncFinished:
		return "sync-finished"
	}
	return "unknown"
}

// Event is one document live event.
type Event struct {
	Kind EventKind
	// Entry is set for insert events.
	Entry *Entry
	// Peer is the hex node id for remote events.
	Peer string
	// ContentHash is set for content-ready events.
	ContentHash string
}

// Subscription is a live event stream for one document.
type Subscription struct {
	ch   chan Event
	done chan struct{}
	once sync.Once
	doc  *Document
}

// Events returns the stream. The channel closes when the subscription is
// canceled or the document closes.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Done reports cancellation to event producers.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
