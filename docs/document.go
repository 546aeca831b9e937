package docs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/arkavo-org/iroh-go/errors"
)

// subBuffer is the per-subscription event channel capacity. A subscriber
// that stops draining can stall writers once the buffer fills.
const subBuffer = 256

// Document is one open namespace: in-memory latest-entry state backed by
// an append-only log.
type Document struct {
	namespace string
	engine    *Engine

	mu      sync.Mutex
	entries map[string]map[AuthorID]*Entry
	logFile *os.File
	closed  bool

	emitMu sync.RWMutex
	subs   map[*Subscription]struct{}
}

func openDocument(engine *Engine, namespace string) (*Document, error) {
	d := &Document{
		namespace: namespace,
		engine:    engine,
		entries:   make(map[string]map[AuthorID]*Entry),
		subs:      make(map[*Subscription]struct{}),
	}

	path := filepath.Join(engine.dir, namespace+".log")
	if err := replayLog(path, namespace, func(e *Entry) {
		d.insert(e)
	}); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.IO(errors.PhaseDocs, "open document log", err)
	}
	d.logFile = f
	return d, nil
}

// Namespace returns the document's hex namespace identifier.
func (d *Document) Namespace() string {
	return d.namespace
}

// Set writes a key-value entry under the author's signature and returns
// the value's content hash.
func (d *Document) Set(ctx context.Context, author Author, key, value []byte) (string, error) {
	hash, err := d.engine.store.Put(ctx, value)
	if err != nil {
		return "", err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return "", errors.Closed(errors.PhaseDocs, "document")
	}

	e := &Entry{
		Namespace:   d.namespace,
		Key:         append([]byte(nil), key...),
		ContentHash: hash,
		ContentSize: uint64(len(value)),
		Timestamp:   d.nextTimestamp(key, author.ID()),
	}
	e.sign(author)

	if err := appendRecord(d.logFile, e); err != nil {
		d.mu.Unlock()
		return "", err
	}
	d.insert(e)
	d.mu.Unlock()

	d.emit(Event{Kind: EventInsertLocal, Entry: e.clone()})
	return hash, nil
}

// Get returns the newest live entry for key, or nil if the key is absent
// or tombstoned.
func (d *Document) Get(key []byte) (*Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errors.Closed(errors.PhaseDocs, "document")
	}

	winner := d.liveWinner(string(key))
	if winner == nil {
		return nil, nil
	}
	return winner.clone(), nil
}

// GetMany returns every live entry whose key starts with prefix, ordered
// by key then author.
func (d *Document) GetMany(prefix []byte) ([]*Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errors.Closed(errors.PhaseDocs, "document")
	}

	var out []*Entry
	for key, byAuthor := range d.entries {
		if !bytes.HasPrefix([]byte(key), prefix) {
			continue
		}
		for _, e := range byAuthor {
			if !e.Tombstone {
				out = append(out, e.clone())
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := bytes.Compare(out[i].Key, out[j].Key); c != 0 {
			return c < 0
		}
		return out[i].Author.less(out[j].Author)
	})
	return out, nil
}

// Del tombstones the author's live entries whose key starts with prefix
// and returns how many were tombstoned.
func (d *Document) Del(author Author, prefix []byte) (int, error) {
	id := author.ID()

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0, errors.Closed(errors.PhaseDocs, "document")
	}

	var tombstones []*Entry
	for key, byAuthor := range d.entries {
		if !bytes.HasPrefix([]byte(key), prefix) {
			continue
		}
		if e, ok := byAuthor[id]; ok && !e.Tombstone {
			t := &Entry{
				Namespace: d.namespace,
				Key:       append([]byte(nil), key...),
				Tombstone: true,
				Timestamp: d.nextTimestamp([]byte(key), id),
			}
			t.sign(author)
			tombstones = append(tombstones, t)
		}
	}

	for _, t := range tombstones {
		if err := appendRecord(d.logFile, t); err != nil {
			d.mu.Unlock()
			return 0, err
		}
		d.insert(t)
	}
	d.mu.Unlock()

	for _, t := range tombstones {
		d.emit(Event{Kind: EventInsertLocal, Entry: t.clone()})
	}
	return len(tombstones), nil
}

// ApplyRemote applies an entry received from a peer. The signature and
// namespace are verified before anything is written. Returns true if the
// entry superseded local state.
func (d *Document) ApplyRemote(e *Entry, peer string) (bool, error) {
	if e.Namespace != d.namespace {
		return false, errors.InvalidInput(errors.PhaseDocs, "entry namespace mismatch")
	}
	if !e.Verify() {
		return false, errors.BadSignature("remote entry signature verification failed")
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false, errors.Closed(errors.PhaseDocs, "document")
	}

	if existing, ok := d.entries[string(e.Key)][e.Author]; ok && !e.supersedes(existing) {
		d.mu.Unlock()
		return false, nil
	}

	applied := e.clone()
	if err := appendRecord(d.logFile, applied); err != nil {
		d.mu.Unlock()
		return false, err
	}
	d.insert(applied)
	d.mu.Unlock()

	d.emit(Event{Kind: EventInsertRemote, Entry: applied.clone(), Peer: peer})
	return true, nil
}

// Subscribe opens a live event stream.
func (d *Document) Subscribe() (*Subscription, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, errors.Closed(errors.PhaseDocs, "document")
	}
	d.mu.Unlock()

	s := &Subscription{
		ch:   make(chan Event, subBuffer),
		done: make(chan struct{}),
		doc:  d,
	}
	d.emitMu.Lock()
	d.subs[s] = struct{}{}
	d.emitMu.Unlock()
	return s, nil
}

// Cancel stops the subscription. Idempotent: later calls do nothing.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		s.doc.emitMu.Lock()
		delete(s.doc.subs, s)
		close(s.ch)
		s.doc.emitMu.Unlock()
	})
}

// Close closes the document log and terminates all subscriptions.
func (d *Document) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	err := d.logFile.Close()
	d.mu.Unlock()

	d.emitMu.RLock()
	subs := make([]*Subscription, 0, len(d.subs))
	for s := range d.subs {
		subs = append(subs, s)
	}
	d.emitMu.RUnlock()
	for _, s := range subs {
		s.Cancel()
	}

	if err != nil {
		return errors.IO(errors.PhaseDocs, "close document log", err)
	}
	return nil
}

// allRecords snapshots the latest record per (key, author), tombstones
// included, for sync exchange.
func (d *Document) allRecords() []*Entry {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*Entry
	for _, byAuthor := range d.entries {
		for _, e := range byAuthor {
			out = append(out, e.clone())
		}
	}
	return out
}

// insert updates latest-entry state. Caller holds d.mu (or is still
// constructing the document).
func (d *Document) insert(e *Entry) {
	key := string(e.Key)
	byAuthor, ok := d.entries[key]
	if !ok {
		byAuthor = make(map[AuthorID]*Entry)
		d.entries[key] = byAuthor
	}
	if existing, ok := byAuthor[e.Author]; ok && !e.supersedes(existing) {
		return
	}
	byAuthor[e.Author] = e
}

// liveWinner returns the newest non-tombstone entry for key. Caller
// holds d.mu.
func (d *Document) liveWinner(key string) *Entry {
	var winner *Entry
	for _, e := range d.entries[key] {
		if e.Tombstone {
			continue
		}
		if winner == nil || e.supersedes(winner) {
			winner = e
		}
	}
	return winner
}

// nextTimestamp returns a write timestamp strictly newer than any record
// this author already has for key. Caller holds d.mu.
func (d *Document) nextTimestamp(key []byte, author AuthorID) uint64 {
	ts := uint64(time.Now().UnixMicro())
	if existing, ok := d.entries[string(key)][author]; ok && existing.Timestamp >= ts {
		ts = existing.Timestamp + 1
	}
	return ts
}

// emit delivers an event to every subscriber. Delivery blocks on a full
// subscriber buffer until the subscriber drains or cancels.
func (d *Document) emit(ev Event) {
	d.emitMu.RLock()
	defer d.emitMu.RUnlock()
	for s := range d.subs {
		select {
		case s.ch <- ev:
		case <-s.done:
		}
	}
}
