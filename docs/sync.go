package docs

import "context"

// Connect runs one bidirectional sync round between two open documents
// over the in-process transport. localPeer and remotePeer are the hex
// node ids the two sides see each other as.
func Connect(ctx context.Context, local, remote *Document, localPeer, remotePeer string) error {
	local.emit(Event{Kind: EventNeighborUp, Peer: remotePeer})
	remote.emit(Event{Kind: EventNeighborUp, Peer: localPeer})

	if err := syncOneWay(ctx, remote, local, remotePeer); err != nil {
		return err
	}
	if err := syncOneWay(ctx, local, remote, localPeer); err != nil {
		return err
	}

	local.emit(Event{Kind: EventSyncFinished, Peer: remotePeer})
	remote.emit(Event{Kind: EventSyncFinished, Peer: localPeer})
	return nil
}

// syncOneWay applies from's records to into, then pulls any content the
// applied entries reference that into's store is missing.
func syncOneWay(ctx context.Context, from, into *Document, fromPeer string) error {
	pending := make(map[string]struct{})
	for _, e := range from.allRecords() {
		applied, err := into.ApplyRemote(e, fromPeer)
		if err != nil {
			return err
		}
		if !applied || e.Tombstone || e.ContentHash == "" {
			continue
		}
		has, err := into.engine.store.Has(ctx, e.ContentHash)
		if err != nil {
			return err
		}
		if !has {
			pending[e.ContentHash] = struct{}{}
		}
	}
	if len(pending) == 0 {
		return nil
	}

	into.engine.mu.Lock()
	fetch := into.engine.fetch
	into.engine.mu.Unlock()

	for hash := range pending {
		if fetch == nil {
			continue
		}
		if err := fetch(ctx, hash, fromPeer); err != nil {
			return err
		}
		into.emit(Event{Kind: EventContentReady, ContentHash: hash})
	}
	into.emit(Event{Kind: EventPendingContentReady})
	return nil
}
