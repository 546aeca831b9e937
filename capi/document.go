package capi

import (
	"context"

	"github.com/arkavo-org/iroh-go/docs"
	"github.com/arkavo-org/iroh-go/errors"
	"github.com/arkavo-org/iroh-go/resource"
	"github.com/arkavo-org/iroh-go/store"
)

// DocCreate opens a document under a fresh namespace.
func DocCreate(h NodeHandle, cb DocCallback) {
	n, err := resolveNode(h)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	engine, err := n.Docs()
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	doc, err := engine.Create()
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	dh := registry.Insert(docType, &docResource{
		node:      resource.Handle(h),
		namespace: doc.Namespace(),
	})
	if cb.OnSuccess != nil {
		cb.OnSuccess(DocHandle(dh), ownString(doc.Namespace()), cb.Userdata)
	}
}

// DocJoin imports a shared document from a ticket and syncs with the
// sharing node if reachable.
func DocJoin(h NodeHandle, ticketStr string, cb DocCallback) {
	if err := checkUTF8("ticket", ticketStr); err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	n, err := resolveNode(h)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	doc, err := n.DocJoin(context.Background(), ticketStr)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	dh := registry.Insert(docType, &docResource{
		node:      resource.Handle(h),
		namespace: doc.Namespace(),
	})
	if cb.OnSuccess != nil {
		cb.OnSuccess(DocHandle(dh), ownString(doc.Namespace()), cb.Userdata)
	}
}

// DocSet writes a key-value entry under the author derived from secret
// and delivers the stored content hash. Nil key and value buffers act
// as empty.
func DocSet(dh DocHandle, secret AuthorSecret, key, value []byte, cb HashCallback) {
	_, doc, err := resolveDoc(dh)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	hash, err := doc.Set(context.Background(), docs.AuthorFromSecret(secret), copyIn(key), copyIn(value))
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(ownString(hash), cb.Userdata)
	}
}

// DocGet delivers the newest live entry for key, or a nil entry if the
// key is absent.
func DocGet(dh DocHandle, key []byte, cb EntryCallback) {
	_, doc, err := resolveDoc(dh)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	entry, err := doc.Get(key)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(toDocEntry(entry), cb.Userdata)
	}
}

// DocGetMany spawns a prefix query and streams every live matching
// entry. A nil or empty prefix matches everything. Returns immediately.
func DocGetMany(dh DocHandle, prefix []byte, cb EntriesCallback) {
	n, doc, err := resolveDoc(dh)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}

	owned := copyIn(prefix)
	err = n.Spawn(func() {
		entries, err := doc.GetMany(owned)
		if err != nil {
			fail(cb.OnFailure, cb.Userdata, err)
			return
		}
		for _, e := range entries {
			if cb.OnItem != nil {
				cb.OnItem(toDocEntry(e), cb.Userdata)
			}
		}
		if cb.OnComplete != nil {
			cb.OnComplete(cb.Userdata)
		}
	})
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
	}
}

// DocDel tombstones the author's entries under the key prefix and
// delivers how many were removed. A nil prefix matches every key the
// author wrote.
func DocDel(dh DocHandle, secret AuthorSecret, keyPrefix []byte, cb CountCallback) {
	_, doc, err := resolveDoc(dh)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	count, err := doc.Del(docs.AuthorFromSecret(secret), keyPrefix)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(uint64(count), cb.Userdata)
	}
}

// DocShare delivers a ticket other nodes can join this document with.
func DocShare(dh DocHandle, mode ShareMode, cb TicketCallback) {
	n, doc, err := resolveDoc(dh)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	tk, err := n.DocShare(doc.Namespace(), mode)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(ownString(tk), cb.Userdata)
	}
}

// DocClose consumes the document handle. The document itself stays open
// on its engine; closing the handle only severs this reference.
func DocClose(dh DocHandle) {
	registry.Remove(resource.Handle(dh))
}

// DocReadContent delivers the blob content an entry's hash refers to.
func DocReadContent(h NodeHandle, hashHex string, cb BytesCallback) {
	if !store.ValidHash(hashHex) {
		fail(cb.OnFailure, cb.Userdata, errors.InvalidHex("hash", nil))
		return
	}
	n, err := resolveNode(h)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	data, err := n.ReadContent(context.Background(), hashHex)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(ownBytes(data), cb.Userdata)
	}
}

// toDocEntry converts an engine entry into an owned boundary record.
// Nil stays nil.
func toDocEntry(e *docs.Entry) *DocEntry {
	if e == nil {
		return nil
	}
	return &DocEntry{
		Author:      e.Author.Hex(),
		Key:         ownBytes(append([]byte(nil), e.Key...)),
		ContentHash: e.ContentHash,
		ContentSize: e.ContentSize,
		Timestamp:   e.Timestamp,
	}
}
