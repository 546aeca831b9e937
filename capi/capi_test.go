package capi

import (
	"bytes"
	"context"
	"encoding/hex"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arkavo-org/iroh-go/netx"
	"github.com/arkavo-org/iroh-go/store"
	"github.com/arkavo-org/iroh-go/ticket"
)

func createNode(t *testing.T, mutate func(*NodeConfig)) NodeHandle {
	t.Helper()
	cfg := NodeConfig{StoragePath: t.TempDir(), Relay: RelayDisabled}
	if mutate != nil {
		mutate(&cfg)
	}
	var h NodeHandle
	var failure string
	NodeCreate(cfg, NodeCallback{
		OnSuccess: func(got NodeHandle, _ any) { h = got },
		OnFailure: func(msg string, _ any) { failure = msg },
	})
	if failure != "" {
		t.Fatalf("node create failed: %s", failure)
	}
	if h == 0 {
		t.Fatal("node create delivered no handle")
	}
	t.Cleanup(func() { NodeDestroy(h) })
	return h
}

func putBlob(t *testing.T, h NodeHandle, data []byte) string {
	t.Helper()
	var tk OwnedString
	var failure string
	Put(h, data, TicketCallback{
		OnSuccess: func(s OwnedString, _ any) { tk = s },
		OnFailure: func(msg string, _ any) { failure = msg },
	})
	if failure != "" {
		t.Fatalf("put failed: %s", failure)
	}
	out := tk.Value
	StringFree(&tk)
	return out
}

func TestPutGetRoundTrip(t *testing.T) {
	h := createNode(t, nil)

	for _, data := range [][]byte{[]byte("hello boundary"), {}} {
		tk := putBlob(t, h, data)

		var got OwnedBytes
		var failure string
		userdata := "token"
		var seenUserdata any
		Get(h, tk, BytesCallback{
			OnSuccess: func(b OwnedBytes, ud any) { got = b; seenUserdata = ud },
			OnFailure: func(msg string, _ any) { failure = msg },
			Userdata:  userdata,
		})
		if failure != "" {
			t.Fatalf("get failed: %s", failure)
		}
		if !bytes.Equal(got.Data, data) {
			t.Fatalf("round trip mismatch for %d bytes", len(data))
		}
		if seenUserdata != userdata {
			t.Fatal("userdata not passed through")
		}
		BytesFree(&got)
	}
}

func TestInputBufferIsCopiedBeforeUse(t *testing.T) {
	h := createNode(t, nil)

	data := []byte("original")
	tk := putBlob(t, h, data)
	copy(data, "XXXXXXXX")

	var got OwnedBytes
	Get(h, tk, BytesCallback{
		OnSuccess: func(b OwnedBytes, _ any) { got = b },
		OnFailure: func(msg string, _ any) { t.Fatalf("get failed: %s", msg) },
	})
	defer BytesFree(&got)
	if string(got.Data) != "original" {
		t.Fatalf("stored content tracked the caller's buffer: %q", got.Data)
	}
}

func TestNilDataStoresEmptyBlob(t *testing.T) {
	h := createNode(t, nil)

	nilTicket := putBlob(t, h, nil)
	if emptyTicket := putBlob(t, h, []byte{}); nilTicket != emptyTicket {
		t.Fatalf("nil and empty data produced different tickets:\n%s\n%s",
			nilTicket, emptyTicket)
	}

	var got OwnedBytes
	Get(h, nilTicket, BytesCallback{
		OnSuccess: func(b OwnedBytes, _ any) { got = b },
		OnFailure: func(msg string, _ any) { t.Fatalf("get failed: %s", msg) },
	})
	defer BytesFree(&got)
	if len(got.Data) != 0 {
		t.Fatalf("empty blob round-tripped as %d bytes", len(got.Data))
	}
}

func TestDocNilBuffersActAsEmpty(t *testing.T) {
	h := createNode(t, func(c *NodeConfig) { c.DocsEnabled = true })
	dh := createDoc(t, h)
	_, secret := createAuthor(t)

	DocSet(dh, secret, nil, nil, HashCallback{
		OnFailure: func(msg string, _ any) { t.Fatalf("doc set failed: %s", msg) },
	})

	var entry *DocEntry
	DocGet(dh, nil, EntryCallback{
		OnSuccess: func(e *DocEntry, _ any) { entry = e },
		OnFailure: func(msg string, _ any) { t.Fatalf("doc get failed: %s", msg) },
	})
	if entry == nil {
		t.Fatal("entry under the empty key not found")
	}
	if len(entry.Key.Data) != 0 || entry.ContentSize != 0 {
		t.Fatalf("entry = %+v, want empty key and content", entry)
	}
	DocEntryFree(entry)

	var count uint64
	DocDel(dh, secret, nil, CountCallback{
		OnSuccess: func(n uint64, _ any) { count = n },
		OnFailure: func(msg string, _ any) { t.Fatalf("doc del failed: %s", msg) },
	})
	if count != 1 {
		t.Fatalf("nil prefix deleted %d entries, want 1", count)
	}
}

func TestOwnershipFreeExactlyOnce(t *testing.T) {
	base := AllocCount()
	h := createNode(t, nil)

	tk := putBlob(t, h, []byte("owned"))
	var got OwnedBytes
	Get(h, tk, BytesCallback{
		OnSuccess: func(b OwnedBytes, _ any) { got = b },
		OnFailure: func(msg string, _ any) { t.Fatalf("get failed: %s", msg) },
	})
	if AllocCount() != base+1 {
		t.Fatalf("alloc count = %d, want %d", AllocCount(), base+1)
	}

	BytesFree(&got)
	if AllocCount() != base {
		t.Fatalf("alloc count after free = %d, want %d", AllocCount(), base)
	}
	if got.Data != nil {
		t.Fatal("freed buffer still holds data")
	}

	// double free and null free are no-ops
	BytesFree(&got)
	BytesFree(nil)
	StringFree(nil)
	DocEntryFree(nil)
	DocEventFree(nil)
	if AllocCount() != base {
		t.Fatalf("alloc count disturbed by no-op frees: %d", AllocCount())
	}
}

func TestStaleNodeHandle(t *testing.T) {
	h := createNode(t, nil)
	NodeDestroy(h)
	NodeDestroy(h) // second destroy is a no-op

	var failure string
	Put(h, []byte("x"), TicketCallback{
		OnSuccess: func(OwnedString, any) { t.Fatal("put on destroyed node succeeded") },
		OnFailure: func(msg string, _ any) { failure = msg },
	})
	if failure == "" {
		t.Fatal("no failure delivered for stale handle")
	}
}

func TestNodeClose(t *testing.T) {
	h := createNode(t, nil)

	var closed bool
	NodeClose(h, StatusCallback{
		OnSuccess: func(any) { closed = true },
		OnFailure: func(msg string, _ any) { t.Fatalf("close failed: %s", msg) },
	})
	if !closed {
		t.Fatal("close did not complete")
	}

	var failure string
	NodeClose(h, StatusCallback{
		OnSuccess: func(any) { t.Fatal("second close succeeded") },
		OnFailure: func(msg string, _ any) { failure = msg },
	})
	if failure == "" {
		t.Fatal("second close on consumed handle did not fail")
	}
}

func TestNodeInfo(t *testing.T) {
	h := createNode(t, func(c *NodeConfig) {
		c.Relay = RelayCustom
		c.CustomRelayURL = "https://relay.example.com"
	})

	var info Info
	NodeInfo(h, InfoCallback{
		OnSuccess: func(i Info, _ any) { info = i },
		OnFailure: func(msg string, _ any) { t.Fatalf("info failed: %s", msg) },
	})
	if info.NodeID == "" {
		t.Fatal("empty node id")
	}
	if info.RelayURL != "https://relay.example.com" || !info.IsConnected {
		t.Fatalf("info = %+v", info)
	}
}

func TestValidateTicketNeverFails(t *testing.T) {
	h := createNode(t, nil)
	valid := putBlob(t, h, []byte("validated"))

	cases := []struct {
		ticket string
		valid  bool
	}{
		{valid, true},
		{"", false},
		{"garbage", false},
		{"blobnotbase32!!!", false},
		{"doc" + valid[4:], false},
	}
	for _, tc := range cases {
		var completed bool
		ValidateTicket(tc.ticket, ValidateCallback{
			OnComplete: func(info TicketInfo, _ any) {
				completed = true
				if info.IsValid != tc.valid {
					t.Fatalf("ticket %q: IsValid = %v, want %v", tc.ticket, info.IsValid, tc.valid)
				}
				if tc.valid && info.Hash == "" {
					t.Fatal("valid ticket missing hash")
				}
			},
		})
		if !completed {
			t.Fatalf("validate did not complete for %q", tc.ticket)
		}
	}
}

type slowProvider struct {
	data  []byte
	delay time.Duration
}

func (p *slowProvider) FetchBlob(ctx context.Context, hash string) ([]byte, error) {
	select {
	case <-time.After(p.delay):
		return p.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestGetTimeout(t *testing.T) {
	h := createNode(t, nil)

	content := []byte("slow content")
	peerID := strings.Repeat("ab", 32)
	netx.LocalNetwork.Register(peerID, &slowProvider{data: content, delay: time.Second})
	defer netx.LocalNetwork.Unregister(peerID)

	tk := ticket.Blob{Hash: store.Hash(content), NodeID: peerID}.String()

	var failure string
	GetWithOptions(h, tk, OperationOptions{TimeoutMS: 50}, BytesCallback{
		OnSuccess: func(b OwnedBytes, _ any) { t.Fatal("stalled get succeeded") },
		OnFailure: func(msg string, _ any) { failure = msg },
	})
	if !strings.Contains(failure, "timeout") {
		t.Fatalf("failure = %q, want timeout", failure)
	}
}

func TestGetWithProgressStreams(t *testing.T) {
	a := createNode(t, nil)
	b := createNode(t, nil)

	payload := bytes.Repeat([]byte{3}, 200_000)
	tk := putBlob(t, a, payload)

	type outcome struct {
		data    []byte
		failure string
	}
	done := make(chan outcome, 1)
	var progressCalls atomic.Int64
	GetWithProgress(b, tk, ProgressCallback{
		OnProgress: func(downloaded, total uint64, _ any) {
			progressCalls.Add(1)
		},
		OnSuccess: func(ob OwnedBytes, _ any) {
			data := append([]byte(nil), ob.Data...)
			BytesFree(&ob)
			done <- outcome{data: data}
		},
		OnFailure: func(msg string, _ any) { done <- outcome{failure: msg} },
	})

	select {
	case res := <-done:
		if res.failure != "" {
			t.Fatalf("get with progress failed: %s", res.failure)
		}
		if !bytes.Equal(res.data, payload) {
			t.Fatal("content mismatch")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("get with progress never completed")
	}
	if progressCalls.Load() < 2 {
		t.Fatalf("expected chunked progress, got %d calls", progressCalls.Load())
	}
}

func TestDocsDisabledGuard(t *testing.T) {
	h := createNode(t, nil)

	var failure string
	DocCreate(h, DocCallback{
		OnSuccess: func(DocHandle, OwnedString, any) { t.Fatal("doc created without docs enabled") },
		OnFailure: func(msg string, _ any) { failure = msg },
	})
	if !strings.Contains(failure, "not_enabled") {
		t.Fatalf("failure = %q, want not_enabled kind", failure)
	}
}

func createDoc(t *testing.T, h NodeHandle) DocHandle {
	t.Helper()
	var dh DocHandle
	DocCreate(h, DocCallback{
		OnSuccess: func(got DocHandle, ns OwnedString, _ any) {
			dh = got
			StringFree(&ns)
		},
		OnFailure: func(msg string, _ any) { t.Fatalf("doc create failed: %s", msg) },
	})
	t.Cleanup(func() { DocClose(dh) })
	return dh
}

func createAuthor(t *testing.T) (AuthorID, AuthorSecret) {
	t.Helper()
	var id AuthorID
	var secret AuthorSecret
	AuthorCreate(AuthorCallback{
		OnSuccess: func(gotID AuthorID, gotSecret AuthorSecret, _ any) {
			id = gotID
			secret = gotSecret
		},
		OnFailure: func(msg string, _ any) { t.Fatalf("author create failed: %s", msg) },
	})
	return id, secret
}

func TestDocRoundTripThroughReadContent(t *testing.T) {
	h := createNode(t, func(c *NodeConfig) { c.DocsEnabled = true })
	dh := createDoc(t, h)
	id, secret := createAuthor(t)

	var hash OwnedString
	DocSet(dh, secret, []byte("title"), []byte("boundary layer"), HashCallback{
		OnSuccess: func(s OwnedString, _ any) { hash = s },
		OnFailure: func(msg string, _ any) { t.Fatalf("doc set failed: %s", msg) },
	})
	defer StringFree(&hash)

	var entry *DocEntry
	DocGet(dh, []byte("title"), EntryCallback{
		OnSuccess: func(e *DocEntry, _ any) { entry = e },
		OnFailure: func(msg string, _ any) { t.Fatalf("doc get failed: %s", msg) },
	})
	if entry == nil {
		t.Fatal("entry missing")
	}
	defer DocEntryFree(entry)
	if entry.Author != AuthorIDToHex(id) {
		t.Fatal("entry author mismatch")
	}
	if entry.ContentHash != hash.Value {
		t.Fatal("entry hash mismatch")
	}

	var content OwnedBytes
	DocReadContent(h, entry.ContentHash, BytesCallback{
		OnSuccess: func(b OwnedBytes, _ any) { content = b },
		OnFailure: func(msg string, _ any) { t.Fatalf("read content failed: %s", msg) },
	})
	defer BytesFree(&content)
	if string(content.Data) != "boundary layer" {
		t.Fatalf("content = %q", content.Data)
	}
}

func TestDocGetMissingKeyDeliversNil(t *testing.T) {
	h := createNode(t, func(c *NodeConfig) { c.DocsEnabled = true })
	dh := createDoc(t, h)

	delivered := false
	DocGet(dh, []byte("absent"), EntryCallback{
		OnSuccess: func(e *DocEntry, _ any) {
			delivered = true
			if e != nil {
				t.Fatalf("expected nil entry, got %+v", e)
			}
		},
		OnFailure: func(msg string, _ any) { t.Fatalf("doc get failed: %s", msg) },
	})
	if !delivered {
		t.Fatal("no success delivered")
	}
}

func TestDocGetManyPrefixCompleteness(t *testing.T) {
	h := createNode(t, func(c *NodeConfig) { c.DocsEnabled = true })
	dh := createDoc(t, h)
	_, secret := createAuthor(t)

	written := map[string]bool{"a/1": true, "a/2": true, "b/1": false}
	for key := range written {
		DocSet(dh, secret, []byte(key), []byte("v"), HashCallback{
			OnFailure: func(msg string, _ any) { t.Fatalf("doc set failed: %s", msg) },
		})
	}

	type streamDone struct{ failure string }
	var keys []string
	done := make(chan streamDone, 1)
	DocGetMany(dh, []byte("a/"), EntriesCallback{
		OnItem: func(e *DocEntry, _ any) {
			keys = append(keys, string(e.Key.Data))
			DocEntryFree(e)
		},
		OnComplete: func(any) { done <- streamDone{} },
		OnFailure:  func(msg string, _ any) { done <- streamDone{failure: msg} },
	})

	select {
	case res := <-done:
		if res.failure != "" {
			t.Fatalf("get many failed: %s", res.failure)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("get many never completed")
	}
	if len(keys) != 2 {
		t.Fatalf("got keys %v, want the two a/ keys", keys)
	}
	for _, k := range keys {
		if !written[k] {
			t.Fatalf("unexpected key %q in prefix result", k)
		}
	}

	// nil and empty prefixes both match everything
	for _, prefix := range [][]byte{nil, {}} {
		var all int
		allDone := make(chan struct{})
		DocGetMany(dh, prefix, EntriesCallback{
			OnItem: func(e *DocEntry, _ any) {
				all++
				DocEntryFree(e)
			},
			OnComplete: func(any) { close(allDone) },
			OnFailure:  func(msg string, _ any) { t.Errorf("get many all failed: %s", msg) },
		})
		select {
		case <-allDone:
		case <-time.After(5 * time.Second):
			t.Fatal("match-all query never completed")
		}
		if all != 3 {
			t.Fatalf("prefix %v matched %d entries, want 3", prefix, all)
		}
	}
}

func TestDocDeleteThenGet(t *testing.T) {
	h := createNode(t, func(c *NodeConfig) { c.DocsEnabled = true })
	dh := createDoc(t, h)
	_, secret := createAuthor(t)

	for _, key := range []string{"del/1", "del/2", "keep/1"} {
		DocSet(dh, secret, []byte(key), []byte("v"), HashCallback{
			OnFailure: func(msg string, _ any) { t.Fatalf("doc set failed: %s", msg) },
		})
	}

	var count uint64
	DocDel(dh, secret, []byte("del/"), CountCallback{
		OnSuccess: func(n uint64, _ any) { count = n },
		OnFailure: func(msg string, _ any) { t.Fatalf("doc del failed: %s", msg) },
	})
	if count != 2 {
		t.Fatalf("deleted %d entries, want 2", count)
	}

	DocGet(dh, []byte("del/1"), EntryCallback{
		OnSuccess: func(e *DocEntry, _ any) {
			if e != nil {
				t.Fatal("deleted key still resolves")
			}
		},
		OnFailure: func(msg string, _ any) { t.Fatalf("doc get failed: %s", msg) },
	})
	DocGet(dh, []byte("keep/1"), EntryCallback{
		OnSuccess: func(e *DocEntry, _ any) {
			if e == nil {
				t.Fatal("unrelated key lost")
			}
			DocEntryFree(e)
		},
		OnFailure: func(msg string, _ any) { t.Fatalf("doc get failed: %s", msg) },
	})
}

func TestDocShareAndJoin(t *testing.T) {
	a := createNode(t, func(c *NodeConfig) { c.DocsEnabled = true })
	b := createNode(t, func(c *NodeConfig) { c.DocsEnabled = true })
	dhA := createDoc(t, a)
	_, secret := createAuthor(t)

	DocSet(dhA, secret, []byte("k"), []byte("shared"), HashCallback{
		OnFailure: func(msg string, _ any) { t.Fatalf("doc set failed: %s", msg) },
	})

	var share OwnedString
	DocShare(dhA, ShareModeWrite, TicketCallback{
		OnSuccess: func(s OwnedString, _ any) { share = s },
		OnFailure: func(msg string, _ any) { t.Fatalf("doc share failed: %s", msg) },
	})
	defer StringFree(&share)

	var dhB DocHandle
	var joinedNS OwnedString
	DocJoin(b, share.Value, DocCallback{
		OnSuccess: func(dh DocHandle, ns OwnedString, _ any) { dhB = dh; joinedNS = ns },
		OnFailure: func(msg string, _ any) { t.Fatalf("doc join failed: %s", msg) },
	})
	defer DocClose(dhB)
	defer StringFree(&joinedNS)

	parsed, err := ticket.ParseDoc(share.Value)
	if err != nil {
		t.Fatalf("parse share ticket: %v", err)
	}
	if joinedNS.Value != parsed.Namespace {
		t.Fatalf("join delivered namespace %q, ticket names %q", joinedNS.Value, parsed.Namespace)
	}

	DocGet(dhB, []byte("k"), EntryCallback{
		OnSuccess: func(e *DocEntry, _ any) {
			if e == nil {
				t.Fatal("entry did not sync on join")
			}
			DocEntryFree(e)
		},
		OnFailure: func(msg string, _ any) { t.Fatalf("doc get failed: %s", msg) },
	})
}

func TestDocCreateDeliversNamespace(t *testing.T) {
	h := createNode(t, func(c *NodeConfig) { c.DocsEnabled = true })

	var dh DocHandle
	var namespace OwnedString
	DocCreate(h, DocCallback{
		OnSuccess: func(got DocHandle, ns OwnedString, _ any) { dh = got; namespace = ns },
		OnFailure: func(msg string, _ any) { t.Fatalf("doc create failed: %s", msg) },
	})
	defer DocClose(dh)
	defer StringFree(&namespace)

	if len(namespace.Value) != 64 {
		t.Fatalf("namespace %q is not 32 hex bytes", namespace.Value)
	}
	if _, err := hex.DecodeString(namespace.Value); err != nil {
		t.Fatalf("namespace is not hex: %v", err)
	}

	var share OwnedString
	DocShare(dh, ShareModeRead, TicketCallback{
		OnSuccess: func(s OwnedString, _ any) { share = s },
		OnFailure: func(msg string, _ any) { t.Fatalf("doc share failed: %s", msg) },
	})
	defer StringFree(&share)
	parsed, err := ticket.ParseDoc(share.Value)
	if err != nil {
		t.Fatalf("parse share ticket: %v", err)
	}
	if parsed.Namespace != namespace.Value {
		t.Fatal("share ticket names a different namespace")
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	h := createNode(t, func(c *NodeConfig) { c.DocsEnabled = true })
	dh := createDoc(t, h)
	_, secret := createAuthor(t)

	events := make(chan *DocEvent, 16)
	completed := make(chan struct{})
	var completions atomic.Int64
	sh := DocSubscribe(dh, SubscribeCallback{
		OnEvent: func(ev *DocEvent, _ any) { events <- ev },
		OnComplete: func(any) {
			completions.Add(1)
			close(completed)
		},
		OnFailure: func(msg string, _ any) { t.Errorf("subscription failed: %s", msg) },
	})
	if sh == 0 {
		t.Fatal("no subscription handle")
	}

	DocSet(dh, secret, []byte("k"), []byte("v"), HashCallback{
		OnFailure: func(msg string, _ any) { t.Fatalf("doc set failed: %s", msg) },
	})

	select {
	case ev := <-events:
		if ev.Type != EventTypeInsertLocal {
			t.Fatalf("event type = %d, want insert local", ev.Type)
		}
		if ev.Entry == nil || string(ev.Entry.Key.Data) != "k" {
			t.Fatal("event carries wrong entry")
		}
		DocEventFree(ev)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	SubscriptionCancel(sh)
	select {
	case <-completed:
	case <-time.After(time.Second):
		t.Fatal("cancel did not deliver completion")
	}

	// cancel is idempotent and terminal exclusivity holds
	SubscriptionCancel(sh)
	SubscriptionCancel(sh)
	time.Sleep(50 * time.Millisecond)
	if n := completions.Load(); n != 1 {
		t.Fatalf("completion delivered %d times, want 1", n)
	}

	// no events after the terminal callback
	DocSet(dh, secret, []byte("after"), []byte("cancel"), HashCallback{
		OnFailure: func(msg string, _ any) { t.Fatalf("doc set failed: %s", msg) },
	})
	select {
	case ev := <-events:
		t.Fatalf("event after terminal completion: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNodeCloseCompletesSubscriptions(t *testing.T) {
	h := createNode(t, func(c *NodeConfig) { c.DocsEnabled = true })
	dh := createDoc(t, h)

	var completions atomic.Int64
	sh := DocSubscribe(dh, SubscribeCallback{
		OnEvent:    func(ev *DocEvent, _ any) { DocEventFree(ev) },
		OnComplete: func(any) { completions.Add(1) },
		OnFailure:  func(msg string, _ any) { t.Errorf("subscription failed: %s", msg) },
	})
	if sh == 0 {
		t.Fatal("no subscription handle")
	}

	var closed bool
	NodeClose(h, StatusCallback{
		OnSuccess: func(any) { closed = true },
		OnFailure: func(msg string, _ any) { t.Fatalf("close failed: %s", msg) },
	})
	if !closed {
		t.Fatal("close did not complete")
	}

	// teardown waits for the stream goroutine, so the terminal
	// completion has already been delivered
	if n := completions.Load(); n != 1 {
		t.Fatalf("completion delivered %d times, want 1", n)
	}
}

func TestAuthorSecretRoundTrip(t *testing.T) {
	id, secret := createAuthor(t)

	if AuthorIDFromSecret(secret) != id {
		t.Fatal("derived id mismatch")
	}

	hexSecret := AuthorSecretToHex(secret)
	var gotID AuthorID
	AuthorFromHex(hexSecret, AuthorCallback{
		OnSuccess: func(i AuthorID, s AuthorSecret, _ any) { gotID = i },
		OnFailure: func(msg string, _ any) { t.Fatalf("author from hex failed: %s", msg) },
	})
	if gotID != id {
		t.Fatal("hex round trip changed the author")
	}

	var failure string
	AuthorFromHex("zz", AuthorCallback{
		OnSuccess: func(AuthorID, AuthorSecret, any) { t.Fatal("bad hex accepted") },
		OnFailure: func(msg string, _ any) { failure = msg },
	})
	if failure == "" {
		t.Fatal("no failure for malformed hex secret")
	}
}

func TestAuthorImportPersists(t *testing.T) {
	h := createNode(t, func(c *NodeConfig) { c.DocsEnabled = true })
	_, secret := createAuthor(t)

	imported := false
	AuthorImport(h, secret, StatusCallback{
		OnSuccess: func(any) { imported = true },
		OnFailure: func(msg string, _ any) { t.Fatalf("author import failed: %s", msg) },
	})
	if !imported {
		t.Fatal("import did not complete")
	}
}

func TestBlobTags(t *testing.T) {
	h := createNode(t, nil)
	tk := putBlob(t, h, []byte("tagged"))
	parsed, err := ticket.ParseBlob(tk)
	if err != nil {
		t.Fatalf("parse ticket: %v", err)
	}

	ok := false
	BlobTagSet(h, "release", parsed.Hash, BlobFormatRaw, StatusCallback{
		OnSuccess: func(any) { ok = true },
		OnFailure: func(msg string, _ any) { t.Fatalf("tag set failed: %s", msg) },
	})
	if !ok {
		t.Fatal("tag set did not complete")
	}

	var rebuilt OwnedString
	BlobTicketCreate(h, parsed.Hash, BlobFormatRaw, TicketCallback{
		OnSuccess: func(s OwnedString, _ any) { rebuilt = s },
		OnFailure: func(msg string, _ any) { t.Fatalf("ticket create failed: %s", msg) },
	})
	defer StringFree(&rebuilt)
	if rebuilt.Value != tk {
		t.Fatalf("rebuilt ticket differs:\n%s\n%s", rebuilt.Value, tk)
	}

	BlobTagDelete(h, "release", StatusCallback{
		OnFailure: func(msg string, _ any) { t.Fatalf("tag delete failed: %s", msg) },
	})

	var failure string
	BlobTagSet(h, "bad", "nothex", BlobFormatRaw, StatusCallback{
		OnSuccess: func(any) { t.Fatal("bad hash accepted") },
		OnFailure: func(msg string, _ any) { failure = msg },
	})
	if failure == "" {
		t.Fatal("no failure for malformed hash")
	}
}

func TestTerminalExclusivity(t *testing.T) {
	h := createNode(t, nil)

	var successes, failures atomic.Int64
	tk := putBlob(t, h, []byte("exclusive"))
	for i := 0; i < 10; i++ {
		var got OwnedBytes
		Get(h, tk, BytesCallback{
			OnSuccess: func(b OwnedBytes, _ any) { got = b; successes.Add(1) },
			OnFailure: func(string, any) { failures.Add(1) },
		})
		BytesFree(&got)
	}
	if successes.Load() != 10 || failures.Load() != 0 {
		t.Fatalf("terminals: %d successes, %d failures, want 10/0",
			successes.Load(), failures.Load())
	}
}
