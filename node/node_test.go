package node

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arkavo-org/iroh-go/errors"
	"github.com/arkavo-org/iroh-go/store"
	"github.com/arkavo-org/iroh-go/ticket"
)

func newTestNode(t *testing.T, mutate func(*Config)) *Node {
	t.Helper()
	cfg := Config{StoragePath: t.TempDir()}
	if mutate != nil {
		mutate(&cfg)
	}
	n, err := New(cfg)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	t.Cleanup(func() { n.Shutdown(context.Background()) })
	return n
}

func TestNewRequiresStoragePath(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("empty storage path accepted")
	}
}

func TestPutGetLocalRoundTrip(t *testing.T) {
	n := newTestNode(t, nil)
	for _, data := range [][]byte{[]byte("hello"), {}, bytes.Repeat([]byte{0xAB}, 200_000)} {
		tk, err := n.Put(context.Background(), data)
		if err != nil {
			t.Fatalf("put: %v", err)
		}
		got, err := n.Get(context.Background(), tk)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("round trip mismatch for %d bytes", len(data))
		}
	}
}

func TestGetAcrossNodes(t *testing.T) {
	a := newTestNode(t, nil)
	b := newTestNode(t, nil)

	payload := []byte("shared across the local network")
	tk, err := a.Put(context.Background(), payload)
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := b.Get(context.Background(), tk)
	if err != nil {
		t.Fatalf("get on peer: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("transferred content mismatch")
	}
}

func TestGetWithProgressReportsTotal(t *testing.T) {
	a := newTestNode(t, nil)
	b := newTestNode(t, nil)

	payload := bytes.Repeat([]byte{7}, 300_000)
	tk, err := a.Put(context.Background(), payload)
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	var last, calls uint64
	got, err := b.GetWithProgress(context.Background(), tk, func(downloaded, total uint64) {
		if downloaded < last {
			t.Fatalf("progress went backwards: %d after %d", downloaded, last)
		}
		if total != uint64(len(payload)) {
			t.Fatalf("total = %d, want %d", total, len(payload))
		}
		last = downloaded
		calls++
	})
	if err != nil {
		t.Fatalf("get with progress: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("content mismatch")
	}
	if last != uint64(len(payload)) {
		t.Fatalf("final progress = %d, want %d", last, len(payload))
	}
	if calls < 2 {
		t.Fatalf("expected chunked progress, got %d calls", calls)
	}
}

func TestGetUnknownProviderFails(t *testing.T) {
	n := newTestNode(t, nil)
	tk := ticket.Blob{
		Hash:   store.Hash([]byte("never stored")),
		NodeID: "00ab00ab00ab00ab00ab00ab00ab00ab00ab00ab00ab00ab00ab00ab00ab00ab",
	}
	if _, err := n.Get(context.Background(), tk.String()); err == nil {
		t.Fatal("get from unreachable provider succeeded")
	}
}

func TestPutTimeoutAgainstStalledStore(t *testing.T) {
	n := newTestNode(t, nil)
	n.putDelay = 500 * time.Millisecond

	start := time.Now()
	_, err := n.PutWithTimeout([]byte("slow"), 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindTimeout {
		t.Fatalf("error kind = %v, want timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Fatalf("timeout did not abandon the task, waited %v", elapsed)
	}
}

func TestInfoRelayModes(t *testing.T) {
	off := newTestNode(t, nil)
	if info := off.Info(); info.RelayURL != "" || info.IsConnected {
		t.Fatalf("relay-disabled info = %+v", info)
	}

	on := newTestNode(t, func(c *Config) { c.RelayEnabled = true })
	if info := on.Info(); info.RelayURL == "" || !info.IsConnected {
		t.Fatalf("relay-enabled info = %+v", info)
	}

	custom := newTestNode(t, func(c *Config) {
		c.RelayEnabled = true
		c.CustomRelayURL = "https://relay.example.com"
	})
	if info := custom.Info(); info.RelayURL != "https://relay.example.com" {
		t.Fatalf("custom relay info = %+v", info)
	}

	cfg := Config{StoragePath: t.TempDir(), RelayEnabled: true, CustomRelayURL: "ftp://nope"}
	if _, err := New(cfg); err == nil {
		t.Fatal("non-http relay URL accepted")
	}
}

func TestStableIdentityAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	n1, err := New(Config{StoragePath: dir})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	id := n1.ID()
	if err := n1.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	n2, err := New(Config{StoragePath: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer n2.Shutdown(context.Background())
	if n2.ID() != id {
		t.Fatalf("identity changed across restart: %s vs %s", id, n2.ID())
	}
}

func TestTicketCreateRejectsBadHash(t *testing.T) {
	n := newTestNode(t, nil)
	if _, err := n.TicketCreate("not-a-hash", store.FormatRaw); err == nil {
		t.Fatal("bad hash accepted")
	}
}

func TestTags(t *testing.T) {
	n := newTestNode(t, nil)
	tk, err := n.Put(context.Background(), []byte("pinned"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	parsed, err := ticket.ParseBlob(tk)
	if err != nil {
		t.Fatalf("parse ticket: %v", err)
	}
	if err := n.TagSet("keep", parsed.Hash, store.FormatRaw); err != nil {
		t.Fatalf("tag set: %v", err)
	}
	if err := n.TagDelete("keep"); err != nil {
		t.Fatalf("tag delete: %v", err)
	}
	if err := n.TagDelete("keep"); err == nil {
		t.Fatal("deleting an absent tag should fail")
	}
}

func TestDocsDisabledByDefault(t *testing.T) {
	n := newTestNode(t, nil)
	_, err := n.Docs()
	if err == nil {
		t.Fatal("docs engine available without DocsEnabled")
	}
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindNotEnabled {
		t.Fatalf("error kind = %v, want not_enabled", err)
	}
}

func TestDocShareJoinSync(t *testing.T) {
	a := newTestNode(t, func(c *Config) { c.DocsEnabled = true })
	b := newTestNode(t, func(c *Config) { c.DocsEnabled = true })

	engineA, err := a.Docs()
	if err != nil {
		t.Fatalf("docs: %v", err)
	}
	docA, err := engineA.Create()
	if err != nil {
		t.Fatalf("create doc: %v", err)
	}
	author, err := engineA.CreateAuthor()
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	hash, err := docA.Set(context.Background(), author, []byte("k"), []byte("synced value"))
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	share, err := a.DocShare(docA.Namespace(), ticket.ShareWrite)
	if err != nil {
		t.Fatalf("share: %v", err)
	}

	docB, err := b.DocJoin(context.Background(), share)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	entry, err := docB.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry == nil || entry.ContentHash != hash {
		t.Fatal("entry did not sync on join")
	}

	// content followed the entry through the downloader
	data, err := b.ReadContent(context.Background(), hash)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if !bytes.Equal(data, []byte("synced value")) {
		t.Fatalf("content = %q", data)
	}
}

func TestDocShareUnknownNamespace(t *testing.T) {
	n := newTestNode(t, func(c *Config) { c.DocsEnabled = true })
	ns := bytes.Repeat([]byte("a0"), 32)
	if _, err := n.DocShare(string(ns), ticket.ShareRead); err == nil {
		t.Fatal("sharing an unopened namespace succeeded")
	}
}

func TestSpawnStreamWaitedOnShutdown(t *testing.T) {
	n, err := New(Config{StoragePath: t.TempDir()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	release := make(chan struct{})
	var finished atomic.Bool
	if err := n.SpawnStream(func() {
		<-release
		finished.Store(true)
	}); err != nil {
		t.Fatalf("spawn stream: %v", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()
	if err := n.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !finished.Load() {
		t.Fatal("shutdown returned before the stream task finished")
	}
	if err := n.SpawnStream(func() {}); err == nil {
		t.Fatal("spawn stream accepted after shutdown")
	}
}

func TestShutdownIdempotentAndFinal(t *testing.T) {
	n, err := New(Config{StoragePath: t.TempDir()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := n.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := n.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
	if _, err := n.Put(context.Background(), []byte("x")); err == nil {
		t.Fatal("put on shut-down node succeeded")
	}
}
