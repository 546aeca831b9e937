package node

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arkavo-org/iroh-go/docs"
	"github.com/arkavo-org/iroh-go/errors"
	"github.com/arkavo-org/iroh-go/netx"
	"github.com/arkavo-org/iroh-go/store"
	"github.com/arkavo-org/iroh-go/ticket"
)

// Config configures a node. StoragePath is the only required field.
type Config struct {
	// StoragePath is the node's root directory, created if absent.
	StoragePath string
	// RelayEnabled selects relay-assisted connectivity.
	RelayEnabled bool
	// CustomRelayURL overrides the default relay when relaying is
	// enabled. Must be an http(s) URL.
	CustomRelayURL string
	// DocsEnabled provisions the document sync engine.
	DocsEnabled bool
}

// DefaultConfig returns a relay-enabled, docs-disabled config rooted at
// path.
func DefaultConfig(path string) Config {
	return Config{StoragePath: path, RelayEnabled: true}
}

// Info is a snapshot of a node's identity and connectivity.
type Info struct {
	NodeID      string
	RelayURL    string
	IsConnected bool
}

// Node is a running blob and document node.
type Node struct {
	cfg        Config
	store      *store.Store
	endpoint   *netx.Endpoint
	downloader *netx.Downloader
	network    *netx.Network
	docs       *docs.Engine
	runner     *runner

	mu     sync.Mutex
	closed bool

	// putDelay stalls store writes; used to exercise timeouts in tests.
	putDelay time.Duration
}

// localNodes resolves node ids to in-process nodes for document sync.
var localNodes = struct {
	sync.RWMutex
	m map[string]*Node
}{m: make(map[string]*Node)}

// New starts a node rooted at cfg.StoragePath and registers it on the
// in-process network.
func New(cfg Config) (*Node, error) {
	if cfg.StoragePath == "" {
		return nil, errors.InvalidInput(errors.PhaseValidate, "storage path is required")
	}
	if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
		return nil, errors.IO(errors.PhaseRuntime, "create storage directory", err)
	}

	st, err := store.Open(filepath.Join(cfg.StoragePath, "blobs"), store.Options{})
	if err != nil {
		return nil, err
	}

	endpoint, err := netx.NewEndpoint(netx.EndpointOptions{
		KeyPath:        filepath.Join(cfg.StoragePath, "node.key"),
		RelayEnabled:   cfg.RelayEnabled,
		CustomRelayURL: cfg.CustomRelayURL,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	n := &Node{
		cfg:      cfg,
		store:    st,
		endpoint: endpoint,
		network:  netx.LocalNetwork,
		runner:   newRunner(),
	}
	n.downloader = netx.NewDownloader(st, n.network)

	if cfg.DocsEnabled {
		engine, err := docs.Open(filepath.Join(cfg.StoragePath, "docs"), st)
		if err != nil {
			n.runner.close()
			st.Close()
			return nil, err
		}
		engine.SetFetcher(func(ctx context.Context, hash, peer string) error {
			return n.downloader.Download(ctx, hash, []string{peer}, nil)
		})
		n.docs = engine
	}

	n.network.Register(endpoint.NodeID(), n)
	localNodes.Lock()
	localNodes.m[endpoint.NodeID()] = n
	localNodes.Unlock()

	Logger().Info("node started",
		zap.String("node_id", endpoint.NodeID()),
		zap.String("storage", cfg.StoragePath),
		zap.Bool("docs", cfg.DocsEnabled))
	return n, nil
}

// FetchBlob serves local blob content to peers.
func (n *Node) FetchBlob(ctx context.Context, hash string) ([]byte, error) {
	return n.store.Get(ctx, hash)
}

// ID returns the node's hex identifier.
func (n *Node) ID() string {
	return n.endpoint.NodeID()
}

// Info reports identity and connectivity.
func (n *Node) Info() Info {
	return Info{
		NodeID:      n.endpoint.NodeID(),
		RelayURL:    n.endpoint.RelayURL(),
		IsConnected: n.endpoint.IsConnected(),
	}
}

// Put stores data and returns a shareable blob ticket.
func (n *Node) Put(ctx context.Context, data []byte) (string, error) {
	if err := n.check(); err != nil {
		return "", err
	}
	if n.putDelay > 0 {
		select {
		case <-time.After(n.putDelay):
		case <-ctx.Done():
			return "", errors.Wrap(errors.PhaseStore, errors.KindCanceled, ctx.Err(), "put canceled")
		}
	}
	hash, err := n.store.Put(ctx, data)
	if err != nil {
		return "", err
	}
	return n.TicketCreate(hash, store.FormatRaw)
}

// PutWithTimeout is Put bounded by a wall-clock timeout. On timeout the
// write is abandoned and a timeout error returned.
func (n *Node) PutWithTimeout(data []byte, d time.Duration) (string, error) {
	if err := n.check(); err != nil {
		return "", err
	}
	return runTimeout(n.runner, d, "put", func() (string, error) {
		return n.Put(context.Background(), data)
	})
}

// Get resolves a blob ticket, downloads the content if it is not local,
// and returns it.
func (n *Node) Get(ctx context.Context, ticketStr string) ([]byte, error) {
	return n.GetWithProgress(ctx, ticketStr, nil)
}

// GetWithTimeout is Get bounded by a wall-clock timeout.
func (n *Node) GetWithTimeout(ticketStr string, d time.Duration) ([]byte, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	return runTimeout(n.runner, d, "get", func() ([]byte, error) {
		return n.Get(context.Background(), ticketStr)
	})
}

// GetWithProgress is Get reporting download progress. onProgress may be
// nil.
func (n *Node) GetWithProgress(ctx context.Context, ticketStr string, onProgress netx.ProgressFunc) ([]byte, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	t, err := ticket.ParseBlob(ticketStr)
	if err != nil {
		return nil, err
	}
	if err := n.downloader.Download(ctx, t.Hash, []string{t.NodeID}, onProgress); err != nil {
		return nil, err
	}
	return n.store.Get(ctx, t.Hash)
}

// ReadContent returns local blob content by hash.
func (n *Node) ReadContent(ctx context.Context, hash string) ([]byte, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	return n.store.Get(ctx, hash)
}

// TagSet pins hash under name.
func (n *Node) TagSet(name, hash string, format store.Format) error {
	if err := n.check(); err != nil {
		return err
	}
	return n.store.TagSet(name, hash, format)
}

// TagDelete removes the pin under name.
func (n *Node) TagDelete(name string) error {
	if err := n.check(); err != nil {
		return err
	}
	return n.store.TagDelete(name)
}

// TicketCreate builds a blob ticket for local content.
func (n *Node) TicketCreate(hash string, format store.Format) (string, error) {
	if err := n.check(); err != nil {
		return "", err
	}
	if !store.ValidHash(hash) {
		return "", errors.InvalidHex("hash", nil)
	}
	t := ticket.Blob{
		Hash:     hash,
		Format:   format,
		NodeID:   n.endpoint.NodeID(),
		RelayURL: n.endpoint.RelayURL(),
	}
	return t.String(), nil
}

// Docs returns the document engine, or a not-enabled error.
func (n *Node) Docs() (*docs.Engine, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	if n.docs == nil {
		return nil, errors.NotEnabled("docs")
	}
	return n.docs, nil
}

// DocShare builds a document ticket granting mode on namespace.
func (n *Node) DocShare(namespace string, mode ticket.ShareMode) (string, error) {
	engine, err := n.Docs()
	if err != nil {
		return "", err
	}
	if engine.Doc(namespace) == nil {
		return "", errors.NotFound(errors.PhaseDocs, "document", namespace)
	}
	t := ticket.Doc{
		Namespace: namespace,
		Mode:      mode,
		NodeID:    n.endpoint.NodeID(),
		RelayURL:  n.endpoint.RelayURL(),
	}
	return t.String(), nil
}

// DocJoin imports the ticket's namespace and runs an initial sync round
// with the sharing node if it is reachable.
func (n *Node) DocJoin(ctx context.Context, ticketStr string) (*docs.Document, error) {
	engine, err := n.Docs()
	if err != nil {
		return nil, err
	}
	t, err := ticket.ParseDoc(ticketStr)
	if err != nil {
		return nil, err
	}
	doc, err := engine.Import(t.Namespace)
	if err != nil {
		return nil, err
	}

	localNodes.RLock()
	peer := localNodes.m[t.NodeID]
	localNodes.RUnlock()
	if peer == nil || peer.docs == nil {
		Logger().Debug("doc join: sharing node unreachable, skipping initial sync",
			zap.String("peer", t.NodeID))
		return doc, nil
	}
	remote, err := peer.docs.Import(t.Namespace)
	if err != nil {
		return nil, err
	}
	if err := docs.Connect(ctx, remote, doc, t.NodeID, n.ID()); err != nil {
		return nil, err
	}
	return doc, nil
}

// Spawn hands a task to the node's runner. The task may outlive the
// submitting call but not the node.
func (n *Node) Spawn(task func()) error {
	if err := n.check(); err != nil {
		return err
	}
	return n.runner.submit(task)
}

// SpawnStream runs a long-lived loop on a runner-tracked goroutine.
// The task must exit when its input drains; Shutdown waits for it.
func (n *Node) SpawnStream(task func()) error {
	if err := n.check(); err != nil {
		return err
	}
	return n.runner.stream(task)
}

// Shutdown closes the docs engine so event streams drain, stops the
// runner, deregisters the node and flushes storage. Idempotent.
func (n *Node) Shutdown(ctx context.Context) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()

	// Docs close first: it cancels subscriptions, which lets stream
	// goroutines the runner waits on exit.
	var first error
	if n.docs != nil {
		if err := n.docs.Close(); err != nil {
			first = err
		}
	}
	n.runner.close()
	n.network.Unregister(n.endpoint.NodeID())
	localNodes.Lock()
	delete(localNodes.m, n.endpoint.NodeID())
	localNodes.Unlock()

	if err := n.store.Flush(); err != nil && first == nil {
		first = err
	}
	if err := n.store.Close(); err != nil && first == nil {
		first = err
	}

	Logger().Info("node stopped", zap.String("node_id", n.endpoint.NodeID()))
	return first
}

// Drop is the best-effort teardown used when the owner discards the
// node without asking for a result.
func (n *Node) Drop() {
	if err := n.Shutdown(context.Background()); err != nil {
		Logger().Warn("node teardown failed", zap.Error(err))
	}
}

func (n *Node) check() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return errors.Closed(errors.PhaseRuntime, "node")
	}
	return nil
}
