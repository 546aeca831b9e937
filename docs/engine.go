package docs

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arkavo-org/iroh-go/errors"
	"github.com/arkavo-org/iroh-go/store"
)

// NamespaceLen is the size of a raw namespace identifier.
const NamespaceLen = 32

// FetchFunc retrieves missing blob content from a peer during sync.
type FetchFunc func(ctx context.Context, hash string, peer string) error

// Engine manages the open documents and known authors of one node.
type Engine struct {
	dir   string
	store *store.Store
	fetch FetchFunc

	mu      sync.Mutex
	docs    map[string]*Document
	authors map[AuthorID]Author
	closed  bool
}

// Open loads the docs engine rooted at dir. The blob store holds entry
// content and is not owned by the engine.
func Open(dir string, st *store.Store) (*Engine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IO(errors.PhaseDocs, "create docs directory", err)
	}
	e := &Engine{
		dir:     dir,
		store:   st,
		docs:    make(map[string]*Document),
		authors: make(map[AuthorID]Author),
	}
	if err := e.loadAuthors(); err != nil {
		return nil, err
	}
	return e, nil
}

// SetFetcher installs the content fetch hook used during sync.
func (e *Engine) SetFetcher(f FetchFunc) {
	e.mu.Lock()
	e.fetch = f
	e.mu.Unlock()
}

// Create opens a document under a fresh random namespace.
func (e *Engine) Create() (*Document, error) {
	ns := make([]byte, NamespaceLen)
	if _, err := rand.Read(ns); err != nil {
		return nil, errors.IO(errors.PhaseDocs, "generate namespace", err)
	}
	return e.Import(hex.EncodeToString(ns))
}

// Import opens the document for namespace, creating it on first use. A
// namespace already open returns the same document.
func (e *Engine) Import(namespace string) (*Document, error) {
	if len(namespace) != NamespaceLen*2 {
		return nil, errors.InvalidLength("namespace", NamespaceLen*2, len(namespace))
	}
	if _, err := hex.DecodeString(namespace); err != nil {
		return nil, errors.InvalidHex("namespace", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.Closed(errors.PhaseDocs, "engine")
	}
	if d, ok := e.docs[namespace]; ok {
		return d, nil
	}
	d, err := openDocument(e, namespace)
	if err != nil {
		return nil, err
	}
	e.docs[namespace] = d
	return d, nil
}

// Doc returns the open document for namespace, or nil.
func (e *Engine) Doc(namespace string) *Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.docs[namespace]
}

// CreateAuthor generates a new author and persists it.
func (e *Engine) CreateAuthor() (Author, error) {
	a, err := NewAuthor()
	if err != nil {
		return Author{}, err
	}
	if err := e.ImportAuthor(a); err != nil {
		return Author{}, err
	}
	return a, nil
}

// ImportAuthor registers an author with the engine and persists its
// secret for later runs.
func (e *Engine) ImportAuthor(a Author) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.Closed(errors.PhaseDocs, "engine")
	}
	if _, ok := e.authors[a.ID()]; ok {
		return nil
	}
	e.authors[a.ID()] = a
	return e.saveAuthors()
}

// Author looks up a registered author by id.
func (e *Engine) Author(id AuthorID) (Author, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.authors[id]
	return a, ok
}

// Close closes every open document.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	docs := make([]*Document, 0, len(e.docs))
	for _, d := range e.docs {
		docs = append(docs, d)
	}
	e.mu.Unlock()

	var first error
	for _, d := range docs {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

const authorsFile = "authors"

// loadAuthors reads persisted author seeds, one hex line each. Caller is
// the constructor; no lock needed.
func (e *Engine) loadAuthors() error {
	f, err := os.Open(filepath.Join(e.dir, authorsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.IO(errors.PhaseDocs, "open authors file", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		a, err := AuthorFromHex(line)
		if err != nil {
			return err
		}
		e.authors[a.ID()] = a
	}
	if err := sc.Err(); err != nil {
		return errors.IO(errors.PhaseDocs, "read authors file", err)
	}
	return nil
}

// saveAuthors rewrites the authors file. Caller holds e.mu.
func (e *Engine) saveAuthors() error {
	var b strings.Builder
	for _, a := range e.authors {
		secret := a.Secret()
		b.WriteString(secret.Hex())
		b.WriteByte('\n')
	}
	path := filepath.Join(e.dir, authorsFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return errors.IO(errors.PhaseDocs, "write authors file", err)
	}
	return nil
}
