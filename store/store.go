package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arkavo-org/iroh-go/errors"
)

// Format describes how tagged or ticketed content is structured.
type Format uint8

const (
	// FormatRaw is a single blob.
	FormatRaw Format = 0
	// FormatHashSeq is a sequence of hashes (a collection).
	FormatHashSeq Format = 1
)

func (f Format) String() string {
	if f == FormatHashSeq {
		return "hashseq"
	}
	return "raw"
}

// ParseFormat parses the string form produced by Format.String.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "raw":
		return FormatRaw, nil
	case "hashseq":
		return FormatHashSeq, nil
	}
	return FormatRaw, errors.InvalidInput(errors.PhaseStore, fmt.Sprintf("unknown format %q", s))
}

// Tag pins a hash so garbage collection cannot reclaim it.
type Tag struct {
	Name   string
	Hash   string
	Format Format
}

// Store is a filesystem-backed content-addressed blob store.
type Store struct {
	root       string
	cache      *cache
	compressor *compressor

	mu     sync.RWMutex
	closed bool
}

// Options configures a Store.
type Options struct {
	// CacheSize is the maximum number of decompressed objects held in
	// memory. Zero means the default of 128.
	CacheSize int
	// DisableCompression stores objects uncompressed.
	DisableCompression bool
}

// Open creates or loads a store rooted at dir. The directory tree is
// created if absent.
func Open(dir string, opts Options) (*Store, error) {
	for _, sub := range []string{"objects", "tags"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, errors.IO(errors.PhaseStore, "create store directory", err)
		}
	}

	comp, err := newCompressor(!opts.DisableCompression)
	if err != nil {
		return nil, errors.IO(errors.PhaseStore, "init compressor", err)
	}

	size := opts.CacheSize
	if size <= 0 {
		size = 128
	}

	return &Store{
		root:       dir,
		cache:      newCache(size),
		compressor: comp,
	}, nil
}

// Hash returns the hex content identifier for data.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ValidHash reports whether s is a well-formed content identifier.
func ValidHash(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// Put stores data and returns its content hash. Storing the same bytes
// twice is a cheap no-op.
func (s *Store) Put(ctx context.Context, data []byte) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}

	hash := Hash(data)
	path := s.objectPath(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.IO(errors.PhaseStore, "create object directory", err)
	}
	if err := os.WriteFile(path, s.compressor.compress(data), 0o644); err != nil {
		return "", errors.IO(errors.PhaseStore, "write object", err)
	}

	s.cache.add(hash, append([]byte(nil), data...))
	return hash, nil
}

// Get retrieves an object by hash.
func (s *Store) Get(ctx context.Context, hash string) ([]byte, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	if data, ok := s.cache.get(hash); ok {
		return append([]byte(nil), data...), nil
	}

	raw, err := os.ReadFile(s.objectPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(errors.PhaseStore, "object", hash)
		}
		return nil, errors.IO(errors.PhaseStore, "read object", err)
	}

	data, err := s.compressor.decompress(raw)
	if err != nil {
		return nil, errors.IO(errors.PhaseStore, "decompress object", err)
	}
	if data == nil {
		data = []byte{}
	}

	s.cache.add(hash, append([]byte(nil), data...))
	return data, nil
}

// Has checks whether an object exists locally.
func (s *Store) Has(ctx context.Context, hash string) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}

	if s.cache.has(hash) {
		return true, nil
	}
	_, err := os.Stat(s.objectPath(hash))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.IO(errors.PhaseStore, "stat object", err)
}

// Size returns the decompressed size of an object.
func (s *Store) Size(ctx context.Context, hash string) (uint64, error) {
	data, err := s.Get(ctx, hash)
	if err != nil {
		return 0, err
	}
	return uint64(len(data)), nil
}

// TagSet pins hash under name, replacing any existing pin with that name.
func (s *Store) TagSet(name, hash string, format Format) error {
	if err := s.check(context.Background()); err != nil {
		return err
	}
	if name == "" {
		return errors.InvalidInput(errors.PhaseStore, "tag name cannot be empty")
	}
	if !ValidHash(hash) {
		return errors.InvalidInput(errors.PhaseStore, fmt.Sprintf("malformed hash %q", hash))
	}

	body := fmt.Sprintf("%s %s\n", hash, format)
	if err := os.WriteFile(s.tagPath(name), []byte(body), 0o644); err != nil {
		return errors.IO(errors.PhaseStore, "write tag", err)
	}
	return nil
}

// TagDelete removes a pin. Deleting an absent tag reports not_found.
func (s *Store) TagDelete(name string) error {
	if err := s.check(context.Background()); err != nil {
		return err
	}

	err := os.Remove(s.tagPath(name))
	if os.IsNotExist(err) {
		return errors.NotFound(errors.PhaseStore, "tag", name)
	}
	if err != nil {
		return errors.IO(errors.PhaseStore, "delete tag", err)
	}
	return nil
}

// Tags lists all pins sorted by name.
func (s *Store) Tags() ([]Tag, error) {
	if err := s.check(context.Background()); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.root, "tags"))
	if err != nil {
		return nil, errors.IO(errors.PhaseStore, "list tags", err)
	}

	var tags []Tag
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		body, err := os.ReadFile(s.tagPath(e.Name()))
		if err != nil {
			continue
		}
		fields := strings.Fields(string(body))
		if len(fields) != 2 {
			continue
		}
		format, err := ParseFormat(fields[1])
		if err != nil {
			continue
		}
		tags = append(tags, Tag{Name: e.Name(), Hash: fields[0], Format: format})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// Flush ensures pending writes reach disk. Writes here are synchronous, so
// this only syncs the object directory metadata.
func (s *Store) Flush() error {
	if err := s.check(context.Background()); err != nil {
		return err
	}
	dir, err := os.Open(filepath.Join(s.root, "objects"))
	if err != nil {
		return errors.IO(errors.PhaseStore, "open objects directory", err)
	}
	defer dir.Close()
	if err := dir.Sync(); err != nil {
		return errors.IO(errors.PhaseStore, "sync objects directory", err)
	}
	return nil
}

// Close flushes and shuts the store down. The store rejects all
// operations afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	dir, err := os.Open(filepath.Join(s.root, "objects"))
	if err == nil {
		_ = dir.Sync()
		_ = dir.Close()
	}

	s.cache.clear()
	s.compressor.close()
	return nil
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.PhaseStore, errors.KindCanceled, err, "context done")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.Closed(errors.PhaseStore, "store")
	}
	return nil
}

// objectPath returns the filesystem path for an object hash.
// Git-style sharding: objects/ab/cd123...
func (s *Store) objectPath(hash string) string {
	if len(hash) < 2 {
		return filepath.Join(s.root, "objects", hash)
	}
	return filepath.Join(s.root, "objects", hash[:2], hash[2:])
}

func (s *Store) tagPath(name string) string {
	return filepath.Join(s.root, "tags", name)
}
