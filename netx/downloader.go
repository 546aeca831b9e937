package netx

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/arkavo-org/iroh-go/errors"
	"github.com/arkavo-org/iroh-go/store"
)

// progressChunk is the granularity of progress reporting while landing
// fetched bytes in the local store.
const progressChunk = 64 * 1024

// ProgressFunc receives (downloaded, total) byte counts. Total may be 0
// if the size is unknown.
type ProgressFunc func(downloaded, total uint64)

// Downloader fetches content from candidate peers into the local store.
type Downloader struct {
	local   *store.Store
	network *Network
}

// NewDownloader creates a downloader landing content in local and
// resolving peers through network.
func NewDownloader(local *store.Store, network *Network) *Downloader {
	return &Downloader{local: local, network: network}
}

// Download ensures hash is present in the local store, fetching from the
// candidate peers if necessary. Candidates are probed in parallel; the
// first to deliver wins. onProgress may be nil.
func (d *Downloader) Download(ctx context.Context, hash string, peers []string, onProgress ProgressFunc) error {
	ok, err := d.local.Has(ctx, hash)
	if err != nil {
		return err
	}
	if ok {
		if onProgress != nil {
			size, err := d.local.Size(ctx, hash)
			if err != nil {
				return err
			}
			onProgress(size, size)
		}
		return nil
	}

	var candidates []Provider
	for _, id := range peers {
		if p, found := d.network.Lookup(id); found {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return errors.New(errors.PhaseNetwork, errors.KindNotFound).
			Detail("no reachable provider for %s", hash).Build()
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu     sync.Mutex
		result []byte
		won    bool
	)

	p := pool.New().WithMaxGoroutines(4).WithContext(fetchCtx)
	for _, candidate := range candidates {
		p.Go(func(ctx context.Context) error {
			data, err := candidate.FetchBlob(ctx, hash)
			if err != nil {
				return err
			}
			if store.Hash(data) != hash {
				return errors.InvalidInput(errors.PhaseNetwork, "provider returned content with wrong hash")
			}
			mu.Lock()
			if !won {
				won = true
				result = data
				cancel()
			}
			mu.Unlock()
			return nil
		})
	}
	waitErr := p.Wait()

	mu.Lock()
	data, delivered := result, won
	mu.Unlock()

	if !delivered {
		if waitErr == nil {
			waitErr = ctx.Err()
		}
		return errors.Wrap(errors.PhaseNetwork, errors.KindIO, waitErr, "download failed")
	}

	total := uint64(len(data))
	if onProgress != nil {
		for off := uint64(0); off < total; off += progressChunk {
			downloaded := off + progressChunk
			if downloaded > total {
				downloaded = total
			}
			onProgress(downloaded, total)
		}
		if total == 0 {
			onProgress(0, 0)
		}
	}

	if _, err := d.local.Put(ctx, data); err != nil {
		return err
	}
	return nil
}
