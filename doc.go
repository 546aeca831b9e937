// Package iroh provides content-addressed blob sharing and multi-writer
// document sync behind a callback-driven boundary surface.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	iroh-go/          Root package with shared aliases
//	├── capi/         Flat boundary surface: handles, callbacks, owned buffers
//	├── node/         Node assembly: storage, endpoint, runner, docs
//	├── store/        Content-addressed blob store with zstd and tags
//	├── docs/         Signed multi-writer key-value documents
//	├── netx/         Endpoint identity, in-process network, downloader
//	├── ticket/       Blob and doc ticket serialization
//	├── resource/     Generation-tagged handle table
//	└── errors/       Structured error types projected at the boundary
//
// # Quick Start
//
// Store a blob and fetch it back by ticket:
//
//	n, err := node.New(node.DefaultConfig("/var/lib/iroh"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer n.Shutdown(ctx)
//
//	ticket, err := n.Put(ctx, []byte("hello"))
//	data, err := n.Get(ctx, ticket)
//
// Or drive everything through the boundary surface:
//
//	capi.NodeCreate(capi.NodeConfig{StoragePath: dir}, capi.NodeCallback{
//	    OnSuccess: func(h capi.NodeHandle, _ any) { ... },
//	    OnFailure: func(errMsg string, _ any) { ... },
//	})
//
// # Ownership Model
//
// Buffers passed into capi are borrowed and copied before any operation
// suspends. Buffers delivered to callbacks are owned by the receiver and
// must be released exactly once with the matching free function; freeing
// a zero value is a no-op.
//
// # Thread Safety
//
// Node, the document engine and the boundary surface are safe for
// concurrent use. Callbacks are never invoked while an internal lock is
// held.
package iroh
