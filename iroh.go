package iroh

import (
	"github.com/arkavo-org/iroh-go/docs"
	"github.com/arkavo-org/iroh-go/node"
	"github.com/arkavo-org/iroh-go/ticket"
)

// Node is the assembled blob and document node.
type Node = node.Node

// Config configures New.
type Config = node.Config

// Entry is a signed document entry.
type Entry = docs.Entry

// Event is a document live event.
type Event = docs.Event

// BlobTicket locates blob content on a provider node.
type BlobTicket = ticket.Blob

// DocTicket locates a syncable document namespace.
type DocTicket = ticket.Doc

// New starts a node rooted at cfg.StoragePath.
func New(cfg Config) (*Node, error) {
	return node.New(cfg)
}

// DefaultConfig returns a relay-enabled, docs-disabled config rooted at
// path.
func DefaultConfig(path string) Config {
	return node.DefaultConfig(path)
}
