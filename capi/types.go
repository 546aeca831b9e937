package capi

import (
	"github.com/arkavo-org/iroh-go/docs"
	"github.com/arkavo-org/iroh-go/resource"
	"github.com/arkavo-org/iroh-go/store"
	"github.com/arkavo-org/iroh-go/ticket"
)

// NodeHandle references a live node. Zero is never a valid handle.
type NodeHandle resource.Handle

// DocHandle references an open document on some node.
type DocHandle resource.Handle

// SubscriptionHandle references an active document subscription.
type SubscriptionHandle resource.Handle

// AuthorID is an author's public identifier.
type AuthorID = docs.AuthorID

// AuthorSecret is an author's private key seed.
type AuthorSecret = docs.AuthorSecret

// BlobFormat distinguishes raw blobs from hash sequences.
type BlobFormat = store.Format

const (
	BlobFormatRaw     = store.FormatRaw
	BlobFormatHashSeq = store.FormatHashSeq
)

// ShareMode is the access level granted by a document ticket.
type ShareMode = ticket.ShareMode

const (
	ShareModeRead  = ticket.ShareRead
	ShareModeWrite = ticket.ShareWrite
)

// RelayMode selects how a node reaches peers. The zero value uses the
// default relay.
type RelayMode uint8

const (
	RelayDefault RelayMode = iota
	RelayDisabled
	RelayCustom
)

// NodeConfig configures NodeCreate.
type NodeConfig struct {
	// StoragePath is the node's root directory, created if absent.
	StoragePath string
	// Relay selects relay-assisted connectivity.
	Relay RelayMode
	// CustomRelayURL is required when Relay is RelayCustom.
	CustomRelayURL string
	// DocsEnabled provisions the document sync engine.
	DocsEnabled bool
}

// OperationOptions tunes a single blob operation.
type OperationOptions struct {
	// TimeoutMS bounds the operation; 0 means no timeout.
	TimeoutMS uint64
}

// Info is an identity and connectivity snapshot delivered by NodeInfo.
type Info struct {
	NodeID      string
	RelayURL    string
	IsConnected bool
}

// TicketInfo is the result of ValidateTicket. An unparseable ticket
// yields IsValid false and zero remaining fields.
type TicketInfo struct {
	IsValid     bool
	Hash        string
	NodeID      string
	IsRecursive bool
}

// EventType identifies a document event delivered to a subscription.
type EventType uint8

const (
	EventTypeInsertLocal EventType = iota
	EventTypeInsertRemote
	EventTypeContentReady
	EventTypePendingContentReady
	EventTypeNeighborUp
	EventTypeNeighborDown
	EventTypeSyncFinished
)

// DocEntry is an owned snapshot of a document entry. Release with
// DocEntryFree.
type DocEntry struct {
	Author      string
	Key         OwnedBytes
	ContentHash string
	ContentSize uint64
	Timestamp   uint64
}

// DocEvent is an owned document event. Release with DocEventFree.
type DocEvent struct {
	Type EventType
	// Entry is set for insert events.
	Entry *DocEntry
	// Peer is set for remote and neighbor events.
	Peer string
	// ContentHash is set for content-ready events.
	ContentHash string
}
