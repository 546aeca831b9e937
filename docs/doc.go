// Package docs implements the syncing key-value document engine.
//
// A document is a multi-writer log of signed entries keyed by byte
// strings. Each entry is attributed to an author (an ed25519 signing
// identity) and references its value by content hash; values themselves
// live in the blob store. Entries are append-only: a delete writes a
// tombstone, it never mutates in place.
//
// Conflict resolution is last-writer-wins per (key, author): a newer
// entry from the same author supersedes the older one, and a read
// returns the newest live entry across authors. One author's tombstone
// hides only that author's entries.
//
// Each namespace persists to an append-only log file under the engine
// directory and is replayed on open.
package docs
