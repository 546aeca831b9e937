// Package netx provides the node's network identity and blob download
// path.
//
// An Endpoint holds the node's signing identity and relay configuration.
// The Downloader fetches content from candidate provider peers, reporting
// byte-level progress, and lands fetched bytes in the local store.
//
// Peers are reached through a Network, which maps node identifiers to
// Providers. The package-local LocalNetwork connects nodes inside one
// process; an embedding application can supply its own Network to bridge
// to a real transport.
package netx
