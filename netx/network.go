package netx

import (
	"context"
	"sync"
)

// Provider serves blob content to peers.
type Provider interface {
	// FetchBlob returns the full content of hash, or an error if the
	// provider does not have it.
	FetchBlob(ctx context.Context, hash string) ([]byte, error)
}

// Network resolves node identifiers to reachable providers.
type Network struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{providers: make(map[string]Provider)}
}

// LocalNetwork connects nodes running inside the same process. Nodes
// register themselves here on creation unless given another network.
var LocalNetwork = NewNetwork()

// Register makes a provider reachable under nodeID.
func (n *Network) Register(nodeID string, p Provider) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.providers[nodeID] = p
}

// Unregister removes a provider.
func (n *Network) Unregister(nodeID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.providers, nodeID)
}

// Lookup resolves a node identifier.
func (n *Network) Lookup(nodeID string) (Provider, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	p, ok := n.providers[nodeID]
	return p, ok
}
