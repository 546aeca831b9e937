package netx

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/arkavo-org/iroh-go/errors"
)

// DefaultRelayURL is used when relaying is enabled and no custom relay is
// configured.
const DefaultRelayURL = "https://relay.arkavo.net"

// NodeAddr is the dialable address of a node.
type NodeAddr struct {
	// ID is the hex node identifier.
	ID string
	// RelayURL assists connectivity; empty when relaying is disabled.
	RelayURL string
}

// Endpoint is a node's network identity plus relay configuration.
type Endpoint struct {
	secret       ed25519.PrivateKey
	relayEnabled bool
	relayURL     string
}

// EndpointOptions configures NewEndpoint.
type EndpointOptions struct {
	// KeyPath persists the node identity. A key is generated there on
	// first use so the node identifier is stable across restarts.
	KeyPath string
	// RelayEnabled selects relay-assisted connectivity.
	RelayEnabled bool
	// CustomRelayURL overrides the default relay. Must be an http(s) URL.
	CustomRelayURL string
}

// NewEndpoint loads or creates the node identity and validates the relay
// configuration.
func NewEndpoint(opts EndpointOptions) (*Endpoint, error) {
	relayURL := ""
	if opts.RelayEnabled {
		relayURL = DefaultRelayURL
		if opts.CustomRelayURL != "" {
			u, err := url.Parse(opts.CustomRelayURL)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseNetwork, errors.KindInvalidInput, err, "invalid relay URL")
			}
			if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
				return nil, errors.InvalidInput(errors.PhaseNetwork,
					fmt.Sprintf("invalid relay URL %q: expected http(s)://host", opts.CustomRelayURL))
			}
			relayURL = opts.CustomRelayURL
		}
	}

	secret, err := loadOrCreateKey(opts.KeyPath)
	if err != nil {
		return nil, err
	}

	return &Endpoint{
		secret:       secret,
		relayEnabled: opts.RelayEnabled,
		relayURL:     relayURL,
	}, nil
}

// NodeID returns the hex public identifier of this endpoint.
func (e *Endpoint) NodeID() string {
	return hex.EncodeToString(e.secret.Public().(ed25519.PublicKey))
}

// RelayURL returns the configured relay, or "" when relaying is disabled.
func (e *Endpoint) RelayURL() string {
	return e.relayURL
}

// IsConnected reports whether the endpoint participates in the network.
func (e *Endpoint) IsConnected() bool {
	return e.relayEnabled
}

// Addr returns the endpoint's shareable address.
func (e *Endpoint) Addr() NodeAddr {
	return NodeAddr{ID: e.NodeID(), RelayURL: e.relayURL}
}

func loadOrCreateKey(path string) (ed25519.PrivateKey, error) {
	if path == "" {
		_, secret, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, errors.IO(errors.PhaseNetwork, "generate node key", err)
		}
		return secret, nil
	}

	if raw, err := os.ReadFile(path); err == nil {
		seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil || len(seed) != ed25519.SeedSize {
			return nil, errors.InvalidInput(errors.PhaseNetwork,
				fmt.Sprintf("corrupt node key at %s", path))
		}
		return ed25519.NewKeyFromSeed(seed), nil
	} else if !os.IsNotExist(err) {
		return nil, errors.IO(errors.PhaseNetwork, "read node key", err)
	}

	_, secret, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.IO(errors.PhaseNetwork, "generate node key", err)
	}
	seed := hex.EncodeToString(secret.Seed())
	if err := os.WriteFile(path, []byte(seed+"\n"), 0o600); err != nil {
		return nil, errors.IO(errors.PhaseNetwork, "persist node key", err)
	}
	return secret, nil
}
