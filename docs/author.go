package docs

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"

	"github.com/arkavo-org/iroh-go/errors"
)

// SecretLen is the size of an author secret (an ed25519 seed).
const SecretLen = 32

// IDLen is the size of an author id (an ed25519 public key).
const IDLen = 32

// AuthorID is the public identifier derived from an author secret.
// Safe to share and store openly.
type AuthorID [IDLen]byte

// Hex returns the lowercase hex form of the id.
func (id AuthorID) Hex() string {
	return hex.EncodeToString(id[:])
}

// AuthorSecret is the private key material used to sign entries.
type AuthorSecret [SecretLen]byte

// Hex returns the lowercase hex form of the secret.
func (s AuthorSecret) Hex() string {
	return hex.EncodeToString(s[:])
}

// Author is a signing identity.
type Author struct {
	key ed25519.PrivateKey
}

// NewAuthor generates a random author.
func NewAuthor() (Author, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Author{}, errors.IO(errors.PhaseDocs, "generate author key", err)
	}
	return Author{key: key}, nil
}

// AuthorFromSecret reconstructs an author from its secret. This is a pure
// computation.
func AuthorFromSecret(secret AuthorSecret) Author {
	return Author{key: ed25519.NewKeyFromSeed(secret[:])}
}

// AuthorFromHex reconstructs an author from a hex-encoded secret.
func AuthorFromHex(s string) (Author, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Author{}, errors.InvalidHex("secret_hex", err)
	}
	if len(raw) != SecretLen {
		return Author{}, errors.InvalidLength("secret_hex", SecretLen, len(raw))
	}
	var secret AuthorSecret
	copy(secret[:], raw)
	return AuthorFromSecret(secret), nil
}

// ID returns the author's public identifier.
func (a Author) ID() AuthorID {
	var id AuthorID
	copy(id[:], a.key.Public().(ed25519.PublicKey))
	return id
}

// Secret returns the author's secret key material.
func (a Author) Secret() AuthorSecret {
	var secret AuthorSecret
	copy(secret[:], a.key.Seed())
	return secret
}

func (a Author) sign(msg []byte) []byte {
	return ed25519.Sign(a.key, msg)
}

// less orders author ids for deterministic tie-breaking.
func (id AuthorID) less(other AuthorID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}
