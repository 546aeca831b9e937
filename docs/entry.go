package docs

import (
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"
)

const signingContext = "iroh-go/docs/v1"

// Entry is one signed record in a document log.
type Entry struct {
	// Namespace is the hex document namespace this entry belongs to.
	Namespace string
	// Author identifies who wrote the entry.
	Author AuthorID
	// Key is the entry's key bytes.
	Key []byte
	// ContentHash is the hex hash of the value in the blob store. Zero
	// hash for tombstones.
	ContentHash string
	// ContentSize is the value size in bytes.
	ContentSize uint64
	// Timestamp is microseconds since the Unix epoch at write time.
	Timestamp uint64
	// Tombstone marks a deletion.
	Tombstone bool
	// Signature is the author's signature over the canonical record.
	Signature []byte
}

// signingBytes produces the canonical byte string covered by the
// signature. Any field change invalidates the signature.
func (e *Entry) signingBytes() []byte {
	buf := make([]byte, 0, len(signingContext)+IDLen*2+len(e.Key)+64)
	buf = append(buf, signingContext...)

	ns, _ := hex.DecodeString(e.Namespace)
	buf = append(buf, ns...)
	buf = append(buf, e.Author[:]...)

	if e.Tombstone {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = binary.LittleEndian.AppendUint64(buf, e.Timestamp)
	buf = binary.LittleEndian.AppendUint64(buf, e.ContentSize)

	hash, _ := hex.DecodeString(e.ContentHash)
	buf = append(buf, hash...)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(e.Key)))
	buf = append(buf, e.Key...)
	return buf
}

func (e *Entry) sign(a Author) {
	e.Author = a.ID()
	e.Signature = a.sign(e.signingBytes())
}

// Verify checks the entry's signature against its author id.
func (e *Entry) Verify() bool {
	if len(e.Signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(e.Author[:]), e.signingBytes(), e.Signature)
}

// supersedes reports whether e wins over other under last-writer-wins
// with author id as the tie-break.
func (e *Entry) supersedes(other *Entry) bool {
	if e.Timestamp != other.Timestamp {
		return e.Timestamp > other.Timestamp
	}
	return other.Author.less(e.Author)
}

// clone returns a deep copy so callers cannot mutate log state.
func (e *Entry) clone() *Entry {
	c := *e
	c.Key = append([]byte(nil), e.Key...)
	c.Signature = append([]byte(nil), e.Signature...)
	return &c
}
