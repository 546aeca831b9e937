// Package ticket implements the shareable locator strings for blobs and
// documents.
//
// A ticket couples a content identifier with enough address information
// for a peer to fetch it. The string form is a short type prefix followed
// by an unpadded lowercase base32 body:
//
//	blob<base32(version, format, hash, node id, relay url)>
//	doc<base32(version, mode, namespace, node id, relay url)>
package ticket

import (
	"bytes"
	"encoding/base32"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/arkavo-org/iroh-go/errors"
	"github.com/arkavo-org/iroh-go/store"
)

const (
	blobPrefix = "blob"
	docPrefix  = "doc"
	version    = 1
	idLen      = 32
)

var encoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// ShareMode is the access level granted by a document ticket.
type ShareMode uint8

const (
	ShareRead  ShareMode = 0
	ShareWrite ShareMode = 1
)

// Blob locates a single blob (or collection) on a provider node.
type Blob struct {
	// Hash is the hex content identifier.
	Hash string
	// Format distinguishes raw blobs from hash sequences.
	Format store.Format
	// NodeID is the hex identifier of the providing node.
	NodeID string
	// RelayURL assists connecting to the provider; may be empty.
	RelayURL string
}

// Doc locates a syncable document namespace on a provider node.
type Doc struct {
	// Namespace is the hex document namespace identifier.
	Namespace string
	// Mode is the access level the ticket grants.
	Mode ShareMode
	// NodeID is the hex identifier of the providing node.
	NodeID string
	// RelayURL assists connecting to the provider; may be empty.
	RelayURL string
}

// String serializes the blob ticket.
func (t Blob) String() string {
	var buf bytes.Buffer
	buf.WriteByte(version)
	buf.WriteByte(byte(t.Format))
	writeID(&buf, t.Hash)
	writeID(&buf, t.NodeID)
	writeString(&buf, t.RelayURL)
	return blobPrefix + encoding.EncodeToString(buf.Bytes())
}

// String serializes the doc ticket.
func (t Doc) String() string {
	var buf bytes.Buffer
	buf.WriteByte(version)
	buf.WriteByte(byte(t.Mode))
	writeID(&buf, t.Namespace)
	writeID(&buf, t.NodeID)
	writeString(&buf, t.RelayURL)
	return docPrefix + encoding.EncodeToString(buf.Bytes())
}

// ParseBlob parses a blob ticket string.
func ParseBlob(s string) (Blob, error) {
	body, err := decodeBody(s, blobPrefix)
	if err != nil {
		return Blob{}, err
	}
	if len(body) < 2 {
		return Blob{}, errors.ParseFailed("blob ticket", fmt.Errorf("truncated body"))
	}
	if body[0] != version {
		return Blob{}, errors.ParseFailed("blob ticket", fmt.Errorf("unsupported version %d", body[0]))
	}
	format := store.Format(body[1])
	if format != store.FormatRaw && format != store.FormatHashSeq {
		return Blob{}, errors.ParseFailed("blob ticket", fmt.Errorf("unknown format %d", body[1]))
	}

	r := bytes.NewReader(body[2:])
	hash, err := readID(r)
	if err != nil {
		return Blob{}, errors.ParseFailed("blob ticket", err)
	}
	nodeID, err := readID(r)
	if err != nil {
		return Blob{}, errors.ParseFailed("blob ticket", err)
	}
	relay, err := readString(r)
	if err != nil {
		return Blob{}, errors.ParseFailed("blob ticket", err)
	}
	if r.Len() != 0 {
		return Blob{}, errors.ParseFailed("blob ticket", fmt.Errorf("%d trailing bytes", r.Len()))
	}

	return Blob{Hash: hash, Format: format, NodeID: nodeID, RelayURL: relay}, nil
}

// ParseDoc parses a doc ticket string.
func ParseDoc(s string) (Doc, error) {
	body, err := decodeBody(s, docPrefix)
	if err != nil {
		return Doc{}, err
	}
	if len(body) < 2 {
		return Doc{}, errors.ParseFailed("doc ticket", fmt.Errorf("truncated body"))
	}
	if body[0] != version {
		return Doc{}, errors.ParseFailed("doc ticket", fmt.Errorf("unsupported version %d", body[0]))
	}
	mode := ShareMode(body[1])
	if mode != ShareRead && mode != ShareWrite {
		return Doc{}, errors.ParseFailed("doc ticket", fmt.Errorf("unknown share mode %d", body[1]))
	}

	r := bytes.NewReader(body[2:])
	namespace, err := readID(r)
	if err != nil {
		return Doc{}, errors.ParseFailed("doc ticket", err)
	}
	nodeID, err := readID(r)
	if err != nil {
		return Doc{}, errors.ParseFailed("doc ticket", err)
	}
	relay, err := readString(r)
	if err != nil {
		return Doc{}, errors.ParseFailed("doc ticket", err)
	}
	if r.Len() != 0 {
		return Doc{}, errors.ParseFailed("doc ticket", fmt.Errorf("%d trailing bytes", r.Len()))
	}

	return Doc{Namespace: namespace, Mode: mode, NodeID: nodeID, RelayURL: relay}, nil
}

// Info is the result of Validate. Validation never fails; malformed input
// yields IsValid=false with the remaining fields zeroed.
type Info struct {
	IsValid     bool
	Hash        string
	NodeID      string
	IsRecursive bool
}

// Validate inspects a blob ticket string without ever returning an error.
func Validate(s string) Info {
	t, err := ParseBlob(s)
	if err != nil {
		return Info{}
	}
	return Info{
		IsValid:     true,
		Hash:        t.Hash,
		NodeID:      t.NodeID,
		IsRecursive: t.Format == store.FormatHashSeq,
	}
}

func decodeBody(s, prefix string) ([]byte, error) {
	if !strings.HasPrefix(s, prefix) {
		return nil, errors.ParseFailed(prefix+" ticket", fmt.Errorf("missing %q prefix", prefix))
	}
	body, err := encoding.DecodeString(s[len(prefix):])
	if err != nil {
		return nil, errors.ParseFailed(prefix+" ticket", err)
	}
	return body, nil
}

func writeID(buf *bytes.Buffer, hexID string) {
	raw, err := hex.DecodeString(hexID)
	if err != nil || len(raw) != idLen {
		// Zero-fill malformed identifiers; parsing the resulting ticket
		// yields a syntactically valid but unroutable locator.
		raw = make([]byte, idLen)
	}
	buf.Write(raw)
}

func readID(r *bytes.Reader) (string, error) {
	raw := make([]byte, idLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", fmt.Errorf("truncated identifier")
	}
	return hex.EncodeToString(raw), nil
}

func writeString(buf *bytes.Buffer, s string) {
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(s)))
	buf.Write(lenBuf[:])
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", fmt.Errorf("truncated string length")
	}
	n := binary.LittleEndian.Uint16(lenBuf[:])
	raw := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, raw); err != nil {
			return "", fmt.Errorf("truncated string")
		}
	}
	return string(raw), nil
}
