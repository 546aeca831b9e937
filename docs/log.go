package docs

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/arkavo-org/iroh-go/errors"
)

// Log record layout (little endian), one record per entry:
//
//	u32 payload length
//	u8  version
//	u8  flags (bit 0: tombstone)
//	32B author id
//	u64 timestamp (µs)
//	u64 content size
//	32B content hash
//	u16 signature length, signature
//	u32 key length, key
const logVersion = 1

const flagTombstone = 0x01

// appendRecord writes one entry to the log file.
func appendRecord(f *os.File, e *Entry) error {
	payload := make([]byte, 0, 128+len(e.Key))
	payload = append(payload, logVersion)

	var flags byte
	if e.Tombstone {
		flags |= flagTombstone
	}
	payload = append(payload, flags)
	payload = append(payload, e.Author[:]...)
	payload = binary.LittleEndian.AppendUint64(payload, e.Timestamp)
	payload = binary.LittleEndian.AppendUint64(payload, e.ContentSize)

	hash := make([]byte, 32)
	if e.ContentHash != "" {
		raw, err := hex.DecodeString(e.ContentHash)
		if err != nil || len(raw) != 32 {
			return errors.InvalidInput(errors.PhaseDocs, "entry has malformed content hash")
		}
		copy(hash, raw)
	}
	payload = append(payload, hash...)

	payload = binary.LittleEndian.AppendUint16(payload, uint16(len(e.Signature)))
	payload = append(payload, e.Signature...)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(e.Key)))
	payload = append(payload, e.Key...)

	frame := binary.LittleEndian.AppendUint32(make([]byte, 0, 4+len(payload)), uint32(len(payload)))
	frame = append(frame, payload...)

	if _, err := f.Write(frame); err != nil {
		return errors.IO(errors.PhaseDocs, "append log record", err)
	}
	return nil
}

// replayLog reads every record from a log file, calling apply for each.
func replayLog(path, namespace string, apply func(*Entry)) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.IO(errors.PhaseDocs, "open log", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.IO(errors.PhaseDocs, "read log record length", err)
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(r, payload); err != nil {
			return errors.IO(errors.PhaseDocs, "read log record", err)
		}

		e, err := decodeRecord(payload, namespace)
		if err != nil {
			return err
		}
		apply(e)
	}
}

func decodeRecord(payload []byte, namespace string) (*Entry, error) {
	const fixed = 1 + 1 + 32 + 8 + 8 + 32 + 2
	if len(payload) < fixed {
		return nil, errors.InvalidInput(errors.PhaseDocs, "truncated log record")
	}
	if payload[0] != logVersion {
		return nil, errors.InvalidInput(errors.PhaseDocs,
			fmt.Sprintf("unsupported log version %d", payload[0]))
	}

	e := &Entry{Namespace: namespace}
	e.Tombstone = payload[1]&flagTombstone != 0
	off := 2

	copy(e.Author[:], payload[off:off+32])
	off += 32
	e.Timestamp = binary.LittleEndian.Uint64(payload[off:])
	off += 8
	e.ContentSize = binary.LittleEndian.Uint64(payload[off:])
	off += 8

	hash := payload[off : off+32]
	off += 32
	zero := true
	for _, b := range hash {
		if b != 0 {
			zero = false
			break
		}
	}
	if !zero {
		e.ContentHash = hex.EncodeToString(hash)
	}

	sigLen := int(binary.LittleEndian.Uint16(payload[off:]))
	off += 2
	if len(payload) < off+sigLen+4 {
		return nil, errors.InvalidInput(errors.PhaseDocs, "truncated log record signature")
	}
	e.Signature = append([]byte(nil), payload[off:off+sigLen]...)
	off += sigLen

	keyLen := int(binary.LittleEndian.Uint32(payload[off:]))
	off += 4
	if len(payload) < off+keyLen {
		return nil, errors.InvalidInput(errors.PhaseDocs, "truncated log record key")
	}
	e.Key = append([]byte(nil), payload[off:off+keyLen]...)

	return e, nil
}
