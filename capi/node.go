package capi

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/arkavo-org/iroh-go/errors"
	"github.com/arkavo-org/iroh-go/node"
	"github.com/arkavo-org/iroh-go/resource"
	"github.com/arkavo-org/iroh-go/store"
	"github.com/arkavo-org/iroh-go/ticket"
)

// NodeCreate starts a node and delivers its handle.
func NodeCreate(cfg NodeConfig, cb NodeCallback) {
	if err := checkUTF8("storage_path", cfg.StoragePath); err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if err := checkUTF8("custom_relay_url", cfg.CustomRelayURL); err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}

	nodeCfg := node.Config{
		StoragePath: cfg.StoragePath,
		DocsEnabled: cfg.DocsEnabled,
	}
	switch cfg.Relay {
	case RelayDefault:
		nodeCfg.RelayEnabled = true
	case RelayDisabled:
	case RelayCustom:
		if cfg.CustomRelayURL == "" {
			fail(cb.OnFailure, cb.Userdata,
				errors.InvalidInput(errors.PhaseValidate, "relay mode custom requires a relay URL"))
			return
		}
		nodeCfg.RelayEnabled = true
		nodeCfg.CustomRelayURL = cfg.CustomRelayURL
	default:
		fail(cb.OnFailure, cb.Userdata,
			errors.InvalidInput(errors.PhaseValidate, "unknown relay mode"))
		return
	}

	n, err := node.New(nodeCfg)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	h := registry.Insert(nodeType, n)
	if cb.OnSuccess != nil {
		cb.OnSuccess(NodeHandle(h), cb.Userdata)
	}
}

// NodeDestroy tears the node down best-effort and consumes the handle.
// Destroying an already-destroyed handle is a no-op.
func NodeDestroy(h NodeHandle) {
	registry.Remove(resource.Handle(h))
}

// NodeClose tears the node down, reporting the teardown result, and
// consumes the handle.
func NodeClose(h NodeHandle, cb StatusCallback) {
	n, err := resolveNode(h)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	shutdownErr := n.Shutdown(context.Background())
	registry.Remove(resource.Handle(h))
	if shutdownErr != nil {
		fail(cb.OnFailure, cb.Userdata, shutdownErr)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(cb.Userdata)
	}
}

// Put stores data and delivers a shareable ticket.
func Put(h NodeHandle, data []byte, cb TicketCallback) {
	PutWithOptions(h, data, OperationOptions{}, cb)
}

// PutWithOptions is Put with an operation timeout. A nil data buffer
// stores the empty blob.
func PutWithOptions(h NodeHandle, data []byte, opts OperationOptions, cb TicketCallback) {
	n, err := resolveNode(h)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}

	owned := copyIn(data)
	var tk string
	if opts.TimeoutMS > 0 {
		tk, err = n.PutWithTimeout(owned, time.Duration(opts.TimeoutMS)*time.Millisecond)
	} else {
		tk, err = n.Put(context.Background(), owned)
	}
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(ownString(tk), cb.Userdata)
	}
}

// Get resolves a blob ticket and delivers the content.
func Get(h NodeHandle, ticketStr string, cb BytesCallback) {
	GetWithOptions(h, ticketStr, OperationOptions{}, cb)
}

// GetWithOptions is Get with an operation timeout.
func GetWithOptions(h NodeHandle, ticketStr string, opts OperationOptions, cb BytesCallback) {
	if err := checkUTF8("ticket", ticketStr); err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	n, err := resolveNode(h)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}

	var data []byte
	if opts.TimeoutMS > 0 {
		data, err = n.GetWithTimeout(ticketStr, time.Duration(opts.TimeoutMS)*time.Millisecond)
	} else {
		data, err = n.Get(context.Background(), ticketStr)
	}
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(ownBytes(data), cb.Userdata)
	}
}

// GetWithProgress spawns a download, streams progress, then delivers
// the content as the terminal success. Returns immediately.
func GetWithProgress(h NodeHandle, ticketStr string, cb ProgressCallback) {
	if err := checkUTF8("ticket", ticketStr); err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	n, err := resolveNode(h)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}

	err = n.Spawn(func() {
		data, err := n.GetWithProgress(context.Background(), ticketStr,
			func(downloaded, total uint64) {
				if cb.OnProgress != nil {
					cb.OnProgress(downloaded, total, cb.Userdata)
				}
			})
		if err != nil {
			fail(cb.OnFailure, cb.Userdata, err)
			return
		}
		if cb.OnSuccess != nil {
			cb.OnSuccess(ownBytes(data), cb.Userdata)
		}
	})
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
	}
}

// NodeInfo delivers the node's identity and connectivity.
func NodeInfo(h NodeHandle, cb InfoCallback) {
	n, err := resolveNode(h)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	info := n.Info()
	if cb.OnSuccess != nil {
		cb.OnSuccess(Info{
			NodeID:      info.NodeID,
			RelayURL:    info.RelayURL,
			IsConnected: info.IsConnected,
		}, cb.Userdata)
	}
}

// ValidateTicket inspects a ticket string. It always completes; an
// unparseable ticket is a valid result, not a failure.
func ValidateTicket(s string, cb ValidateCallback) {
	info := ticket.Validate(s)
	if cb.OnComplete != nil {
		cb.OnComplete(TicketInfo{
			IsValid:     info.IsValid,
			Hash:        info.Hash,
			NodeID:      info.NodeID,
			IsRecursive: info.IsRecursive,
		}, cb.Userdata)
	}
}

// BlobTagSet pins content under a tag name.
func BlobTagSet(h NodeHandle, name, hashHex string, format BlobFormat, cb StatusCallback) {
	if err := checkUTF8("name", name); err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if !store.ValidHash(hashHex) {
		fail(cb.OnFailure, cb.Userdata, errors.InvalidHex("hash", nil))
		return
	}
	n, err := resolveNode(h)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if err := n.TagSet(name, hashHex, format); err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(cb.Userdata)
	}
}

// BlobTagDelete removes a tag pin.
func BlobTagDelete(h NodeHandle, name string, cb StatusCallback) {
	if err := checkUTF8("name", name); err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	n, err := resolveNode(h)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if err := n.TagDelete(name); err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(cb.Userdata)
	}
}

// BlobTicketCreate builds a ticket for content already in the local
// store.
func BlobTicketCreate(h NodeHandle, hashHex string, format BlobFormat, cb TicketCallback) {
	n, err := resolveNode(h)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	tk, err := n.TicketCreate(hashHex, format)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(ownString(tk), cb.Userdata)
	}
}

func checkUTF8(name, s string) error {
	if !utf8.ValidString(s) {
		return errors.InvalidUTF8(name, []byte(s))
	}
	return nil
}
