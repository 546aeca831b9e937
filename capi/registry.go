package capi

import (
	"sync"

	"github.com/arkavo-org/iroh-go/docs"
	"github.com/arkavo-org/iroh-go/errors"
	"github.com/arkavo-org/iroh-go/node"
	"github.com/arkavo-org/iroh-go/resource"
)

const (
	nodeType uint32 = iota + 1
	docType
	subType
)

// registry holds every resource reachable through a handle. Handles are
// generation-tagged: a destroyed resource's handle misses instead of
// resolving to a reused slot.
var registry = resource.NewTable()

// docResource references a document by its owning node's handle value,
// not by pointer. A destroyed node turns every dependent doc handle
// into a stale-handle miss.
type docResource struct {
	node      resource.Handle
	namespace string
}

// subResource holds a subscription's one-shot cancel slot.
type subResource struct {
	mu     sync.Mutex
	cancel func()
}

// take empties the cancel slot. Nil after the first call.
func (s *subResource) take() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cancel
	s.cancel = nil
	return c
}

func (s *subResource) Drop() {
	if c := s.take(); c != nil {
		c()
	}
}

func resolveNode(h NodeHandle) (*node.Node, error) {
	v, ok := registry.GetTyped(resource.Handle(h), nodeType)
	if !ok {
		return nil, errors.StaleHandle("node")
	}
	return v.(*node.Node), nil
}

func resolveDoc(dh DocHandle) (*node.Node, *docs.Document, error) {
	v, ok := registry.GetTyped(resource.Handle(dh), docType)
	if !ok {
		return nil, nil, errors.StaleHandle("doc")
	}
	dr := v.(*docResource)
	n, err := resolveNode(NodeHandle(dr.node))
	if err != nil {
		return nil, nil, err
	}
	engine, err := n.Docs()
	if err != nil {
		return nil, nil, err
	}
	doc := engine.Doc(dr.namespace)
	if doc == nil {
		return nil, nil, errors.NotFound(errors.PhaseDocs, "document", dr.namespace)
	}
	return n, doc, nil
}

// fail projects an error into the single failure string the boundary
// exposes. A nil OnFailure drops the delivery.
func fail(onFailure func(string, any), userdata any, err error) {
	if onFailure != nil {
		onFailure(err.Error(), userdata)
	}
}
