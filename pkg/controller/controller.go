package controller

import (
	"context"
	"time"

	"github.com/matzehuels/graphbridge/pkg/ast"
	"github.com/matzehuels/graphbridge/pkg/definition"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/graph"
	"github.com/matzehuels/graphbridge/pkg/module"
	"github.com/matzehuels/graphbridge/pkg/node"
	"github.com/matzehuels/graphbridge/pkg/notification"
	"github.com/matzehuels/graphbridge/pkg/observability"
)

// Notification is a graph-level change event.
type Notification int

const (
	// Invalidate means the node set or its presentation may have changed
	// and views should re-read the graph.
	Invalidate Notification = iota
)

func (n Notification) String() string {
	if n == Invalidate {
		return "invalidate"
	}
	return "unknown"
}

// Handle addresses one graph of one module. Copies share the module's
// model; all mutation goes through [module.Model.Update].
type Handle struct {
	model *module.Model
	id    graph.ID
}

// NewHandle returns a handle for the graph id of m. It fails if id does
// not resolve to a definition in the current content.
func NewHandle(m *module.Model, id graph.ID) (Handle, error) {
	h := Handle{model: m, id: id}
	if _, err := h.resolve(m.Read()); err != nil {
		return Handle{}, err
	}
	return h, nil
}

// Module returns the model the graph lives in.
func (h Handle) Module() *module.Model { return h.model }

// ID returns the graph's address.
func (h Handle) ID() graph.ID { return h.id }

func (h Handle) resolve(c module.Content) (*definition.Info, error) {
	def, err := graph.TraverseForDefinition(c.Ast, h.id)
	if err != nil {
		observability.Graph().OnLookupFailed(h.id.String(), err)
		return nil, err
	}
	return def, nil
}

func (h Handle) graphInfo(c module.Content) (*graph.Info, error) {
	def, err := h.resolve(c)
	if err != nil {
		return nil, err
	}
	return graph.FromDefinition(def), nil
}

// Definition returns the graph's definition in the current snapshot.
func (h Handle) Definition() (*definition.Info, error) {
	return h.resolve(h.model.Read())
}

// ListNodeInfos returns the graph's nodes in source order.
func (h Handle) ListNodeInfos() ([]node.Info, error) {
	start := time.Now()
	g, err := h.graphInfo(h.model.Read())
	if err != nil {
		return nil, err
	}
	nodes := g.Nodes()
	observability.Graph().OnNodesListed(h.id.String(), len(nodes), time.Since(start))
	return nodes, nil
}

// NodeInfo returns the node with the given id.
func (h Handle) NodeInfo(id ast.ID) (node.Info, error) {
	g, err := h.graphInfo(h.model.Read())
	if err != nil {
		return node.Info{}, err
	}
	n, err := g.Node(id)
	if err != nil {
		observability.Graph().OnLookupFailed(h.id.String(), err)
	}
	return n, err
}

// NewNodeInfo describes a node to add.
type NewNodeInfo struct {
	// Expression is one line of code, either an expression or a binding
	// such as "a = 1 + 2".
	Expression string
	// Position is the node's initial place on the canvas, if known.
	Position *module.Position
	// ID is the identity to give the node. A fresh one is used when nil.
	// The zero ID is rejected.
	ID *ast.ID
	// LocationHint selects where in the body the line goes.
	LocationHint graph.LocationHint
}

// AddNode parses the new node's code and inserts it as one update of the
// module. On failure the module is unchanged.
func (h Handle) AddNode(n NewNodeInfo) (_ NodeHandle, err error) {
	start := time.Now()
	var id ast.ID
	defer func() {
		observability.Graph().OnNodeAdded(h.id.String(), id.String(), time.Since(start), err)
	}()

	if err := errs.ValidateExpression(n.Expression); err != nil {
		return NodeHandle{}, err
	}
	if n.ID != nil && *n.ID == (ast.ID{}) {
		return NodeHandle{}, errs.New(errs.ErrCodeInvalidInput, "node id cannot be the zero id")
	}
	line, err := ast.ParseLine(n.Expression)
	if err != nil {
		return NodeHandle{}, err
	}
	if n.ID != nil {
		node.SetID(line, *n.ID)
	}
	if info, ok := node.FromLineAst(line); ok {
		id = info.ID()
	}

	err = h.model.Update(func(c *module.Content) error {
		g, err := h.graphInfo(*c)
		if err != nil {
			return err
		}
		if err := g.AddNode(line, n.LocationHint); err != nil {
			return err
		}
		if n.Position != nil {
			pos := *n.Position
			c.Metadata.SetNode(id, module.NodeMetadata{Position: &pos})
		}
		return nil
	})
	if err != nil {
		return NodeHandle{}, err
	}
	return NodeHandle{graph: h, id: id}, nil
}

// GetNode returns a handle for the node with the given id.
func (h Handle) GetNode(id ast.ID) (NodeHandle, error) {
	if _, err := h.NodeInfo(id); err != nil {
		return NodeHandle{}, err
	}
	return NodeHandle{graph: h, id: id}, nil
}

// GetNodes returns handles for all current nodes in source order.
func (h Handle) GetNodes() ([]NodeHandle, error) {
	infos, err := h.ListNodeInfos()
	if err != nil {
		return nil, err
	}
	nodes := make([]NodeHandle, len(infos))
	for i, n := range infos {
		nodes[i] = NodeHandle{graph: h, id: n.ID()}
	}
	return nodes, nil
}

// RemoveNode deletes the node's line and its editor metadata.
func (h Handle) RemoveNode(id ast.ID) (err error) {
	start := time.Now()
	defer func() {
		observability.Graph().OnNodeRemoved(h.id.String(), id.String(), time.Since(start), err)
	}()

	return h.model.Update(func(c *module.Content) error {
		g, err := h.graphInfo(*c)
		if err != nil {
			return err
		}
		if err := g.RemoveNode(id); err != nil {
			return err
		}
		c.Metadata.RemoveNode(id)
		return nil
	})
}

// Subscribe returns a stream of graph notifications. Every change of the
// module is reported as [Invalidate]. The stream ends when ctx is done or
// the subscription is closed.
func (h Handle) Subscribe(ctx context.Context) *notification.Subscription[Notification] {
	return notification.Map(h.model.Subscribe(ctx), func(module.Notification) Notification {
		return Invalidate
	})
}
