package controller

import (
	"github.com/matzehuels/graphbridge/pkg/ast"
	"github.com/matzehuels/graphbridge/pkg/module"
	"github.com/matzehuels/graphbridge/pkg/node"
)

// NodeHandle refers to one node of a graph by identity. It stays valid
// across edits of other nodes; operations fail with NODE_NOT_FOUND once
// the node is gone.
type NodeHandle struct {
	graph Handle
	id    ast.ID
}

// ID returns the node's identity.
func (n NodeHandle) ID() ast.ID { return n.id }

// Graph returns the handle of the graph the node belongs to.
func (n NodeHandle) Graph() Handle { return n.graph }

// Info returns the node's current description.
func (n NodeHandle) Info() (node.Info, error) {
	return n.graph.NodeInfo(n.id)
}

// Expression returns the node's expression code.
func (n NodeHandle) Expression() (string, error) {
	info, err := n.Info()
	if err != nil {
		return "", err
	}
	return info.Expression().Repr(), nil
}

// Position returns the node's canvas position, or nil if it has none.
func (n NodeHandle) Position() (*module.Position, error) {
	c := n.graph.model.Read()
	g, err := n.graph.graphInfo(c)
	if err != nil {
		return nil, err
	}
	if _, err := g.Node(n.id); err != nil {
		return nil, err
	}
	meta, ok := c.Metadata.Node(n.id)
	if !ok || meta.Position == nil {
		return nil, nil
	}
	pos := *meta.Position
	return &pos, nil
}

// SetPosition moves the node on the canvas.
func (n NodeHandle) SetPosition(pos module.Position) error {
	return n.graph.model.Update(func(c *module.Content) error {
		g, err := n.graph.graphInfo(*c)
		if err != nil {
			return err
		}
		if _, err := g.Node(n.id); err != nil {
			return err
		}
		meta, _ := c.Metadata.Node(n.id)
		meta.Position = &pos
		c.Metadata.SetNode(n.id, meta)
		return nil
	})
}
