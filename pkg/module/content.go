package module

import (
	"github.com/matzehuels/graphbridge/pkg/ast"
)

// Position is a node's location on the editor canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeMetadata is the editor state kept for one node.
type NodeMetadata struct {
	Position *Position `json:"position,omitempty"`
}

// Metadata is editor state that is not part of the code.
type Metadata struct {
	Nodes map[ast.ID]NodeMetadata `json:"nodes"`
}

// Node returns the metadata of the node with the given ID.
func (m Metadata) Node(id ast.ID) (NodeMetadata, bool) {
	n, ok := m.Nodes[id]
	return n, ok
}

// SetNode stores the metadata of a node.
func (m *Metadata) SetNode(id ast.ID, n NodeMetadata) {
	if m.Nodes == nil {
		m.Nodes = make(map[ast.ID]NodeMetadata)
	}
	m.Nodes[id] = n
}

// RemoveNode drops the metadata of a node.
func (m *Metadata) RemoveNode(id ast.ID) {
	delete(m.Nodes, id)
}

// Clone returns a deep copy.
func (m Metadata) Clone() Metadata {
	if m.Nodes == nil {
		return Metadata{}
	}
	nodes := make(map[ast.ID]NodeMetadata, len(m.Nodes))
	for id, n := range m.Nodes {
		if n.Position != nil {
			p := *n.Position
			n.Position = &p
		}
		nodes[id] = n
	}
	return Metadata{Nodes: nodes}
}

// Equal reports whether both hold the same node metadata.
func (m Metadata) Equal(o Metadata) bool {
	if len(m.Nodes) != len(o.Nodes) {
		return false
	}
	for id, n := range m.Nodes {
		other, ok := o.Nodes[id]
		if !ok || !positionEqual(n.Position, other.Position) {
			return false
		}
	}
	return true
}

func positionEqual(a, b *Position) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Content is everything a module holds: its code and its editor metadata.
type Content struct {
	Ast      *ast.Module
	Metadata Metadata
}

// Clone returns a deep copy. Node identities are preserved.
func (c Content) Clone() Content {
	return Content{Ast: c.Ast.Clone(), Metadata: c.Metadata.Clone()}
}

// Code returns the module's source text.
func (c Content) Code() string {
	if c.Ast == nil {
		return ""
	}
	return c.Ast.Repr()
}
