package graph

import (
	"fmt"

	"github.com/matzehuels/graphbridge/pkg/ast"
	"github.com/matzehuels/graphbridge/pkg/definition"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/node"
)

// LocationKind selects where [Info.AddNode] places a new line.
type LocationKind int

const (
	LocationStart LocationKind = iota
	LocationEnd
	LocationBefore
	LocationAfter
)

// LocationHint is a one-shot request for where to insert a new node,
// resolved against the body's lines at the moment of insertion.
type LocationHint struct {
	Kind LocationKind
	// ID is the reference node of Before and After.
	ID ast.ID
}

// Start places the node before every line of the body.
func Start() LocationHint { return LocationHint{Kind: LocationStart} }

// End places the node after every line of the body.
func End() LocationHint { return LocationHint{Kind: LocationEnd} }

// Before places the node directly before the node with the given ID.
func Before(id ast.ID) LocationHint { return LocationHint{Kind: LocationBefore, ID: id} }

// After places the node directly after the node with the given ID.
func After(id ast.ID) LocationHint { return LocationHint{Kind: LocationAfter, ID: id} }

func (h LocationHint) String() string {
	switch h.Kind {
	case LocationStart:
		return "start"
	case LocationEnd:
		return "end"
	case LocationBefore:
		return fmt.Sprintf("before %s", h.ID)
	case LocationAfter:
		return fmt.Sprintf("after %s", h.ID)
	}
	return "unknown"
}

// Info is the node view of one definition's body. It wraps the definition
// found in a module snapshot and is only valid as long as that snapshot.
type Info struct {
	source *definition.Info
}

// FromDefinition describes the graph of the given definition.
func FromDefinition(def *definition.Info) *Info {
	return &Info{source: def}
}

// Definition returns the definition the graph was built from.
func (g *Info) Definition() *definition.Info {
	return g.source
}

// Nodes lists the nodes of the body in source order.
func (g *Info) Nodes() []node.Info {
	body := g.source.Body()
	if body.Kind == ast.KindBlock {
		return BlockNodes(body.Block)
	}
	return ExpressionNode(body)
}

// Node returns the node with the given ID.
func (g *Info) Node(id ast.ID) (node.Info, error) {
	for _, n := range g.Nodes() {
		if n.ID() == id {
			return n, nil
		}
	}
	return node.Info{}, NodeNotFound(id)
}

// BlockNodes lists the nodes among the lines of a block. Blank lines and
// nested definitions are not nodes.
func BlockNodes(b *ast.Block) []node.Info {
	var out []node.Info
	for _, line := range b.Lines {
		if n, ok := lineNode(line); ok {
			out = append(out, n)
		}
	}
	return out
}

// ExpressionNode lists the node of a single-expression body: one node, or
// none when the body is itself an assignment.
func ExpressionNode(body *ast.Ast) []node.Info {
	n, ok := node.NewExpression(body)
	if !ok {
		return nil
	}
	return []node.Info{n}
}

func lineNode(line ast.BlockLine) (node.Info, bool) {
	if line.IsBlank() {
		return node.Info{}, false
	}
	if _, isDef := definition.FromLineAst(line.Elem, definition.NonRoot); isDef {
		return node.Info{}, false
	}
	return node.FromLineAst(line.Elem)
}

// FindNodeIndexInLines returns the index in lines of the node with the
// given ID.
func FindNodeIndexInLines(lines []ast.BlockLine, id ast.ID) (int, error) {
	for i, line := range lines {
		if n, ok := lineNode(line); ok && n.ID() == id {
			return i, nil
		}
	}
	return 0, NodeNotFound(id)
}

// AddNode inserts line into the body at the place the hint selects. The
// hint is resolved against the current lines; lines the insertion does not
// touch keep their order and text.
func (g *Info) AddNode(line *ast.Ast, hint LocationHint) error {
	n, ok := lineNode(ast.BlockLine{Elem: line})
	if !ok {
		return errs.New(errs.ErrCodeInvalidInput, "%q defines a function, not a node", line.Repr())
	}
	lines := g.source.BlockLines()
	if _, err := FindNodeIndexInLines(lines, n.ID()); err == nil {
		return DuplicateNodeID(n.ID())
	}

	index, err := insertionIndex(lines, hint)
	if err != nil {
		return err
	}

	lines = append(lines, ast.BlockLine{})
	copy(lines[index+1:], lines[index:])
	lines[index] = ast.BlockLine{Elem: line, Off: 0}
	return g.source.SetBlockLines(lines)
}

func insertionIndex(lines []ast.BlockLine, hint LocationHint) (int, error) {
	switch hint.Kind {
	case LocationStart:
		return 0, nil
	case LocationEnd:
		return len(lines), nil
	case LocationBefore:
		return FindNodeIndexInLines(lines, hint.ID)
	case LocationAfter:
		i, err := FindNodeIndexInLines(lines, hint.ID)
		if err != nil {
			return 0, err
		}
		return i + 1, nil
	}
	return 0, errs.New(errs.ErrCodeInvalidInput, "unknown location hint %d", hint.Kind)
}

// RemoveNode deletes the line of the node with the given ID. Removing the
// last line of a body fails, as a definition cannot be left empty.
func (g *Info) RemoveNode(id ast.ID) error {
	lines := g.source.BlockLines()
	index, err := FindNodeIndexInLines(lines, id)
	if err != nil {
		return err
	}
	lines = append(lines[:index], lines[index+1:]...)
	return g.source.SetBlockLines(lines)
}
