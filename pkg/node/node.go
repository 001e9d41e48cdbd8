// Package node classifies the lines of a definition body as graph nodes.
//
// A node is one visually editable computation step backed by one source
// line: either a binding (`sum = a + b`) or a bare expression
// (`print sum`). The node's identity is the identity of its expression, so
// a binding and its right-hand side are addressed by the same ID.
package node

import (
	"github.com/matzehuels/graphbridge/pkg/ast"
)

// Kind tells whether a node binds its value to a name.
type Kind int

const (
	// Expression is a line with no binding, such as `print a`.
	Expression Kind = iota
	// Binding is an assignment line, such as `a = 1 + 2`.
	Binding
)

func (k Kind) String() string {
	if k == Binding {
		return "binding"
	}
	return "expression"
}

// Info describes one node. For a binding, Pattern is the left-hand side of
// the assignment; for an expression node it is nil.
type Info struct {
	Kind    Kind
	Line    *ast.Ast
	Pattern *ast.Ast
	Expr    *ast.Ast
}

// FromLineAst classifies a body line as a node. Every non-blank line is a
// node unless the caller has already recognized it as a definition.
func FromLineAst(line *ast.Ast) (Info, bool) {
	if line == nil {
		return Info{}, false
	}
	if line.IsAssignment() {
		return Info{Kind: Binding, Line: line, Pattern: line.Left, Expr: line.Right}, true
	}
	return NewExpression(line)
}

// NewExpression describes a bare expression node. An assignment is not a
// bare expression and yields false.
func NewExpression(expr *ast.Ast) (Info, bool) {
	if expr == nil || expr.IsAssignment() {
		return Info{}, false
	}
	return Info{Kind: Expression, Line: expr, Expr: expr}, true
}

// ID returns the node's identity: the identity of its expression.
func (n Info) ID() ast.ID {
	return n.Expr.ID
}

// Expression returns the AST of the computation the node performs.
func (n Info) Expression() *ast.Ast {
	return n.Expr
}

// Name returns the bound name of a binding node whose pattern is a plain
// name, or "".
func (n Info) Name() string {
	if n.Kind != Binding || n.Pattern.Kind != ast.KindVar {
		return ""
	}
	return n.Pattern.Text
}

// SetID gives the node line's expression the chosen identity. For a
// binding line that is the right-hand side; otherwise the line itself.
func SetID(line *ast.Ast, id ast.ID) {
	if line.IsAssignment() {
		line.Right.ID = id
		return
	}
	line.ID = id
}
