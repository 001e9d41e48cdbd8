package ast

import (
	"strings"

	"github.com/google/uuid"
)

// ID is the stable identity of an AST node. The zero value ([uuid.Nil])
// means the node carries no identity.
type ID = uuid.UUID

// NewID mints a fresh identity.
func NewID() ID { return uuid.New() }

// ParseID parses the canonical string form of an identity.
func ParseID(s string) (ID, error) { return uuid.Parse(s) }

// Kind distinguishes the shapes an [Ast] node can take.
type Kind int

const (
	// KindVar is an identifier, possibly qualified (e.g. "Int.=", "foo.bar").
	KindVar Kind = iota
	// KindNumber is a numeric literal.
	KindNumber
	// KindText is a quoted text literal, quotes included in Text.
	KindText
	// KindOpr is an operator token appearing inside an infix expression.
	KindOpr
	// KindGroup is a parenthesized expression; Left holds the inner expression.
	KindGroup
	// KindPrefix is function application; Left is the function, Right the argument.
	KindPrefix
	// KindInfix is a binary operator application; Left, Opr and Right are set.
	KindInfix
	// KindBlock is an indented multi-line body.
	KindBlock
)

var kindNames = [...]string{
	KindVar:    "var",
	KindNumber: "number",
	KindText:   "text",
	KindOpr:    "opr",
	KindGroup:  "group",
	KindPrefix: "prefix",
	KindInfix:  "infix",
	KindBlock:  "block",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Ast is one node of the syntax tree.
//
// Whitespace is recorded in offsets so that [Ast.Repr] reproduces the
// original source exactly:
//   - Infix: Left, LOff spaces, Opr, ROff spaces, Right
//   - Prefix: Left, ROff spaces, Right
//   - Group: "(", LOff spaces, Left, ROff spaces, ")"
//
// A Block on the right of an infix starts with a newline, so ROff then
// counts the trailing spaces after the operator.
type Ast struct {
	ID   ID
	Kind Kind

	// Text is the token text of Var, Number, Text and Opr nodes.
	Text string

	Left  *Ast
	Opr   *Ast
	Right *Ast

	LOff int
	ROff int

	Block *Block
}

// NewVar creates an identifier node with a fresh identity.
func NewVar(name string) *Ast {
	return &Ast{ID: NewID(), Kind: KindVar, Text: name}
}

// NewInfix creates a binary operator node with single spaces around the
// operator and a fresh identity.
func NewInfix(left *Ast, opr string, right *Ast) *Ast {
	return &Ast{
		ID:    NewID(),
		Kind:  KindInfix,
		Left:  left,
		Opr:   &Ast{ID: NewID(), Kind: KindOpr, Text: opr},
		Right: right,
		LOff:  1,
		ROff:  1,
	}
}

// Repr returns the source text of the subtree.
func (a *Ast) Repr() string {
	var b strings.Builder
	a.writeTo(&b)
	return b.String()
}

// Len returns the length in bytes of [Ast.Repr].
func (a *Ast) Len() int {
	if a == nil {
		return 0
	}
	switch a.Kind {
	case KindGroup:
		return 2 + a.LOff + a.Left.Len() + a.ROff
	case KindPrefix:
		return a.Left.Len() + a.ROff + a.Right.Len()
	case KindInfix:
		return a.Left.Len() + a.LOff + a.Opr.Len() + a.ROff + a.Right.Len()
	case KindBlock:
		return a.Block.Len()
	default:
		return len(a.Text)
	}
}

func (a *Ast) writeTo(b *strings.Builder) {
	if a == nil {
		return
	}
	switch a.Kind {
	case KindGroup:
		b.WriteByte('(')
		writeSpaces(b, a.LOff)
		a.Left.writeTo(b)
		writeSpaces(b, a.ROff)
		b.WriteByte(')')
	case KindPrefix:
		a.Left.writeTo(b)
		writeSpaces(b, a.ROff)
		a.Right.writeTo(b)
	case KindInfix:
		a.Left.writeTo(b)
		writeSpaces(b, a.LOff)
		a.Opr.writeTo(b)
		writeSpaces(b, a.ROff)
		a.Right.writeTo(b)
	case KindBlock:
		a.Block.writeTo(b)
	default:
		b.WriteString(a.Text)
	}
}

func writeSpaces(b *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		b.WriteByte(' ')
	}
}

// Clone returns a deep copy of the subtree. Identities are preserved.
func (a *Ast) Clone() *Ast {
	if a == nil {
		return nil
	}
	c := *a
	c.Left = a.Left.Clone()
	c.Opr = a.Opr.Clone()
	c.Right = a.Right.Clone()
	c.Block = a.Block.Clone()
	return &c
}

// IsAssignment reports whether the node is an infix "=" binding.
func (a *Ast) IsAssignment() bool {
	return a != nil && a.Kind == KindInfix && a.Opr != nil && a.Opr.Text == "="
}

// Children returns the direct sub-nodes in source order. Lines of a block
// are included; blank lines are skipped.
func (a *Ast) Children() []*Ast {
	if a == nil {
		return nil
	}
	switch a.Kind {
	case KindGroup:
		return []*Ast{a.Left}
	case KindPrefix:
		return []*Ast{a.Left, a.Right}
	case KindInfix:
		return []*Ast{a.Left, a.Opr, a.Right}
	case KindBlock:
		var out []*Ast
		for _, line := range a.Block.Lines {
			if line.Elem != nil {
				out = append(out, line.Elem)
			}
		}
		return out
	}
	return nil
}

// Walk calls fn for the node and every descendant in pre-order. Returning
// false from fn skips the node's children.
func Walk(a *Ast, fn func(*Ast) bool) {
	if a == nil || !fn(a) {
		return
	}
	for _, c := range a.Children() {
		Walk(c, fn)
	}
}

// FlattenPrefix unrolls a chain of applications `f a b c` into the
// function and its arguments in order.
func FlattenPrefix(a *Ast) (fn *Ast, args []*Ast) {
	for a != nil && a.Kind == KindPrefix {
		args = append(args, a.Right)
		a = a.Left
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return a, args
}
