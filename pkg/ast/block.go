package ast

import "strings"

// BlockLine is one line of a block or module. A nil Elem is a blank line.
//
// Off counts the spaces on the line that do not belong to Elem: the whole
// content of a blank line, or the trailing spaces after an expression.
type BlockLine struct {
	Elem *Ast
	Off  int
}

// IsBlank reports whether the line carries no expression.
func (l BlockLine) IsBlank() bool { return l.Elem == nil }

// Block is an indented sequence of lines. Every non-blank line starts at
// column Indent; the position of a line in Lines is its execution order.
type Block struct {
	Indent int
	Lines  []BlockLine
}

// NewBlock creates a block node with a fresh identity.
func NewBlock(indent int, lines []BlockLine) *Ast {
	return &Ast{ID: NewID(), Kind: KindBlock, Block: &Block{Indent: indent, Lines: lines}}
}

// Len returns the length in bytes of the block's source text.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, line := range b.Lines {
		n++ // leading newline
		if line.Elem != nil {
			n += b.Indent + line.Elem.Len()
		}
		n += line.Off
	}
	return n
}

func (b *Block) writeTo(sb *strings.Builder) {
	if b == nil {
		return
	}
	for _, line := range b.Lines {
		sb.WriteByte('\n')
		if line.Elem != nil {
			writeSpaces(sb, b.Indent)
			line.Elem.writeTo(sb)
		}
		writeSpaces(sb, line.Off)
	}
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	return &Block{Indent: b.Indent, Lines: cloneLines(b.Lines)}
}

func cloneLines(lines []BlockLine) []BlockLine {
	if lines == nil {
		return nil
	}
	out := make([]BlockLine, len(lines))
	for i, line := range lines {
		out[i] = BlockLine{Elem: line.Elem.Clone(), Off: line.Off}
	}
	return out
}

// Module is the root of a parsed source file: its top-level lines at
// indentation zero.
type Module struct {
	Lines []BlockLine
}

// Repr returns the module's source text.
func (m *Module) Repr() string {
	var sb strings.Builder
	for i, line := range m.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		line.Elem.writeTo(&sb)
		writeSpaces(&sb, line.Off)
	}
	return sb.String()
}

// Clone returns a deep copy of the module. Identities are preserved.
func (m *Module) Clone() *Module {
	if m == nil {
		return nil
	}
	return &Module{Lines: cloneLines(m.Lines)}
}

// Walk visits every node of the module in source order.
func (m *Module) Walk(fn func(*Ast) bool) {
	for _, line := range m.Lines {
		Walk(line.Elem, fn)
	}
}

// Find returns the node with the given identity, or nil.
func (m *Module) Find(id ID) *Ast {
	var found *Ast
	m.Walk(func(a *Ast) bool {
		if found != nil {
			return false
		}
		if a.ID == id {
			found = a
			return false
		}
		return true
	})
	return found
}
