// Package definition recognizes function-like bindings in a parsed module
// and gives access to their bodies as lists of lines.
//
// A definition is an assignment whose left side is a name, optionally
// qualified by an extension target and followed by arguments:
//
//	main = ...           plain definition (module level only)
//	foo a b = ...        definition with arguments
//	Int.+ other = ...    extension method on Int
//
// Inside a body the same shape without arguments (`foo = 1`) is an ordinary
// binding and not a definition; see [ScopeKind].
package definition

import (
	"strings"

	"github.com/matzehuels/graphbridge/pkg/ast"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
)

// Indent is the number of spaces a body block is indented relative to the
// line that defines it.
const Indent = 4

// Name identifies a definition: a plain name, optionally prefixed by the
// extension target path ("Int" in "Int.=").
type Name struct {
	Name     string
	Extended []string
}

// NewName returns a plain, non-extension name.
func NewName(name string) Name {
	return Name{Name: name}
}

// ParseName splits a possibly qualified name such as "Int.=" into its
// extension target and name.
func ParseName(s string) Name {
	parts := strings.Split(s, ".")
	n := Name{Name: parts[len(parts)-1]}
	if len(parts) > 1 {
		n.Extended = parts[:len(parts)-1]
	}
	return n
}

// String renders the name the way it is written in source.
func (n Name) String() string {
	if len(n.Extended) == 0 {
		return n.Name
	}
	return strings.Join(n.Extended, ".") + "." + n.Name
}

// Equal reports whether two names are the same.
func (n Name) Equal(o Name) bool {
	if n.Name != o.Name || len(n.Extended) != len(o.Extended) {
		return false
	}
	for i := range n.Extended {
		if n.Extended[i] != o.Extended[i] {
			return false
		}
	}
	return true
}

// IsExtension reports whether the name defines an extension method.
func (n Name) IsExtension() bool { return len(n.Extended) > 0 }

// ScopeKind tells [FromLineAst] where a line appears.
type ScopeKind int

const (
	// Root is the module's top level: every named binding is a definition.
	Root ScopeKind = iota
	// NonRoot is a definition body: a binding is a definition only if it
	// takes arguments or extends a type.
	NonRoot
)

// Info describes one definition found in the AST.
//
// Ast points into the module it was found in, so [Info.SetBlockLines]
// edits that module in place. Callers that must not see partial edits work
// on a clone (see module.Model.Update).
type Info struct {
	Ast           *ast.Ast
	Name          Name
	Args          []*ast.Ast
	ContextIndent int

	// line is the block line holding Ast, when known. Its Off is the
	// trailing space after a single-expression body.
	line *ast.BlockLine
}

// FromLineAst reports whether line is a definition in the given scope and
// describes it.
func FromLineAst(line *ast.Ast, scope ScopeKind) (*Info, bool) {
	if !line.IsAssignment() {
		return nil, false
	}
	fn, args := ast.FlattenPrefix(line.Left)
	if fn == nil || fn.Kind != ast.KindVar {
		return nil, false
	}
	name := ParseName(fn.Text)
	if scope == NonRoot && len(args) == 0 && !name.IsExtension() {
		return nil, false
	}
	return &Info{Ast: line, Name: name, Args: args}, true
}

// Body returns the definition's right-hand side.
func (d *Info) Body() *ast.Ast {
	return d.Ast.Right
}

// BlockLines returns the lines of the body. A single-expression body is
// reported as one line carrying the definition line's trailing space. The
// returned slice is a copy; its elements share nodes with the module.
func (d *Info) BlockLines() []ast.BlockLine {
	body := d.Body()
	if body.Kind != ast.KindBlock {
		return []ast.BlockLine{{Elem: body, Off: d.trailing()}}
	}
	lines := make([]ast.BlockLine, len(body.Block.Lines))
	copy(lines, body.Block.Lines)
	return lines
}

// SetBlockLines replaces the body with the given lines. A single-expression
// body becomes a block indented one level deeper than the definition.
func (d *Info) SetBlockLines(lines []ast.BlockLine) error {
	if !hasExpression(lines) {
		return errs.New(errs.ErrCodeStructural, "body of %s must contain at least one line of code", d.Name)
	}
	body := d.Body()
	if body.Kind == ast.KindBlock {
		body.Block.Lines = lines
		return nil
	}
	d.Ast.Right = ast.NewBlock(d.ContextIndent+Indent, lines)
	d.Ast.ROff = 0
	// The trailing space now belongs to the body line, see BlockLines.
	if d.line != nil {
		d.line.Off = 0
	}
	return nil
}

func (d *Info) trailing() int {
	if d.line == nil {
		return 0
	}
	return d.line.Off
}

func hasExpression(lines []ast.BlockLine) bool {
	for _, l := range lines {
		if !l.IsBlank() {
			return true
		}
	}
	return false
}

// FindDefinition looks up a definition nested directly in d's body.
func (d *Info) FindDefinition(name Name) (*Info, bool) {
	for _, def := range d.Definitions() {
		if def.Name.Equal(name) {
			return def, true
		}
	}
	return nil, false
}

// Definitions lists the definitions nested directly in d's body, in source
// order.
func (d *Info) Definitions() []*Info {
	body := d.Body()
	if body.Kind != ast.KindBlock {
		return nil
	}
	return collect(body.Block.Lines, NonRoot, body.Block.Indent)
}

// FindInModule looks up a top-level definition of m.
func FindInModule(m *ast.Module, name Name) (*Info, bool) {
	for _, def := range ModuleDefinitions(m) {
		if def.Name.Equal(name) {
			return def, true
		}
	}
	return nil, false
}

// ModuleDefinitions lists the top-level definitions of m in source order.
func ModuleDefinitions(m *ast.Module) []*Info {
	return collect(m.Lines, Root, 0)
}

func collect(lines []ast.BlockLine, scope ScopeKind, indent int) []*Info {
	var out []*Info
	for i := range lines {
		line := &lines[i]
		if line.IsBlank() {
			continue
		}
		if def, ok := FromLineAst(line.Elem, scope); ok {
			def.ContextIndent = indent
			def.line = line
			out = append(out, def)
		}
	}
	return out
}
