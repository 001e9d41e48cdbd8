package graph

import (
	"strings"

	"github.com/matzehuels/graphbridge/pkg/ast"
	"github.com/matzehuels/graphbridge/pkg/definition"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
)

// Crumb is one step of a graph path: the name of a definition.
type Crumb = definition.Name

// ID addresses a graph by the path of definition names leading to it, from
// a top-level definition down through nested ones. IDs are compared by
// value; two IDs with equal crumbs address the same graph.
type ID struct {
	Crumbs []Crumb
}

// NewSingleCrumb returns the ID of a top-level definition's graph.
func NewSingleCrumb(name Crumb) ID {
	return ID{Crumbs: []Crumb{name}}
}

// NewID returns an ID with the given crumbs.
func NewID(crumbs ...Crumb) ID {
	return ID{Crumbs: crumbs}
}

// Equal reports whether both IDs have the same crumbs.
func (id ID) Equal(o ID) bool {
	if len(id.Crumbs) != len(o.Crumbs) {
		return false
	}
	for i := range id.Crumbs {
		if !id.Crumbs[i].Equal(o.Crumbs[i]) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the ID has no crumbs.
func (id ID) IsEmpty() bool { return len(id.Crumbs) == 0 }

// Child returns the ID of a definition nested in this graph.
func (id ID) Child(name Crumb) ID {
	crumbs := make([]Crumb, len(id.Crumbs), len(id.Crumbs)+1)
	copy(crumbs, id.Crumbs)
	return ID{Crumbs: append(crumbs, name)}
}

// String renders the path with crumbs joined by dots. Extension-method
// crumbs are parenthesized: "main.(Int.=)".
func (id ID) String() string {
	parts := make([]string, len(id.Crumbs))
	for i, c := range id.Crumbs {
		if c.IsExtension() {
			parts[i] = "(" + c.String() + ")"
		} else {
			parts[i] = c.String()
		}
	}
	return strings.Join(parts, ".")
}

// ParseID parses the form produced by [ID.String].
func ParseID(s string) (ID, error) {
	if strings.TrimSpace(s) == "" {
		return ID{}, EmptyGraphID()
	}
	var crumbs []Crumb
	for rest := s; ; {
		var seg string
		if strings.HasPrefix(rest, "(") {
			end := strings.IndexByte(rest, ')')
			if end < 0 {
				return ID{}, errs.New(errs.ErrCodeInvalidFormat, "graph id %q: missing closing parenthesis", s)
			}
			seg, rest = rest[1:end], rest[end+1:]
			if rest != "" && !strings.HasPrefix(rest, ".") {
				return ID{}, errs.New(errs.ErrCodeInvalidFormat, "graph id %q: expected '.' after %q", s, seg)
			}
		} else if i := strings.IndexByte(rest, '.'); i >= 0 {
			seg, rest = rest[:i], rest[i:]
		} else {
			seg, rest = rest, ""
		}
		if seg == "" || strings.ContainsAny(seg, " ()") {
			return ID{}, errs.New(errs.ErrCodeInvalidFormat, "graph id %q: invalid segment %q", s, seg)
		}
		crumbs = append(crumbs, definition.ParseName(seg))
		if rest == "" {
			break
		}
		rest = rest[1:]
		if rest == "" {
			return ID{}, errs.New(errs.ErrCodeInvalidFormat, "graph id %q: trailing '.'", s)
		}
	}
	return ID{Crumbs: crumbs}, nil
}

// TraverseForDefinition resolves id against m. The first crumb names a
// top-level definition and each further crumb a definition nested in the
// previous one.
func TraverseForDefinition(m *ast.Module, id ID) (*definition.Info, error) {
	if id.IsEmpty() {
		return nil, EmptyGraphID()
	}
	def, ok := definition.FindInModule(m, id.Crumbs[0])
	if !ok {
		return nil, DefinitionNotFound(NewID(id.Crumbs[0]))
	}
	for i := 1; i < len(id.Crumbs); i++ {
		def, ok = def.FindDefinition(id.Crumbs[i])
		if !ok {
			return nil, DefinitionNotFound(NewID(id.Crumbs[:i+1]...))
		}
	}
	return def, nil
}

// List returns the IDs of every addressable graph of m, parents before
// their nested definitions.
func List(m *ast.Module) []ID {
	var out []ID
	var visit func(parent ID, def *definition.Info)
	visit = func(parent ID, def *definition.Info) {
		id := parent.Child(def.Name)
		out = append(out, id)
		for _, nested := range def.Definitions() {
			visit(id, nested)
		}
	}
	for _, def := range definition.ModuleDefinitions(m) {
		visit(ID{}, def)
	}
	return out
}
