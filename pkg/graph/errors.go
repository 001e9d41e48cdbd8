package graph

import (
	"github.com/matzehuels/graphbridge/pkg/ast"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
)

// NodeNotFound reports that no node with the given ID exists in the graph.
// It is the only not-found error for nodes, whether raised while resolving a
// location hint or by a controller lookup.
func NodeNotFound(id ast.ID) *errs.Error {
	return errs.New(errs.ErrCodeNodeNotFound, "node by ID %s was not found", id)
}

// DuplicateNodeID reports an attempt to add a node whose ID is taken.
func DuplicateNodeID(id ast.ID) *errs.Error {
	return errs.New(errs.ErrCodeDuplicateNodeID, "node by ID %s already exists", id)
}

// EmptyGraphID reports a graph ID without crumbs.
func EmptyGraphID() *errs.Error {
	return errs.New(errs.ErrCodeEmptyGraphID, "graph ID must have at least one crumb")
}

// DefinitionNotFound reports a graph path that does not resolve.
func DefinitionNotFound(path ID) *errs.Error {
	return errs.New(errs.ErrCodeDefinitionNotFound, "definition %s was not found", path)
}
