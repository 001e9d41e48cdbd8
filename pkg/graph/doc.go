// Package graph derives the node graph of a definition from its AST and
// edits the AST through node operations.
//
// # Addressing
//
// A graph is addressed by an [ID]: the path of definition names ([Crumb])
// from a top-level definition down to the definition whose body forms the
// graph. [TraverseForDefinition] resolves an ID against a module:
//
//	id, _ := graph.ParseID("main.helper")
//	def, err := graph.TraverseForDefinition(module, id)
//
// Only named definitions are addressable; anonymous functions have no
// crumb.
//
// # Nodes
//
// [Info] wraps a resolved definition. [Info.Nodes] lists its body's lines
// that are nodes, in source order: nested definitions and blank lines are
// skipped. A body consisting of a single expression is a graph with one
// node.
//
// # Editing
//
// [Info.AddNode] inserts a new line at the place selected by a
// [LocationHint] ([Start], [End], [Before] or [After] an existing node) and
// [Info.RemoveNode] deletes a node's line. Both rewrite only the body's line
// list: every line they do not touch keeps its text and position relative
// to the others. A failed edit leaves the body unchanged.
//
// All node lookups report a missing node with [NodeNotFound].
package graph
