// Package module owns the content of source modules.
//
// A module's [Content] is its parsed [ast.Module] plus editor [Metadata]
// (node positions). A [Model] serializes all edits of one module: readers
// take snapshots, writers pass a function to [Model.Update] that runs on a
// private copy which becomes current only if the function succeeds.
// Subscribers learn about changes through [Model.Subscribe].
//
// A [Registry] loads models from a [Store] and saves them back in the
// on-disk format produced by [Marshal]: the source text, followed by a
// metadata section holding the span-to-ID map and the editor metadata.
// Backends live in the store subpackage.
package module
