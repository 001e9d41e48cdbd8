// Package controller exposes graphs of a module as editable node lists.
//
// A [Handle] names one graph by its [graph.ID] inside a [module.Model].
// Every call re-resolves the definition against the model's current
// content, so a handle never holds stale AST. Mutations run as one
// [module.Model.Update], which makes each read-derive-write sequence
// atomic with respect to other edits of the same module and leaves the
// module untouched when it fails.
//
//	h, err := controller.NewHandle(model, graph.NewSingleCrumb(definition.NewName("main")))
//	if err != nil {
//	    return err
//	}
//	n, err := h.AddNode(controller.NewNodeInfo{
//	    Expression:   "total = a + b",
//	    LocationHint: graph.End(),
//	})
//
// Views subscribe with [Handle.Subscribe] and re-read the node list on
// every [Invalidate].
package controller
