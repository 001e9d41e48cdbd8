// Package pkg provides the libraries behind graphbridge, which presents the
// definitions of a source module as node graphs and edits the code through
// them.
//
// # Overview
//
// A module is parsed into a whitespace-preserving syntax tree whose lines
// carry stable identities. Each definition body is a graph: every line of
// the body is a node, and a binding feeds the later lines that read it.
//
//	source text
//	     ↓
//	[ast] (lines with stable IDs)
//	     ↓
//	[definition] → [graph] (addressing, node derivation, insertion)
//	     ↓
//	[controller] (CRUD and change notifications per graph)
//	     ↓
//	[render/nodelink], [io] (DOT/SVG, JSON exchange)
//
// # Main Packages
//
//   - [ast]: lexer, parser and tree with node identities
//   - [definition]: definitions and their names within a scope
//   - [node]: node kinds and the node view of a line
//   - [graph]: graph IDs, node lists, location hints and dataflow edges
//   - [module]: module content, the copy-on-write model and the registry
//   - [module/store]: file, memory, Redis and MongoDB module stores
//   - [controller]: graph and node handles used by the CLI and server
//   - [notification]: unbounded publish/subscribe with per-subscriber queues
//   - [cache]: render cache backends
//   - [observability]: hooks, with Prometheus collectors in [observability/metrics]
//   - [errors]: error codes shared by every package
//
// # Quick Start
//
//	m, _ := module.FromCode("main.gb", "main =\n    a = 1\n", nil)
//	id, _ := graph.ParseID("main")
//	h, _ := controller.NewHandle(m, id)
//	n, _ := h.AddNode(controller.NewNodeInfo{
//	    Expression:   "print a",
//	    LocationHint: graph.End(),
//	})
//	fmt.Println(m.Code()) // main =\n    a = 1\n    print a\n
//	_ = n
package pkg
