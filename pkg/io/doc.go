// Package io provides JSON import and export of graphs.
//
// # JSON Format
//
//	{
//	  "graph": "main",
//	  "nodes": [
//	    {"id": "9b1d...", "kind": "binding", "name": "a", "code": "a = 1",
//	     "expression": "1", "position": {"x": 10, "y": 20}},
//	    {"id": "4f0c...", "kind": "expression", "code": "print a",
//	     "expression": "print a"}
//	  ],
//	  "edges": [
//	    {"from": "9b1d...", "to": "4f0c...", "name": "a"}
//	  ]
//	}
//
// Nodes are listed in execution order. Edges are the dataflow edges of
// [graph.Dataflow] and are informational: import recreates nodes from
// their code and ignores edges beyond validating them.
//
// # Export
//
// Use [FromNodes] to build a [Graph] from a node list and module metadata,
// then [WriteJSON] or [ExportJSON] to encode it.
//
// # Import
//
// [ReadJSON] and [ImportJSON] decode and validate a document. Each node
// converts to a controller.NewNodeInfo with [Node.NewNodeInfo], keeping its
// identity and position, so a graph can be rebuilt in another module.
package io
