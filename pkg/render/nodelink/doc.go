// Package nodelink renders graphs as node-link diagrams.
//
// # Usage
//
// Convert a node list to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(nodes, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: node labels also show the node kind and identity
//
// # DOT Format
//
// Nodes appear top to bottom in execution order (rankdir=TB) as rounded
// boxes labeled with their source line. Bindings are filled, bare
// expressions are white. Edges come from [graph.Dataflow] and are labeled
// with the name that flows along them.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
