// Package render groups the visual outputs of a graph.
//
// The [nodelink] subpackage draws a graph's nodes as boxes in execution
// order, connected by dataflow arrows, using Graphviz:
//
//	dot := nodelink.ToDOT(nodes, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/graphbridge/pkg/render/nodelink
package render
