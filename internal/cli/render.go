package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphbridge/pkg/cache"
	"github.com/matzehuels/graphbridge/pkg/controller"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/graph"
	gbio "github.com/matzehuels/graphbridge/pkg/io"
	"github.com/matzehuels/graphbridge/pkg/observability"
	"github.com/matzehuels/graphbridge/pkg/render/nodelink"
)

const (
	formatSVG = "svg" // Graphviz-rendered SVG
	formatDOT = "dot" // raw DOT source
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path; empty derives one from the graph ID
	format   string // "svg" or "dot"
	detailed bool   // show node kind and identity in labels
	noCache  bool   // bypass the render cache
}

// renderCommand creates the render command for drawing a graph.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <module> <graph>",
		Short: "Render a graph as a node-link diagram",
		Long: `Render a graph as a node-link diagram. Nodes are drawn in body order and
edges connect each binding to the nodes that read it.

SVG output is laid out by Graphviz and cached by the DOT source, so rendering
an unchanged graph is instant.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("detailed") {
				opts.detailed = c.cfg.Render.Detailed
			}
			return c.runRender(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <graph>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatSVG, "output format: svg, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node kind and identity")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, modulePath, graphID string, opts renderOpts) error {
	if opts.format != formatSVG && opts.format != formatDOT {
		return errs.New(errs.ErrCodeInvalidInput, "unknown format %q (want svg or dot)", opts.format)
	}

	reg, h, err := c.openGraph(ctx, modulePath, graphID)
	if err != nil {
		return err
	}
	defer reg.Close()

	infos, err := h.ListNodeInfos()
	if err != nil {
		return err
	}
	dot := nodelink.ToDOT(infos, nodelink.Options{Detailed: opts.detailed})

	out := opts.output
	if out == "" {
		out = defaultOutput(h.ID(), opts.format)
	}

	status := ""
	data := []byte(dot)
	if opts.format == formatSVG {
		var cached bool
		data, cached, err = c.renderSVG(ctx, h.ID(), len(infos), dot, opts.noCache)
		if err != nil {
			return err
		}
		status = iconFresh
		if cached {
			status = iconCached
		}
	}

	if err := os.WriteFile(out, data, 0644); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "write %s", out)
	}
	printSuccess("Rendered %s", StyleHighlight.Render(h.ID().String()))
	printFile(out)
	printStats(len(infos), len(graph.Dataflow(infos)), status)
	return nil
}

// renderSVG lays out the DOT source of graph id with Graphviz, going through
// the render cache.
func (c *CLI) renderSVG(ctx context.Context, id graph.ID, nodes int, dot string, noCache bool) ([]byte, bool, error) {
	ch := c.newCache(noCache)
	defer ch.Close()

	key := cache.RenderKey(formatSVG, []byte(dot))
	if data, ok, err := ch.Get(ctx, key); err != nil {
		c.Logger.Warn("render cache read failed", "err", err)
	} else if ok {
		observability.Cache().OnCacheHit(ctx, "render")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	spinner := newLayoutSpinner(ctx, c.Logger, id, nodes, os.Stderr)
	spinner.Start()
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		spinner.Fail(err)
		return nil, false, err
	}
	spinner.Done()

	if err := ch.Set(ctx, key, svg, c.cfg.Cache.TTL.Duration); err != nil {
		c.Logger.Warn("render cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "render", len(svg))
	}
	return svg, false, nil
}

// defaultOutput names the output file after the graph, e.g. "main.helper.svg".
func defaultOutput(id graph.ID, format string) string {
	name := strings.NewReplacer("(", "", ")", "", "/", "_").Replace(id.String())
	return name + "." + format
}

// exportCommand writes a graph as JSON.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <module> <graph>",
		Short: "Export a graph as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, h, err := c.openGraph(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			defer reg.Close()

			infos, err := h.ListNodeInfos()
			if err != nil {
				return err
			}
			g := gbio.FromNodes(h.ID(), infos, h.Module().Read().Metadata)
			if output == "" || output == "-" {
				return gbio.WriteJSON(g, os.Stdout)
			}
			if err := gbio.ExportJSON(g, output); err != nil {
				return err
			}
			printSuccess("Exported %s", StyleHighlight.Render(h.ID().String()))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// importCommand appends the nodes of an exported graph to a graph.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <module> <graph> <file>",
		Short: "Append the nodes of an exported graph",
		Long: `Append the nodes of a JSON export to the end of a graph, in export order.
Node identities and positions are kept. Importing stops at the first node
that cannot be added; nodes added before it are kept.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gbio.ImportJSON(args[2])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			reg, h, err := c.openGraph(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			defer reg.Close()

			added, err := importNodes(h, g)
			if added > 0 {
				if serr := reg.Save(ctx, h.Module()); serr != nil {
					return serr
				}
			}
			if err != nil {
				return err
			}
			printSuccess("Imported %d nodes into %s", added, StyleHighlight.Render(h.ID().String()))
			return nil
		},
	}
}

// importNodes adds every node of g to h and returns how many were added.
func importNodes(h controller.Handle, g gbio.Graph) (int, error) {
	for i, n := range g.Nodes {
		if _, err := h.AddNode(n.NewNodeInfo()); err != nil {
			return i, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	return len(g.Nodes), nil
}
