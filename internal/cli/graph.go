package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphbridge/pkg/ast"
	"github.com/matzehuels/graphbridge/pkg/controller"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/graph"
	"github.com/matzehuels/graphbridge/pkg/module"
	"github.com/matzehuels/graphbridge/pkg/node"
)

// codeCommand prints a module's source, or replaces it with --set.
func (c *CLI) codeCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "code <module>",
		Short: "Print or replace the source of a module",
		Long: `Print the source of a module.

With --set, replace the module's source with the contents of a file ("-" reads
stdin). The module is created if it does not exist. Nodes whose text and
position in the source are unchanged keep their identities and positions;
edited code gets fresh identities.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, err := c.openRegistry(ctx)
			if err != nil {
				return err
			}
			defer reg.Close()

			if from == "" {
				m, err := reg.Open(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Print(m.Code())
				return nil
			}

			code, err := readInput(from)
			if err != nil {
				return err
			}
			m, err := reg.SetCode(ctx, args[0], string(code))
			if err != nil {
				return err
			}
			printSuccess("Saved %s", StyleHighlight.Render(m.Path()))
			for _, id := range graph.List(m.Read().Ast) {
				printDetail("graph %s", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "set", "", "replace the source with this file (- for stdin)")
	return cmd
}

func readInput(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "read %s", path)
	}
	return data, nil
}

// graphsCommand lists the addressable graphs of a module.
func (c *CLI) graphsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "graphs <module>",
		Short: "List the graphs of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, err := c.openRegistry(ctx)
			if err != nil {
				return err
			}
			defer reg.Close()

			m, err := reg.Open(ctx, args[0])
			if err != nil {
				return err
			}
			ids := graph.List(m.Read().Ast)
			if len(ids) == 0 {
				printInfo("No definitions in %s", m.Path())
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

// nodesCommand prints a graph's nodes as a table.
func (c *CLI) nodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes <module> <graph>",
		Short: "List the nodes of a graph",
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
			fmt.Println(nodeTable(infos, h.Module().Read().Metadata, -1))
			printStats(len(infos), len(graph.Dataflow(infos)), "")
			return nil
		},
	}
}

// nodeTable renders nodes with their short ID, kind, code and position.
// The row at selected, if any, is highlighted.
func nodeTable(infos []node.Info, meta module.Metadata, selected int) string {
	rows := make([][]string, len(infos))
	for i, n := range infos {
		pos := "—"
		if m, ok := meta.Node(n.ID()); ok && m.Position != nil {
			pos = fmt.Sprintf("%g, %g", m.Position.X, m.Position.Y)
		}
		rows[i] = []string{shortID(n.ID()), n.Kind.String(), n.Line.Repr(), pos}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Kind", "Code", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case row == selected:
				return base.Foreground(colorCyan).Bold(true)
			case col == 0 || col == 3:
				return base.Foreground(colorDim)
			case col == 1 && infos[row].Kind == node.Binding:
				return base.Foreground(colorGreen)
			}
			return base
		}).
		Render()
}

// addCommand inserts a node into a graph.
func (c *CLI) addCommand() *cobra.Command {
	var (
		start, end    bool
		before, after string
		id            string
		x, y          float64
	)

	cmd := &cobra.Command{
		Use:   "add <module> <graph> <expression>",
		Short: "Add a node to a graph",
		Long: `Add a node to a graph. The expression is one line of code, such as
"total = a + b" or "print total". By default the node goes to the end of the
body; use --start, --before or --after to place it elsewhere.`,
		Example: `  graphbridge add main.gb main 'total = a + b' --after 3f2a
  graphbridge add main.gb main.helper 'print x' --start --x 120 --y 40`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, h, err := c.openGraph(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			defer reg.Close()

			hint, err := locationHint(h, start, end, before, after)
			if err != nil {
				return err
			}
			info := controller.NewNodeInfo{Expression: args[2], LocationHint: hint}
			if id != "" {
				parsed, err := ast.ParseID(id)
				if err != nil {
					return errs.Wrap(errs.ErrCodeInvalidInput, err, "bad --id")
				}
				info.ID = &parsed
			}
			if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
				info.Position = &module.Position{X: x, Y: y}
			}

			n, err := h.AddNode(info)
			if err != nil {
				return err
			}
			if err := reg.Save(ctx, h.Module()); err != nil {
				return err
			}
			printSuccess("Added node %s %s", StyleHighlight.Render(shortID(n.ID())), StyleDim.Render(hint.String()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&start, "start", false, "insert at the start of the body")
	cmd.Flags().BoolVar(&end, "end", false, "insert at the end of the body (default)")
	cmd.Flags().StringVar(&before, "before", "", "insert before this node")
	cmd.Flags().StringVar(&after, "after", "", "insert after this node")
	cmd.Flags().StringVar(&id, "id", "", "identity for the new node (default: fresh)")
	cmd.Flags().Float64Var(&x, "x", 0, "canvas x position")
	cmd.Flags().Float64Var(&y, "y", 0, "canvas y position")
	cmd.MarkFlagsMutuallyExclusive("start", "end", "before", "after")
	return cmd
}

// locationHint builds the hint selected by the add command's flags.
func locationHint(h controller.Handle, start, end bool, before, after string) (graph.LocationHint, error) {
	switch {
	case start:
		return graph.Start(), nil
	case before != "":
		id, err := resolveNodeID(h, before)
		return graph.Before(id), err
	case after != "":
		id, err := resolveNodeID(h, after)
		return graph.After(id), err
	}
	return graph.End(), nil
}

// removeCommand deletes a node.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <module> <graph> <node>",
		Aliases: []string{"rm"},
		Short:   "Remove a node from a graph",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, h, err := c.openGraph(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			defer reg.Close()

			id, err := resolveNodeID(h, args[2])
			if err != nil {
				return err
			}
			if err := h.RemoveNode(id); err != nil {
				return err
			}
			if err := reg.Save(ctx, h.Module()); err != nil {
				return err
			}
			printSuccess("Removed node %s", StyleHighlight.Render(shortID(id)))
			return nil
		},
	}
}

// moveCommand sets a node's canvas position.
func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <module> <graph> <node> <x> <y>",
		Short: "Set the canvas position of a node",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return errs.Wrap(errs.ErrCodeInvalidInput, err, "bad x")
			}
			y, err := strconv.ParseFloat(args[4], 64)
			if err != nil {
				return errs.Wrap(errs.ErrCodeInvalidInput, err, "bad y")
			}

			ctx := cmd.Context()
			reg, h, err := c.openGraph(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			defer reg.Close()

			id, err := resolveNodeID(h, args[2])
			if err != nil {
				return err
			}
			n, err := h.GetNode(id)
			if err != nil {
				return err
			}
			if err := n.SetPosition(module.Position{X: x, Y: y}); err != nil {
				return err
			}
			if err := reg.Save(ctx, h.Module()); err != nil {
				return err
			}
			printSuccess("Moved node %s to %g, %g", StyleHighlight.Render(shortID(id)), x, y)
			return nil
		},
	}
}
