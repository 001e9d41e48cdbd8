package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphbridge/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The config file is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Graphbridge edits code as node graphs",
		Long:         `Graphbridge shows the bodies of definitions in a source module as graphs of nodes and edits them node by node, keeping the code and the editor layout in sync.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/graphbridge/config.toml)")

	// Register all subcommands
	root.AddCommand(c.codeCommand())
	root.AddCommand(c.graphsCommand())
	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	for _, cmd := range root.Commands() {
		switch cmd.Name() {
		case "code", "graphs":
			cmd.ValidArgsFunction = c.completeModuleArgs(false)
		case "nodes", "add", "remove", "move", "render", "export", "import", "browse":
			cmd.ValidArgsFunction = c.completeModuleArgs(true)
		}
	}

	return root
}
