package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphbridge/pkg/graph"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for graphbridge.

To load completions:

Bash:
  $ source <(graphbridge completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ graphbridge completion bash > /etc/bash_completion.d/graphbridge
  # macOS:
  $ graphbridge completion bash > $(brew --prefix)/etc/bash_completion.d/graphbridge

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ graphbridge completion zsh > "${fpath[1]}/_graphbridge"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ graphbridge completion fish | source

  # To load completions for each session, execute once:
  $ graphbridge completion fish > ~/.config/fish/completions/graphbridge.fish

PowerShell:
  PS> graphbridge completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> graphbridge completion powershell > graphbridge.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeModuleArgs suggests module paths for the first argument and, when
// withGraph is set, graph IDs of that module for the second.
func (c *CLI) completeModuleArgs(withGraph bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 1 || (len(args) == 1 && !withGraph) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if err := c.loadConfig(); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		reg, err := c.openRegistry(ctx)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer reg.Close()

		if len(args) == 0 {
			paths, err := reg.List(ctx)
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			return paths, cobra.ShellCompDirectiveNoFileComp
		}

		m, err := reg.Open(ctx, args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var ids []string
		for _, id := range graph.List(m.Read().Ast) {
			ids = append(ids, id.String())
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}
