package cli

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lineagekit/lineagekit/internal/config"
	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for lineagekit.

In mock mode, entity ids for get, browse and cache invalidate are completed
from the mock catalog. Flag values for --direction and --format are always
completed.`,
		Example: `  source <(lineagekit completion bash)
  lineagekit completion zsh > "${fpath[1]}/_lineagekit"
  lineagekit completion fish > ~/.config/fish/completions/lineagekit.fish
  lineagekit completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(os.Stdout, true)
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
}

// completeEntityIDs completes entity ids from the mock catalog, skipping
// ids already on the command line. Outside mock mode there is nothing to
// offer without a network call.
func (c *CLI) completeEntityIDs(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	cfg, err := config.Load(c.cfgFile, cmd.Flags())
	if err != nil || cfg.Mode != config.ModeMock {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	src, err := newMockSource(cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var out []cobra.Completion
	for _, e := range src.Catalog().Entities {
		if !strings.HasPrefix(e.ID, toComplete) || slices.Contains(args, e.ID) {
			continue
		}
		out = append(out, cobra.CompletionWithDesc(e.ID, e.Name))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// registerLineageFlagCompletions completes --direction and, when present,
// --format on cmd.
func registerLineageFlagCompletions(cmd *cobra.Command) {
	if cmd.Flags().Lookup("direction") != nil {
		_ = cmd.RegisterFlagCompletionFunc("direction", cobra.FixedCompletions(
			[]cobra.Completion{string(lineage.DirectionUpstream), string(lineage.DirectionDownstream), string(lineage.DirectionBoth)},
			cobra.ShellCompDirectiveNoFileComp))
	}
	if cmd.Flags().Lookup("format") != nil {
		_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
			[]cobra.Completion{formatJSON, formatRenderable, formatDOT, formatSVG},
			cobra.ShellCompDirectiveNoFileComp))
	}
}
