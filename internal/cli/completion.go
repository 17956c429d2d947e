package cli

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/render"
)

// formatOrder lists output formats in the order completions offer them.
var formatOrder = []string{render.FormatSVG, render.FormatPNG, render.FormatPDF, render.FormatDOT, render.FormatJSON}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for orbitgraph.

Besides commands and flags, the scripts complete --format values
(svg, png, pdf, dot, json, comma-separated) and offer only .json files
for --file and for the database or snapshot arguments of layout,
visualize and import.

Bash:
  $ source <(orbitgraph completion bash)
  $ orbitgraph completion bash > /etc/bash_completion.d/orbitgraph

Zsh (requires compinit):
  $ orbitgraph completion zsh > "${fpath[1]}/_orbitgraph"

Fish:
  $ orbitgraph completion fish > ~/.config/fish/completions/orbitgraph.fish

PowerShell:
  PS> orbitgraph completion powershell | Out-String | Invoke-Expression

Start a new shell for the setup to take effect.
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

// completeFormats completes the last element of a comma-separated format
// list, skipping formats already given.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix, partial := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, partial = toComplete[:i+1], toComplete[i+1:]
	}
	used := strings.Split(prefix, ",")

	var out []string
	for _, f := range formatOrder {
		if strings.HasPrefix(f, partial) && !slices.Contains(used, f) {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeJSONFiles restricts positional file completion to .json files.
func completeJSONFiles(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}
