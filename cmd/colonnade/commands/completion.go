package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a shell completion script for colonnade.

Bash:
  $ colonnade completion bash > /etc/bash_completion.d/colonnade

Zsh:
  $ colonnade completion zsh > "${fpath[1]}/_colonnade"
  # Requires compinit; run once if completions are not already enabled:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

Fish:
  $ colonnade completion fish > ~/.config/fish/completions/colonnade.fish

PowerShell:
  PS> colonnade completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func runCompletion(cmd *cobra.Command, args []string) error {
	root := cmd.Root()
	switch args[0] {
	case "bash":
		return root.GenBashCompletion(os.Stdout)
	case "zsh":
		return root.GenZshCompletion(os.Stdout)
	case "fish":
		return root.GenFishCompletion(os.Stdout, true)
	default:
		return root.GenPowerShellCompletionWithDesc(os.Stdout)
	}
}
