package cli

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for runtrace.

To load completions:

Bash:
  $ source <(runtrace completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ runtrace completion bash > /etc/bash_completion.d/runtrace
  # macOS:
  $ runtrace completion bash > $(brew --prefix)/etc/bash_completion.d/runtrace

Zsh:
  $ source <(runtrace completion zsh)
  # To load completions for each session, execute once:
  $ runtrace completion zsh > "${fpath[1]}/_runtrace"

Fish:
  $ runtrace completion fish | source
  # To load completions for each session, execute once:
  $ runtrace completion fish > ~/.config/fish/completions/runtrace.fish

PowerShell:
  PS> runtrace completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		}
		return nil
	},
}
