package cli

import (
	"os"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leengari/memstore/internal/repl"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	var historyFile string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start the admin shell",
		Long: `Start an interactive shell over an in-process store. When stdin is not a
terminal the commands are read line by line, e.g.

  memstore repl < script.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := GetConfig(cmd.Context())

			eng, err := openEngine(cfg)
			if err != nil {
				return err
			}

			shell := repl.NewShell(eng, cmd.OutOrStdout())
			if readline.IsTerminal(int(os.Stdin.Fd())) {
				err = shell.Start(historyFile)
			} else {
				err = shell.Run(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			return saveOnExit(cfg, eng)
		},
	}

	cmd.Flags().StringVar(&historyFile, "history", ".memstore_history", "Shell history file (empty disables history)")

	return cmd
}
