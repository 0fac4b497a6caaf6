// Package cli provides the command-line interface for memstore.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leengari/memstore/internal/config"
	"github.com/leengari/memstore/internal/engine"
	"github.com/leengari/memstore/internal/logging"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates the root command. The returned cleanup func flushes and
// closes the log handlers set up by the command that ran.
func NewRootCmd() (*cobra.Command, func()) {
	var cfgFile string
	closeLogs := func() {}

	rootCmd := &cobra.Command{
		Use:   "memstore",
		Short: "memstore - in-memory typed record store",
		Long: `memstore keeps databases of typed tables in memory, with secondary
indexes, OR-of-AND queries and whole-store JSON snapshots.

Run it as an HTTP service (serve) or drive it from the admin shell (repl).`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger, closeFn, err := logging.SetupLogger(logging.Options{
				Level:  cfg.Log.Level,
				SeqURL: cfg.Log.SeqURL,
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			closeLogs = closeFn
			slog.SetDefault(logger)

			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./memstore.yaml)")
	rootCmd.PersistentFlags().String("snapshot", "", "Snapshot file used by save/load")
	rootCmd.PersistentFlags().Bool("load-on-start", false, "Load the snapshot before serving")
	rootCmd.PersistentFlags().Bool("save-on-exit", false, "Save the snapshot on shutdown")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("seq-url", "", "Seq ingestion URL; empty disables Seq")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewVersionCommand(Version))
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewReplCommand())
	rootCmd.AddCommand(NewInspectCommand())

	return rootCmd, func() { closeLogs() }
}

// Execute runs the root command.
func Execute() error {
	rootCmd, cleanup := NewRootCmd()
	defer cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		SnapshotPath: config.DefaultSnapshotPath,
		HTTP: config.HTTPConfig{
			Addr:            config.DefaultHTTPAddr,
			ShutdownTimeout: config.DefaultShutdownTimeout,
		},
		Log: config.LogConfig{Level: config.DefaultLogLevel},
	}
}

// openEngine creates the engine for cfg and, when load_on_start is set,
// loads the snapshot. A snapshot that does not exist yet is not an error.
func openEngine(cfg *config.Config) (*engine.Engine, error) {
	eng := engine.New(nil, engine.Options{
		SnapshotPath: cfg.SnapshotPath,
		Indexes:      cfg.Indexes,
	})
	eng.AddObserver(engine.NewLoggingObserver())

	if !cfg.LoadOnStart {
		return eng, nil
	}

	path, err := eng.Load("")
	switch {
	case err == nil:
		slog.Info("snapshot loaded", "path", path, "databases", len(eng.ListDatabases()))
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("no snapshot yet, starting empty", "path", path)
	default:
		return nil, fmt.Errorf("failed to load snapshot %s: %w", path, err)
	}
	return eng, nil
}

// saveOnExit writes the snapshot when save_on_exit is set
func saveOnExit(cfg *config.Config, eng *engine.Engine) error {
	if !cfg.SaveOnExit {
		return nil
	}
	slog.Info("shutting down - saving snapshot...")
	path, err := eng.Save("")
	if err != nil {
		return fmt.Errorf("shutdown save failed: %w", err)
	}
	slog.Info("snapshot saved", "path", path)
	return nil
}
