package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/deepwake/sub-engine/internal/config"
	"github.com/deepwake/sub-engine/internal/logging"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "sub-engine",
		Short:         "Submarine motion engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "TOML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(newReplayCmd(a), newRelayCmd(a), newHelmCmd(a))
	return root
}

func (a *app) loadConfig() error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	return nil
}

func (a *app) logger(w io.Writer) *slog.Logger {
	return logging.New(a.cfg.Log, w)
}
