package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/config"
	"github.com/vango-dev/vstore/internal/errors"
)

// skipConfig marks commands that run without loading configuration.
const skipConfig = "vstore/skip-config"

// app is the state shared by every command.
type app struct {
	configPath  string
	logLevel    string
	errorFormat string

	cfg    *config.Config
	logger *slog.Logger

	out    io.Writer
	errOut io.Writer
}

func newApp() *app {
	return &app{out: os.Stdout, errOut: os.Stderr}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vstore",
		Short: "Inspect and serve persisted vstore state",
		Long: `vstore reads and writes the state that persisted stores keep in a
storage backend.

The backend comes from vstore.toml or vstore.yaml in the working directory,
or from the file given with --config:

  • memory, file, sqlite, s3 or remote (another 'vstore serve')
  • values encoded as json, yaml, toml or text
  • 'vstore serve' exposes any backend over HTTP with Prometheus metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := checkErrorFormat(a.errorFormat); err != nil {
				return err
			}
			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			return a.load()
		},
	}

	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Configuration file (default: vstore.toml or vstore.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log_level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&a.errorFormat, "error-format", errors.OutputText, "Error output: text, compact or json")

	rootCmd.AddCommand(
		getCmd(a),
		setCmd(a),
		rmCmd(a),
		incrCmd(a),
		watchCmd(a),
		serveCmd(a),
		initCmd(a),
		versionCmd(a),
		errorsCmd(a),
	)
	return rootCmd
}

// load reads the configuration and builds the logger.
func (a *app) load() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFile(a.configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return errors.FromError(err, "V040").WithSuggestion("--log-level takes debug, info, warn or error")
		}
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	a.logger.Debug("configuration loaded", "path", cfg.Path(), "backend", cfg.Storage.Backend)
	return nil
}
