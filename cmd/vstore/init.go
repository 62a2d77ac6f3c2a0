package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstore/internal/config"
	"github.com/vango-dev/vstore/internal/errors"
)

func initCmd(a *app) *cobra.Command {
	var (
		backend string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a configuration file with the defaults",
		Long: `Write a configuration file with every setting at its default.

The file defaults to vstore.toml; pass vstore.yaml for YAML.

Examples:
  vstore init
  vstore init vstore.yaml --backend sqlite`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileNames[0]
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return errors.New("V040").
					WithDetail(path + " already exists").
					WithSuggestion("Use --force to overwrite it")
			}

			cfg := config.New()
			cfg.Storage.Backend = backend
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.SaveTo(path); err != nil {
				return err
			}

			success(a, "Created %s", filepath.Base(path))
			info(a, "storage.backend = %s", cfg.Storage.Backend)
			fmt.Fprintln(a.errOut)
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", config.DefaultBackend, "Storage backend: memory, file, sqlite, s3 or remote")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}
