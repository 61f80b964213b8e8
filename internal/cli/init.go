package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/beantag/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a beantag.yaml with the default settings",
		Long: `Write a config file (./beantag.yaml, or --config) holding the default
settings, with --db and --driver applied. An existing file is left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.ConfigPath
			if path == "" {
				path = config.FileName
			}

			cfg := config.Default()
			if opts.Database != "" {
				cfg.Database = opts.Database
			}
			if opts.Driver != "" {
				cfg.Driver = opts.Driver
			}

			if err := config.WriteFile(path, cfg); err != nil {
				if errors.Is(err, config.ErrExists) {
					return WrapExitError(ExitCommandError, fmt.Sprintf("%s already exists", path), err)
				}
				return WrapExitError(ExitCommandError, "cannot write config", err)
			}

			out := newFormatter(cmd, opts)
			if opts.Format == "json" {
				return out.Success(map[string]any{"path": path, "config": cfg})
			}
			return out.Success("wrote " + path)
		},
	}
}
