package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/beantag/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string // empty means ./beantag.yaml if present
	Database   string // overrides the configured database
	Driver     string // overrides the configured driver
	Stats      bool   // print store metrics to stderr after the command
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidDrivers lists the SQLite drivers the store can open.
var ValidDrivers = []string{store.DriverMattn, store.DriverModernc}

// NewRootCommand creates the root command for the beantag CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "beantag",
		Short: "beantag - tag records in a SQLite bean store",
		Long: `Attach free-form tags to records ("beans") kept in a SQLite file,
and select or count records by tag.

Settings come from ./beantag.yaml (or --config), overridden by BEANTAG_*
environment variables, overridden by --db and --driver.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Driver != "" && !slices.Contains(ValidDrivers, opts.Driver) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid driver %q: must be one of %v", opts.Driver, ValidDrivers))
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Stats {
				return nil
			}
			return writeStats(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./beantag.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "database file, overrides the config")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "sqlite driver (sqlite3|sqlite), overrides the config")
	cmd.PersistentFlags().BoolVar(&opts.Stats, "stats", false, "print store metrics to stderr when done")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewTrashCommand(opts))
	cmd.AddCommand(NewTagCommand(opts))
	cmd.AddCommand(NewUntagCommand(opts))
	cmd.AddCommand(NewTagsCommand(opts))
	cmd.AddCommand(NewHasCommand(opts))
	cmd.AddCommand(NewTaggedCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// Execute runs the CLI with args, reports any error in the selected output
// format and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	format, _ := cmd.PersistentFlags().GetString("format")
	if !slices.Contains(ValidFormats, format) {
		format = "text"
	}
	verbose, _ := cmd.PersistentFlags().GetBool("verbose")
	out := &OutputFormatter{Format: format, Writer: stdout, ErrWriter: stderr, Verbose: verbose}
	if reportErr := out.Report(err); reportErr != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return GetExitCode(err)
}
