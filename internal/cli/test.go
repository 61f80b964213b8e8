package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/beantag/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern on the file name)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios>...",
		Short: "Run tagging scenarios",
		Long: `Run YAML tagging scenarios, each against a fresh in-memory database.

Each argument is a scenario file or a directory searched for .yaml and
.yml files.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  beantag test ./scenarios
  beantag test ./scenarios --filter "tag_*"
  beantag test ./scenarios --driver sqlite --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	return cmd
}

func runTests(cmd *cobra.Command, opts *TestOptions, paths []string) error {
	files, err := findScenarioFiles(paths, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, opts.RootOptions, cfg)
	out := newFormatter(cmd, opts.RootOptions)

	out.VerboseLog("running %d scenarios on %s", len(files), cfg.Driver)
	result := harness.RunSuite(cmd.Context(), files,
		harness.WithDriver(cfg.Driver),
		harness.WithLogger(logger),
	)

	if opts.Format == "json" {
		if err := out.Success(result); err != nil {
			return err
		}
	} else {
		writeSuiteText(cmd, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

// findScenarioFiles expands every path and keeps the files whose name,
// without extension, matches filter.
func findScenarioFiles(paths []string, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	for _, p := range paths {
		found, err := harness.FindScenarios(p)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			base := filepath.Base(f)
			name := strings.TrimSuffix(base, filepath.Ext(base))
			if filter != "" {
				if ok, _ := filepath.Match(filter, name); !ok {
					continue
				}
			}
			files = append(files, f)
		}
	}
	return files, nil
}

func writeSuiteText(cmd *cobra.Command, result *harness.SuiteResult) {
	w := cmd.OutOrStdout()
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	for _, f := range result.Failures {
		name := f.Scenario
		if name == "" {
			name = filepath.Base(f.Path)
		}
		fmt.Fprintf(w, "✗ %s\n", name)
		for _, e := range f.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
