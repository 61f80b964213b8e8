package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/beantag/internal/tagging"
)

// QueryOptions holds flags shared by tagged and count.
type QueryOptions struct {
	*RootOptions
	All      bool
	SQL      string
	Bindings []string
}

// NewTaggedCommand creates the tagged command.
func NewTaggedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tagged <type> <tags>",
		Short: "List the beans carrying any (or all) of the tags",
		Long: `List the beans of a type that carry at least one of the comma-separated
tags, or with --all every one of them. --sql is appended to the query
and may refer to the type's columns as <type>.<column>.

Examples:
  beantag tagged movie horror,comedy
  beantag tagged movie horror,classic --all
  beantag tagged movie horror --sql "ORDER BY movie.year DESC LIMIT ?" --bind 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts.RootOptions)
			if err != nil {
				return err
			}
			defer s.Close()

			find := s.tags.Tagged
			if opts.All {
				find = s.tags.TaggedAll
			}
			beans, err := find(cmd.Context(), args[0], tagging.Parse(args[1]), opts.SQL, parseBindings(opts.Bindings)...)
			if err != nil {
				return WrapExitError(ExitCommandError, "tagged query failed", err)
			}
			return s.out.Success(newBeanList(beans))
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "require every tag")
	addSQLFlags(cmd, &opts.SQL, &opts.Bindings)
	return cmd
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count <type> <tags>",
		Short: "Count the beans carrying any (or all) of the tags",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts.RootOptions)
			if err != nil {
				return err
			}
			defer s.Close()

			count := s.tags.CountTagged
			if opts.All {
				count = s.tags.CountTaggedAll
			}
			n, err := count(cmd.Context(), args[0], tagging.Parse(args[1]), opts.SQL, parseBindings(opts.Bindings)...)
			if err != nil {
				return WrapExitError(ExitCommandError, "count query failed", err)
			}
			return s.out.Success(n)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "require every tag")
	addSQLFlags(cmd, &opts.SQL, &opts.Bindings)
	return cmd
}
