package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/beantag/internal/store"
	"github.com/roach88/beantag/internal/tagging"
)

// TagOptions holds flags for the tag command.
type TagOptions struct {
	*RootOptions
	Add bool // add to the current tags instead of replacing them
}

// NewTagCommand creates the tag command.
func NewTagCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TagOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tag <type> <id> [tags]",
		Short: "Replace (or add to) the tags of a bean",
		Long: `Replace the tags of a bean with a comma-separated list and print the
list as given. An empty string removes every tag. Without a tags
argument the current tags are printed.

Tags that do not exist yet are created.

Examples:
  beantag tag movie 0190... horror,classic
  beantag tag movie 0190... sequel --add
  beantag tag movie 0190... ""`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := tagging.None
			if len(args) == 3 {
				list = tagging.Parse(args[2])
			}
			return runTag(cmd, opts, args[0], args[1], list)
		},
	}

	cmd.Flags().BoolVar(&opts.Add, "add", false, "add to the current tags instead of replacing them")
	return cmd
}

func runTag(cmd *cobra.Command, opts *TagOptions, typ, id string, list tagging.List) error {
	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmd.Context()

	b, err := s.load(cmd, typ, id)
	if err != nil {
		return err
	}

	var titles []string
	err = tagging.RetryConflict(ctx, store.IsConflict, func(ctx context.Context) error {
		if opts.Add {
			if err := s.tags.AddTags(ctx, b, list); err != nil {
				return err
			}
			titles, err = s.tags.Tag(ctx, b, tagging.None)
			return err
		}
		titles, err = s.tags.Tag(ctx, b, list)
		return err
	})
	if err != nil {
		return err
	}
	return s.out.Success(newTagsView(b, titles))
}

// NewUntagCommand creates the untag command.
func NewUntagCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "untag <type> <id> <tags>",
		Short: "Remove tags from a bean",
		Long: `Remove the listed tags from a bean and print the tags that remain.
Tags the bean does not carry are ignored.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmd.Context()

			b, err := s.load(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			if err := s.tags.Untag(ctx, b, tagging.Parse(args[2])); err != nil {
				return err
			}
			titles, err := s.tags.Tag(ctx, b, tagging.None)
			if err != nil {
				return err
			}
			return s.out.Success(newTagsView(b, titles))
		},
	}
}

// NewTagsCommand creates the tags command.
func NewTagsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <type> <id>",
		Short: "Print the tags of a bean",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTag(cmd, &TagOptions{RootOptions: opts}, args[0], args[1], tagging.None)
		},
	}
}

// HasOptions holds flags for the has command.
type HasOptions struct {
	*RootOptions
	All bool
}

// NewHasCommand creates the has command.
func NewHasCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HasOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "has <type> <id> <tags>",
		Short: "Report whether a bean carries any (or all) of the tags",
		Long: `Print true if the bean carries at least one of the comma-separated
tags, or with --all every one of them. An empty list is never matched
by "any" and always matched by --all.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts.RootOptions)
			if err != nil {
				return err
			}
			defer s.Close()

			b, err := s.load(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			has, err := s.tags.HasTag(cmd.Context(), b, tagging.Parse(args[2]), opts.All)
			if err != nil {
				return err
			}
			return s.out.Success(has)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "require every tag")
	return cmd
}
