package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/beantag/internal/bean"
	"github.com/roach88/beantag/internal/store"
	"github.com/roach88/beantag/internal/tagging"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Tags string // comma-separated tags to add after storing
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <type> [field=value ...]",
		Short: "Store a new bean",
		Long: `Store a new bean of the given type and print it.

Values that parse as integers, floats or true/false are stored with
that type; everything else is stored as text.

Examples:
  beantag add movie title=Alien year=1979
  beantag add movie title=Brazil --tags dystopia,comedy`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, opts, args[0], args[1:])
		},
	}

	cmd.Flags().StringVarP(&opts.Tags, "tags", "t", "", "comma-separated tags to add")
	return cmd
}

func runAdd(cmd *cobra.Command, opts *AddOptions, typ string, fields []string) error {
	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmd.Context()

	b, err := s.store.Dispense(ctx, typ)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot create bean", err)
	}
	for _, arg := range fields {
		name, value, err := parseField(arg)
		if err != nil {
			return err
		}
		b.Set(name, value)
	}
	if err := s.store.Store(ctx, b); err != nil {
		if errors.Is(err, store.ErrInvalidName) {
			return WrapExitError(ExitCommandError, "cannot store bean", err)
		}
		return err
	}
	s.logger.Debug("stored bean", "type", b.Type, "id", b.ID)

	if opts.Tags != "" {
		err := tagging.RetryConflict(ctx, store.IsConflict, func(ctx context.Context) error {
			return s.tags.AddTags(ctx, b, tagging.Parse(opts.Tags))
		})
		if err != nil {
			return err
		}
	}
	return s.out.Success(beanView{b: b})
}

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	SQL      string
	Bindings []string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <type>",
		Short: "List the beans of a type",
		Long: `List every bean of a type, optionally narrowed by a SQL suffix.

Text output streams one bean per line as rows are read.

Examples:
  beantag list movie
  beantag list movie --sql "WHERE year > ? ORDER BY title" --bind 1980`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, args[0])
		},
	}

	addSQLFlags(cmd, &opts.SQL, &opts.Bindings)
	return cmd
}

func addSQLFlags(cmd *cobra.Command, sql *string, bindings *[]string) {
	cmd.Flags().StringVar(sql, "sql", "", "SQL appended to the query (WHERE, ORDER BY, LIMIT)")
	cmd.Flags().StringArrayVar(bindings, "bind", nil, "value for a ? placeholder in --sql (repeatable)")
}

func runList(cmd *cobra.Command, opts *ListOptions, typ string) error {
	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmd.Context()

	coll, err := s.store.FindCollection(ctx, typ, opts.SQL, parseBindings(opts.Bindings)...)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot list beans", err)
	}
	defer coll.Close()

	var beans []*bean.Bean
	for {
		b, err := coll.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if opts.Format == "json" {
			beans = append(beans, b)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), beanView{b: b})
	}

	if opts.Format == "json" {
		return s.out.Success(newBeanList(beans))
	}
	return nil
}

// NewTrashCommand creates the trash command.
func NewTrashCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trash <type> <id>",
		Short: "Delete a bean and its associations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			b, err := s.load(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			trashed := beanView{b: &bean.Bean{Type: b.Type, ID: b.ID, Fields: b.Fields}}
			if err := s.store.Trash(cmd.Context(), b); err != nil {
				return err
			}
			return s.out.Success(trashed)
		},
	}
}
