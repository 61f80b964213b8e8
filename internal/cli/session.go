package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/beantag/internal/bean"
	"github.com/roach88/beantag/internal/config"
	"github.com/roach88/beantag/internal/store"
	"github.com/roach88/beantag/internal/tagging"
)

// session is the state a data command works against: resolved settings,
// an open store and a tag manager over it.
type session struct {
	cfg    config.Config
	store  *store.Store
	tags   *tagging.Manager
	logger *slog.Logger
	out    *OutputFormatter
}

// loadConfig resolves settings: file, then environment, then flags.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Driver != "" {
		cfg.Driver = opts.Driver
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, opts *RootOptions, cfg config.Config) *slog.Logger {
	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd, opts, cfg)

	st, err := store.Open(cmd.Context(), cfg.Database,
		store.WithDriver(cfg.Driver),
		store.WithLogger(logger),
		store.WithUniqueTagTitles(cfg.UniqueTagTitles),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	logger.Debug("database ready", "path", cfg.Database, "driver", cfg.Driver)

	return &session{
		cfg:    cfg,
		store:  st,
		tags:   tagging.New(st, st, st, tagging.WithLogger(logger)),
		logger: logger,
		out:    newFormatter(cmd, opts),
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// load fetches a stored bean, mapping a miss to a command error.
func (s *session) load(cmd *cobra.Command, typ, id string) (*bean.Bean, error) {
	b, err := s.store.Load(cmd.Context(), typ, id)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidName) {
		return nil, WrapExitError(ExitCommandError, "cannot load bean", err)
	}
	return b, err
}

// parseValue reads a command-line literal: integers, floats and true/false
// keep their type, everything else is a string.
func parseValue(s string) bean.Value {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return bean.Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && strings.ContainsAny(s, "0123456789") {
		return bean.Float(f)
	}
	if s == "true" || s == "false" {
		return bean.Bool(s == "true")
	}
	return bean.String(s)
}

// parseField splits a field=value argument.
func parseField(arg string) (string, bean.Value, error) {
	name, value, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", nil, NewExitError(ExitCommandError, fmt.Sprintf("expected field=value, got %q", arg))
	}
	return name, parseValue(value), nil
}

func parseBindings(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = parseValue(a).Any()
	}
	return out
}

// writeStats dumps the store's metric families in the Prometheus text format.
func writeStats(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "beantag_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
