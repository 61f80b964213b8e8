package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/beantag/internal/bean"
	"github.com/roach88/beantag/internal/observer"
	"github.com/roach88/beantag/internal/store"
	"github.com/roach88/beantag/internal/tagging"
)

// tracedEvents are the store events recorded in the trace.
var tracedEvents = []string{"after_update", "associate", "unassociate", "after_delete"}

// Harness runs one scenario against a fresh in-memory store.
type Harness struct {
	store   *store.Store
	manager *tagging.Manager
	logger  *slog.Logger
	result  *Result

	refs  map[string]*bean.Bean // scenario ref -> bean
	names map[string]string     // bean id -> scenario ref

	seq     int
	pending string // ref for the next id handed out
}

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	driver string
	logger *slog.Logger
}

// WithDriver runs scenarios on the given SQLite driver.
func WithDriver(driver string) Option {
	return func(c *runConfig) {
		c.driver = driver
	}
}

// WithLogger sets the logger for step records. Scenario runs are silent by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. Step failures and
// unmet expectations are reported in the result; the returned error is
// reserved for setup failures.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		driver: store.DriverMattn,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Harness{
		logger: cfg.logger,
		result: NewResult(),
		refs:   make(map[string]*bean.Bean),
		names:  make(map[string]string),
	}

	st, err := store.Open(ctx, ":memory:",
		store.WithDriver(cfg.driver),
		store.WithLogger(cfg.logger),
		store.WithIDGenerator(h.nextID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h.store = st
	h.manager = tagging.New(st, st, st, tagging.WithLogger(cfg.logger))
	st.Observers().Register(observer.Func(h.recordEvent), tracedEvents...)

	if err := h.executeSetup(ctx, scenario.Beans); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	h.executeSteps(ctx, scenario.Steps)

	for _, msg := range EvaluateAssertions(ctx, st.DB(), h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

// nextID hands out sequential ids so traces and default result order are
// reproducible. The id is named after the pending setup ref, if any.
func (h *Harness) nextID() string {
	h.seq++
	id := fmt.Sprintf("id-%04d", h.seq)
	if h.pending != "" {
		h.names[id] = h.pending
		h.pending = ""
	}
	return id
}

// recordEvent appends a store event to the trace.
func (h *Harness) recordEvent(_ context.Context, event string, payload any) error {
	var subject string
	switch p := payload.(type) {
	case *bean.Bean:
		subject = h.describe(p)
	case store.Association:
		subject = h.describe(p.From) + "~" + h.describe(p.To)
	}
	h.result.AddEventTrace(event, subject)
	return nil
}

// describe names a bean by its scenario ref, falling back to type:title.
func (h *Harness) describe(b *bean.Bean) string {
	if ref, ok := h.names[b.ID]; ok && b.ID != "" {
		return ref
	}
	return b.Type + ":" + b.String("title")
}

// executeSetup stores the declared beans in order.
func (h *Harness) executeSetup(ctx context.Context, specs []BeanSpec) error {
	for i, spec := range specs {
		b := bean.New(spec.Type)
		for _, field := range sortedKeys(spec.Fields) {
			v, err := bean.FromAny(spec.Fields[field])
			if err != nil {
				return fmt.Errorf("bean %q field %s: %w", spec.Ref, field, err)
			}
			b.Set(field, v)
		}

		h.refs[spec.Ref] = b
		h.result.AddStepTrace("store", spec.Ref, "", "", nil, nil)
		h.pending = spec.Ref
		err := h.store.Store(ctx, b)
		h.pending = ""
		if err != nil {
			return fmt.Errorf("bean %q: %w", spec.Ref, err)
		}
		h.logger.Info("setup bean stored", "index", i, "ref", spec.Ref, "id", b.ID)
	}
	return nil
}

// executeSteps runs every step, recording outcomes and checking expects.
func (h *Harness) executeSteps(ctx context.Context, steps []Step) {
	for i, step := range steps {
		result, err := h.execute(ctx, step)
		h.result.AddStepTrace(step.Op, step.Bean, step.Type, step.Tags.String(), result, err)

		for _, msg := range checkExpect(step, result, err) {
			h.result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Op, msg))
		}

		h.logger.Info("step completed",
			"step", i,
			"op", step.Op,
			"error", err,
		)
	}
}

// execute runs one step through the tag engine. Results are []string for
// title and bean listings, bool for has_tag and int for counts.
func (h *Harness) execute(ctx context.Context, step Step) (any, error) {
	m := h.manager
	b := h.refs[step.Bean]
	list := step.Tags.List

	switch step.Op {
	case OpAddTags:
		return nil, tagging.RetryConflict(ctx, store.IsConflict, func(ctx context.Context) error {
			return m.AddTags(ctx, b, list)
		})
	case OpTag:
		var titles []string
		err := tagging.RetryConflict(ctx, store.IsConflict, func(ctx context.Context) error {
			var err error
			titles, err = m.Tag(ctx, b, list)
			return err
		})
		return titles, err
	case OpTags:
		return m.Tag(ctx, b, tagging.None)
	case OpUntag:
		return nil, m.Untag(ctx, b, list)
	case OpHasTag:
		return m.HasTag(ctx, b, list, step.MatchAll)
	case OpTagged, OpTaggedAll:
		query := m.Tagged
		if step.Op == OpTaggedAll {
			query = m.TaggedAll
		}
		beans, err := query(ctx, step.Type, list, step.SQL, step.Bindings...)
		if err != nil {
			return nil, err
		}
		refs := make([]string, len(beans))
		for i, found := range beans {
			refs[i] = h.describe(found)
		}
		return refs, nil
	case OpCount:
		return m.CountTagged(ctx, step.Type, list, step.SQL, step.Bindings...)
	case OpCountAll:
		return m.CountTaggedAll(ctx, step.Type, list, step.SQL, step.Bindings...)
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

// checkExpect compares a step outcome with its expect clause.
func checkExpect(step Step, result any, err error) []string {
	exp := step.Expect
	if exp == nil || exp.Error == "" {
		if err != nil {
			return []string{fmt.Sprintf("unexpected error: %v", err)}
		}
	}
	if exp == nil {
		return nil
	}

	var msgs []string
	if exp.Error != "" {
		switch {
		case err == nil:
			msgs = append(msgs, fmt.Sprintf("expected error containing %q, got success", exp.Error))
		case !strings.Contains(err.Error(), exp.Error):
			msgs = append(msgs, fmt.Sprintf("expected error containing %q, got %q", exp.Error, err))
		}
		return msgs
	}

	listing, _ := result.([]string)
	if exp.Tags != nil && !slices.Equal(exp.Tags, listing) {
		msgs = append(msgs, fmt.Sprintf("tags: expected %q, got %q", exp.Tags, listing))
	}
	if exp.Beans != nil && !slices.Equal(exp.Beans, listing) {
		msgs = append(msgs, fmt.Sprintf("beans: expected %q, got %q", exp.Beans, listing))
	}
	if exp.Has != nil {
		if got, _ := result.(bool); got != *exp.Has {
			msgs = append(msgs, fmt.Sprintf("has: expected %v, got %v", *exp.Has, got))
		}
	}
	if exp.Count != nil {
		if got, _ := result.(int); got != *exp.Count {
			msgs = append(msgs, fmt.Sprintf("count: expected %d, got %d", *exp.Count, got))
		}
	}
	return msgs
}
