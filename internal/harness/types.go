package harness

// Trace event kinds.
const (
	KindStep  = "step"
	KindEvent = "event"
)

// TraceEvent is one entry of a scenario trace: either a step the scenario
// ran or a store event observed while it ran.
type TraceEvent struct {
	Seq  int    `json:"seq"`
	Kind string `json:"kind"`

	// Op is the step operation or the store event name.
	Op string `json:"op"`

	// Bean is the ref of the bean a step targets, or the subject of an
	// event ("alien", "tag:horror", "alien~tag:horror").
	Bean string `json:"bean,omitempty"`

	// Type is the bean type a query step selects.
	Type string `json:"type,omitempty"`

	// Tags is the step's tag list as given, "<none>" when absent.
	Tags string `json:"tags,omitempty"`

	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed expectation. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) add(ev TraceEvent) {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}

// AddStepTrace appends a step to the trace.
func (r *Result) AddStepTrace(op, bean, typ, tags string, result any, err error) {
	ev := TraceEvent{Kind: KindStep, Op: op, Bean: bean, Type: typ, Tags: tags, Result: result}
	if err != nil {
		ev.Error = err.Error()
	}
	r.add(ev)
}

// AddEventTrace appends an observed store event to the trace.
func (r *Result) AddEventTrace(event, subject string) {
	r.add(TraceEvent{Kind: KindEvent, Op: event, Bean: subject})
}
