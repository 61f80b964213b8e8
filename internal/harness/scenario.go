package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/beantag/internal/queryir"
	"github.com/roach88/beantag/internal/tagging"
)

// Scenario is a scripted tagging session with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Beans are stored before the first step, in order.
	Beans []BeanSpec `yaml:"beans,omitempty"`

	// Steps run against the tag engine in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and database state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// BeanSpec declares a bean stored during setup.
type BeanSpec struct {
	// Ref is the name steps use to refer to the bean.
	Ref    string         `yaml:"ref"`
	Type   string         `yaml:"type"`
	Fields map[string]any `yaml:"fields,omitempty"`
}

// Step operations.
const (
	OpAddTags   = "add_tags"
	OpTag       = "tag"
	OpTags      = "tags"
	OpUntag     = "untag"
	OpHasTag    = "has_tag"
	OpTagged    = "tagged"
	OpTaggedAll = "tagged_all"
	OpCount     = "count"
	OpCountAll  = "count_all"
)

// beanOps operate on a single bean; the rest select by type.
var beanOps = map[string]bool{
	OpAddTags: true,
	OpTag:     true,
	OpTags:    true,
	OpUntag:   true,
	OpHasTag:  true,
}

var typeOps = map[string]bool{
	OpTagged:    true,
	OpTaggedAll: true,
	OpCount:     true,
	OpCountAll:  true,
}

// Step is one tag engine call.
type Step struct {
	Op string `yaml:"op"`

	// Bean is the ref of the target bean (bean operations).
	Bean string `yaml:"bean,omitempty"`

	// Type is the bean type to select (tagged and count operations).
	Type string `yaml:"type,omitempty"`

	Tags     Tags   `yaml:"tags,omitempty"`
	MatchAll bool   `yaml:"match_all,omitempty"`
	SQL      string `yaml:"sql,omitempty"`
	Bindings []any  `yaml:"bindings,omitempty"`

	// Expect is checked against the step outcome. Nil checks nothing
	// beyond the step succeeding.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Tags is a tag list as written in YAML: a comma-separated string, a
// sequence of titles, or absent for None.
type Tags struct {
	List tagging.List
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Tags) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			t.List = tagging.None
			return nil
		}
		t.List = tagging.Parse(node.Value)
	case yaml.SequenceNode:
		var titles []string
		if err := node.Decode(&titles); err != nil {
			return err
		}
		t.List = tagging.Titles(titles...)
	default:
		return fmt.Errorf("line %d: tags must be a string or a list of strings", node.Line)
	}
	return nil
}

// String renders the list for the trace.
func (t Tags) String() string {
	if t.List.IsNone() {
		return "<none>"
	}
	return t.List.String()
}

// Expect is what a step must produce. Unset fields are not checked.
type Expect struct {
	// Tags is the exact title sequence returned by tag and tags.
	Tags []string `yaml:"tags,omitempty"`

	// Beans is the exact sequence of refs returned by tagged and tagged_all.
	// Beans without a ref render as "type:title".
	Beans []string `yaml:"beans,omitempty"`

	Has   *bool `yaml:"has,omitempty"`
	Count *int  `yaml:"count,omitempty"`

	// Error is a substring the step's error must contain.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace or the final database state.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, final_state,
	// row_count.
	Type string `yaml:"type"`

	// Op names a step operation or store event (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Bean narrows trace_contains to one bean ref or event subject.
	Bean string `yaml:"bean,omitempty"`

	// Count is the expected number of trace entries or rows.
	Count int `yaml:"count,omitempty"`

	// Ops is the expected step order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Table is the table to query (final_state, row_count).
	Table string `yaml:"table,omitempty"`

	// Where filters the rows by exact field values.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect holds field values the single matching row must carry.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion types.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertRowCount      = "row_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	refs := make(map[string]bool, len(s.Beans))
	for i, b := range s.Beans {
		if b.Ref == "" {
			return fmt.Errorf("beans[%d]: ref is required", i)
		}
		if refs[b.Ref] {
			return fmt.Errorf("beans[%d]: duplicate ref %q", i, b.Ref)
		}
		refs[b.Ref] = true
		if !queryir.IsIdent(b.Type) {
			return fmt.Errorf("beans[%d]: invalid type %q", i, b.Type)
		}
	}

	for i, step := range s.Steps {
		switch {
		case beanOps[step.Op]:
			if !refs[step.Bean] {
				return fmt.Errorf("steps[%d]: %s needs a declared bean, got %q", i, step.Op, step.Bean)
			}
		case typeOps[step.Op]:
			if step.Type == "" {
				return fmt.Errorf("steps[%d]: %s needs a type", i, step.Op)
			}
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertRowCount:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for row_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
