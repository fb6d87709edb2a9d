package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/natty/internal/command"
)

// Scenario is a scripted run of the engine.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario shows.
	Description string `yaml:"description"`

	// Start is the manual clock's initial wall time in milliseconds.
	// Zero selects DefaultStart.
	Start int64 `yaml:"start,omitempty"`

	// TickMS is the scheduler period used while advancing. Zero selects 1.
	TickMS int64 `yaml:"tick_ms,omitempty"`

	// Rand lists scripted cps draws, used in a cycle and clamped to each
	// command's range. Mutually exclusive with Seed.
	Rand []int `yaml:"rand,omitempty"`

	// Seed selects a seeded uniform source instead of a script.
	Seed []uint64 `yaml:"seed,omitempty"`

	// Fail lists sink targets whose dispatches fail.
	Fail []command.InputSpec `yaml:"fail,omitempty"`

	// Commands are bound exactly as in a config file.
	Commands []command.Binding `yaml:"commands"`

	// Steps drive the engine in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the finished run.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scripted action. Exactly one field is set.
type Step struct {
	Press   *command.InputSpec `yaml:"press,omitempty"`
	Release *command.InputSpec `yaml:"release,omitempty"`

	// Advance moves the clock forward by this many milliseconds, running
	// a scheduler tick every TickMS.
	Advance int64 `yaml:"advance,omitempty"`
}

// Assertion checks one property of a finished run.
type Assertion struct {
	// Type is one of dispatch_count, spacing, active.
	Type string `yaml:"type"`

	// Trigger selects the command (active) or filters dispatches by the
	// command that fired them.
	Trigger *command.InputSpec `yaml:"trigger,omitempty"`

	// Target filters dispatches by synthesized input.
	Target *command.InputSpec `yaml:"target,omitempty"`

	// Min and Max bound the count (dispatch_count) or every gap in
	// milliseconds (spacing). Either may be omitted.
	Min *int64 `yaml:"min,omitempty"`
	Max *int64 `yaml:"max,omitempty"`

	// Expect is the required Active flag (active).
	Expect *bool `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertDispatchCount = "dispatch_count"
	AssertSpacing       = "spacing"
	AssertActive        = "active"
)

// LoadScenario reads and validates a scenario YAML file. Unknown fields
// are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks the scenario's shape. Binding semantics are
// checked later by command.Build.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Commands) == 0 {
		return fmt.Errorf("commands list is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.TickMS < 0 {
		return fmt.Errorf("tick_ms must be non-negative")
	}

	if len(s.Rand) > 0 && len(s.Seed) > 0 {
		return fmt.Errorf("rand and seed are mutually exclusive")
	}
	if len(s.Seed) != 0 && len(s.Seed) != 2 {
		return fmt.Errorf("seed must have exactly two words")
	}

	for i, step := range s.Steps {
		set := 0
		if step.Press != nil {
			set++
		}
		if step.Release != nil {
			set++
		}
		if step.Advance != 0 {
			set++
		}
		if set != 1 {
			return fmt.Errorf("steps[%d]: exactly one of press, release, advance is required", i)
		}
		if step.Advance < 0 {
			return fmt.Errorf("steps[%d]: advance must be positive", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Min != nil && a.Max != nil && *a.Min > *a.Max {
		return fmt.Errorf("assertions[%d]: min must not exceed max", index)
	}

	switch a.Type {
	case AssertDispatchCount:
		if a.Min == nil && a.Max == nil {
			return fmt.Errorf("assertions[%d]: min or max is required for dispatch_count", index)
		}
	case AssertSpacing:
		if a.Min == nil && a.Max == nil {
			return fmt.Errorf("assertions[%d]: min or max is required for spacing", index)
		}
	case AssertActive:
		if a.Trigger == nil {
			return fmt.Errorf("assertions[%d]: trigger is required for active", index)
		}
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for active", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
