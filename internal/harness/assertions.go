package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/natty/internal/command"
)

// AssertionError describes a failed assertion.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. An empty result means the run passed.
func EvaluateAssertions(result *Result, assertions []Assertion, keys command.KeyResolver) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a, keys); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion, keys command.KeyResolver) error {
	trigger, err := resolveOptional(a.Trigger, keys)
	if err != nil {
		return err
	}
	target, err := resolveOptional(a.Target, keys)
	if err != nil {
		return err
	}

	switch a.Type {
	case AssertDispatchCount:
		return assertDispatchCount(matching(result, trigger, target), a)
	case AssertSpacing:
		return assertSpacing(matching(result, trigger, target), a)
	case AssertActive:
		return assertActive(result, trigger, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func resolveOptional(spec *command.InputSpec, keys command.KeyResolver) (string, error) {
	if spec == nil {
		return "", nil
	}
	in, err := spec.Resolve(keys)
	if err != nil {
		return "", err
	}
	return in.String(), nil
}

// matching returns the dispatches whose trigger and target match the
// non-empty filters.
func matching(result *Result, trigger, target string) []TraceEntry {
	var out []TraceEntry
	for _, e := range result.Dispatches() {
		if trigger != "" && e.Trigger != trigger {
			continue
		}
		if target != "" && e.Target != target {
			continue
		}
		out = append(out, e)
	}
	return out
}

func within(v int64, a Assertion) bool {
	if a.Min != nil && v < *a.Min {
		return false
	}
	if a.Max != nil && v > *a.Max {
		return false
	}
	return true
}

func bounds(a Assertion) string {
	lo, hi := "-inf", "+inf"
	if a.Min != nil {
		lo = fmt.Sprint(*a.Min)
	}
	if a.Max != nil {
		hi = fmt.Sprint(*a.Max)
	}
	return fmt.Sprintf("[%s, %s]", lo, hi)
}

func assertDispatchCount(dispatches []TraceEntry, a Assertion) error {
	n := int64(len(dispatches))
	if within(n, a) {
		return nil
	}
	return &AssertionError{
		Type:     AssertDispatchCount,
		Expected: "count in " + bounds(a),
		Actual:   fmt.Sprint(n),
	}
}

func assertSpacing(dispatches []TraceEntry, a Assertion) error {
	if len(dispatches) < 2 {
		return &AssertionError{
			Type:     AssertSpacing,
			Expected: "at least 2 dispatches",
			Actual:   fmt.Sprint(len(dispatches)),
		}
	}

	var bad []string
	for i := 1; i < len(dispatches); i++ {
		gap := dispatches[i].At - dispatches[i-1].At
		if !within(gap, a) {
			bad = append(bad, fmt.Sprintf("%dms at t=%d", gap, dispatches[i].At))
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertSpacing,
		Expected: "every gap in " + bounds(a),
		Actual:   strings.Join(bad, ", "),
	}
}

func assertActive(result *Result, trigger string, a Assertion) error {
	for _, st := range result.Final {
		if st.Trigger != trigger {
			continue
		}
		if st.Active == *a.Expect {
			return nil
		}
		return &AssertionError{
			Type:     AssertActive,
			Expected: fmt.Sprintf("%s active=%t", trigger, *a.Expect),
			Actual:   fmt.Sprintf("active=%t", st.Active),
		}
	}
	return &AssertionError{
		Type:     AssertActive,
		Expected: fmt.Sprintf("command bound to %s", trigger),
		Actual:   "no such command",
	}
}
