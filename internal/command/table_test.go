package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lowerKeys accepts a small fixed set of key names, case-insensitively.
type lowerKeys map[string]bool

func (k lowerKeys) Canonical(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	return name, k[name]
}

var testKeys = lowerKeys{"a": true, "b": true, "z": true, "space": true}

func keyBinding(listen, action, method string, rate *Rate) Binding {
	return Binding{
		Listen: InputSpec{Type: "Key", Value: listen},
		Action: InputSpec{Type: "Key", Value: action},
		Method: method,
		Range:  rate,
	}
}

func TestBuildValidTable(t *testing.T) {
	bindings := []Binding{
		{
			Listen: InputSpec{Type: "Button", Value: "Left"},
			Action: InputSpec{Type: "Button", Value: "Left"},
			Method: "Hold",
		},
		keyBinding("A", "b", "Toggle", &Rate{Min: 5, Max: 10}),
	}

	table, err := Build(bindings, testKeys)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	left, ok := table.Get(ButtonInput(ButtonLeft))
	require.True(t, ok)
	assert.Equal(t, ActionButtonPress, left.Action.Kind)
	assert.Equal(t, MethodHold, left.Method)
	assert.Zero(t, left.NextCPS)
	assert.False(t, left.Active)

	a, ok := table.Get(KeyInput("a"))
	require.True(t, ok)
	assert.Equal(t, ActionKeyClick, a.Action.Kind)
	assert.Equal(t, KeyInput("b"), a.Action.Target)
	assert.Equal(t, MethodToggle, a.Method)
	assert.Equal(t, 5, a.NextCPS, "first interval is seeded with min cps")
	assert.Zero(t, a.LastFiredAt)
}

func TestBuildRejectsInvertedRange(t *testing.T) {
	_, err := Build([]Binding{keyBinding("a", "a", "Hold", &Rate{Min: 10, Max: 5})}, testKeys)
	require.Error(t, err)
	require.True(t, IsConfigError(err))

	errs := ConfigErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeInvalidRange, errs[0].Code)
	assert.Equal(t, "commands[0].range", errs[0].Field)
}

func TestBuildRejectsNonPositiveRange(t *testing.T) {
	_, err := Build([]Binding{keyBinding("a", "a", "Hold", &Rate{Min: 0, Max: 5})}, testKeys)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidRange, ConfigErrors(err)[0].Code)
}

func TestBuildRejectsDuplicateTrigger(t *testing.T) {
	bindings := []Binding{
		keyBinding("a", "b", "Hold", nil),
		keyBinding(" A ", "z", "Toggle", nil),
	}

	_, err := Build(bindings, testKeys)
	require.Error(t, err)

	errs := ConfigErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeDuplicateTrigger, errs[0].Code)
	assert.Contains(t, errs[0].Message, "commands[0]")
}

func TestBuildCollectsAllErrors(t *testing.T) {
	bindings := []Binding{
		keyBinding("nosuchkey", "a", "Hold", nil),
		{
			Listen: InputSpec{Type: "Button", Value: "Sideways"},
			Action: InputSpec{Type: "Key", Value: "a"},
			Method: "Hold",
		},
		keyBinding("b", "a", "Sometimes", nil),
		{
			Listen: InputSpec{Type: "Pedal", Value: "x"},
			Action: InputSpec{Type: "Key", Value: "a"},
			Method: "Hold",
		},
	}

	_, err := Build(bindings, testKeys)
	require.Error(t, err)

	var codes []string
	for _, ce := range ConfigErrors(err) {
		codes = append(codes, ce.Code)
	}
	assert.Equal(t, []string{
		ErrCodeUnknownKey,
		ErrCodeUnknownButton,
		ErrCodeInvalidMethod,
		ErrCodeInvalidType,
	}, codes)
}

func TestBuildRejectsEmpty(t *testing.T) {
	_, err := Build(nil, testKeys)
	require.Error(t, err)
	assert.Equal(t, ErrCodeEmpty, ConfigErrors(err)[0].Code)
}

func TestTriggersAreUnique(t *testing.T) {
	bindings := []Binding{
		keyBinding("a", "a", "Hold", nil),
		keyBinding("b", "a", "Hold", nil),
		keyBinding("z", "a", "Toggle", &Rate{Min: 1, Max: 1}),
		{Listen: InputSpec{Type: "Button", Value: "R"}, Action: InputSpec{Type: "Key", Value: "a"}, Method: "Hold"},
	}

	table, err := Build(bindings, testKeys)
	require.NoError(t, err)

	seen := map[Input]bool{}
	for c := range table.All() {
		assert.False(t, seen[c.Trigger], "trigger %s seen twice", c.Trigger)
		seen[c.Trigger] = true
	}
	assert.Len(t, seen, 4)
}

func TestAllAllowsInPlaceMutation(t *testing.T) {
	table, err := Build([]Binding{keyBinding("a", "a", "Hold", nil)}, testKeys)
	require.NoError(t, err)

	for c := range table.All() {
		c.SetActive(true)
	}

	c, _ := table.Get(KeyInput("a"))
	assert.True(t, c.Active)
}

func TestSnapshotIsSortedCopy(t *testing.T) {
	table, err := Build([]Binding{
		keyBinding("z", "a", "Hold", nil),
		keyBinding("a", "a", "Hold", nil),
	}, testKeys)
	require.NoError(t, err)

	snap := table.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, KeyInput("a"), snap[0].Trigger)
	assert.Equal(t, KeyInput("z"), snap[1].Trigger)

	snap[0].Active = true
	c, _ := table.Get(KeyInput("a"))
	assert.False(t, c.Active, "snapshot must not alias table state")
}
