package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioPath(name string) string {
	return filepath.Join("..", "harness", "testdata", "scenarios", name+".yaml")
}

func TestSimulatePassingScenario(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSimulateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{scenarioPath("toggle_click_repeat")})

	require.NoError(t, cmd.Execute())

	golden, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "golden", "toggle_click_repeat.golden"))
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, string(golden))
	assert.Contains(t, output, "PASS toggle_click_repeat")
	assert.Contains(t, output, "1 passed, 0 failed")
}

func TestSimulateFailingScenario(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSimulateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{scenarioPath("hold_press_once"), scenarioPath("inverted_range")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 scenario(s) failed")

	output := buf.String()
	assert.Contains(t, output, "PASS hold_press_once")
	assert.Contains(t, output, "FAIL inverted_range")
	assert.Contains(t, output, "E203")
	assert.Contains(t, output, "1 passed, 1 failed")
}

func TestSimulateJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSimulateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{scenarioPath("sink_failure")})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string           `json:"status"`
		Data   SimulationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Pass)
	require.Len(t, resp.Data.Scenarios, 1)

	sc := resp.Data.Scenarios[0]
	assert.Equal(t, "sink_failure", sc.Name)
	require.NotNil(t, sc.Result)
	assert.NotEmpty(t, sc.Result.Dispatches())
}

func TestSimulateFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSimulateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--filter", "toggle", scenarioPath("hold_press_once"), scenarioPath("toggle_click_repeat")})

	require.NoError(t, cmd.Execute())
	assert.NotContains(t, buf.String(), "hold_press_once")
	assert.Contains(t, buf.String(), "1 passed, 0 failed")
}

func TestSimulateMissingFile(t *testing.T) {
	cmd := NewSimulateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSimulateRequiresArgs(t *testing.T) {
	cmd := NewSimulateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.Error(t, cmd.Execute())
}
