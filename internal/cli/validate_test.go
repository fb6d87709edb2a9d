package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testdataConfig = filepath.Join("..", "config", "testdata", "Natty.toml")

const invalidConfig = `
[[commands]]
method = "Hold"
listen = { type = "Key", value = "a" }
action = { type = "Button", value = "Left" }
range = { min = 10, max = 5 }

[[commands]]
method = "Toggle"
listen = { type = "Key", value = "notakey" }
action = { type = "Key", value = "b" }
`

func TestValidateValidConfig(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", testdataConfig})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Natty.toml: 3 command(s)")
	assert.Contains(t, output, "button-click button:left @ 5-10 cps")
	assert.Contains(t, output, "key-click key:space @ 12-16 cps")
	assert.Contains(t, output, "key-press key:enter")
	assert.NotContains(t, output, "key:enter @")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "validate_text", buf.Bytes())
}

func TestValidateValidConfigJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-c", testdataConfig})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Commands, 3)

	// Sorted by trigger.
	assert.Equal(t, "button:forward", resp.Data.Commands[0].Trigger)
	assert.Equal(t, CommandView{
		Trigger: "button:left",
		Method:  "Hold",
		Action:  "button-click",
		Target:  "button:left",
		MinCPS:  5,
		MaxCPS:  10,
	}, resp.Data.Commands[1])
	assert.Equal(t, "Toggle", resp.Data.Commands[2].Method)
}

func TestValidateReportsEveryError(t *testing.T) {
	path := writeConfig(t, "Natty.toml", invalidConfig)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 configuration error(s)")

	output := buf.String()
	assert.Contains(t, output, "invalid configuration")
	assert.Contains(t, output, "[E203] commands[0].range")
	assert.Contains(t, output, "[E201] commands[1].listen.value")
}

func TestValidateInvalidConfigJSON(t *testing.T) {
	path := writeConfig(t, "Natty.toml", invalidConfig)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", path})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E203", resp.Error.Code)
}

func TestValidateSchemaViolation(t *testing.T) {
	path := writeConfig(t, "Natty.toml", `
[general]
tick_ms = 5000

[[commands]]
method = "Hold"
listen = { type = "Key", value = "a" }
action = { type = "Key", value = "b" }
`)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "[E005]")
	assert.Contains(t, buf.String(), "general.tick_ms")
}

func TestValidateMissingFile(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", "/nonexistent/Natty.toml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "[E002]")
	assert.Contains(t, buf.String(), "config file not found")
}

func TestValidateYAML(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", filepath.Join("..", "config", "testdata", "natty.yaml")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "1 command(s)")
	assert.Contains(t, buf.String(), "key:f8")
}
