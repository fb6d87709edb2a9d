package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/natty/internal/harness"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Filter string
}

// ScenarioOutcome is the result of one scenario file.
type ScenarioOutcome struct {
	File   string          `json:"file"`
	Name   string          `json:"name,omitempty"`
	Pass   bool            `json:"pass"`
	Result *harness.Result `json:"result,omitempty"`
	Errors []string        `json:"errors,omitempty"`
}

// SimulationResult is the outcome of a simulate invocation.
type SimulationResult struct {
	Pass      bool              `json:"pass"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Scenarios []ScenarioOutcome `json:"scenarios"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>...",
		Short: "Run scripted scenarios against the engine",
		Long: `Run one or more YAML scenarios on a manual clock with a recording
output device, print each trace and check the scenario's assertions.

Scenarios are deterministic: the clock only moves on "advance" steps and
click rates come from the scenario's rand or seed.

Examples:
  natty simulate scenarios/toggle.yaml
  natty simulate scenarios/*.yaml --format json
  natty simulate scenarios/*.yaml --filter toggle`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose name contains this string")

	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command, files []string) error {
	result := SimulationResult{Pass: true, Scenarios: []ScenarioOutcome{}}

	for _, file := range files {
		outcome, skip, err := simulateFile(file, opts.Filter)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		if outcome.Pass {
			result.Passed++
		} else {
			result.Failed++
			result.Pass = false
		}
		result.Scenarios = append(result.Scenarios, outcome)
	}

	if opts.Format == "json" {
		f := newFormatter(opts.RootOptions, cmd)
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		outputSimulationText(cmd, result)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// simulateFile loads and runs one scenario. Unreadable files are command
// errors; a scenario that cannot start counts as a failed scenario.
func simulateFile(file, filter string) (ScenarioOutcome, bool, error) {
	outcome := ScenarioOutcome{File: file}

	s, err := harness.LoadScenario(file)
	if err != nil {
		return outcome, false, WrapExitError(ExitCommandError, "failed to load scenario "+file, err)
	}
	outcome.Name = s.Name
	if filter != "" && !strings.Contains(s.Name, filter) {
		return outcome, true, nil
	}

	res, err := harness.Run(s)
	if err != nil {
		outcome.Errors = []string{err.Error()}
		return outcome, false, nil
	}

	outcome.Result = res
	outcome.Pass = res.Pass
	outcome.Errors = res.Errors
	return outcome, false, nil
}

func outputSimulationText(cmd *cobra.Command, result SimulationResult) {
	w := cmd.OutOrStdout()

	for _, sc := range result.Scenarios {
		name := sc.Name
		if name == "" {
			name = filepath.Base(sc.File)
		}
		if sc.Result != nil {
			w.Write(harness.FormatTrace(name, sc.Result))
		} else {
			fmt.Fprintf(w, "# %s\n", name)
		}
		for _, e := range sc.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		if sc.Pass {
			fmt.Fprintf(w, "PASS %s\n\n", name)
		} else {
			fmt.Fprintf(w, "FAIL %s\n\n", name)
		}
	}

	fmt.Fprintf(w, "%d passed, %d failed\n", result.Passed, result.Failed)
}
