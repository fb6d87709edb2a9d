package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/natty/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal string
	Session string
	Trigger string // optional - filter to one trigger
}

// TraceStats holds summary statistics for a session.
type TraceStats struct {
	Events     int `json:"events"`
	Unbound    int `json:"unbound"`
	Dispatches int `json:"dispatches"`
	Failures   int `json:"failures"`
}

// TraceResult holds the timeline of one session.
type TraceResult struct {
	Session  journal.Session `json:"session"`
	Trigger  string          `json:"trigger,omitempty"`
	Timeline []journal.Entry `json:"timeline"`
	Stats    TraceStats      `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show recorded sessions from a journal",
		Long: `Show what a recorded run did.

Without --session, lists the sessions in the journal, newest first. With
--session, prints the session's timeline: every resolved input event and
every dispatch, in order, with times relative to the session start.

Examples:
  natty trace --journal ./natty.db
  natty trace --journal ./natty.db --session 0192...
  natty trace --journal ./natty.db --session 0192... --trigger button:left --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to show (default: list sessions)")
	cmd.Flags().StringVar(&opts.Trigger, "trigger", "", "filter to one trigger, e.g. key:a or button:left")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	if opts.Session == "" {
		return listSessions(ctx, opts, cmd, j)
	}

	session, err := j.ReadSession(ctx, opts.Session)
	if errors.Is(err, journal.ErrSessionNotFound) {
		return WrapExitError(ExitFailure, fmt.Sprintf("session %q not found", opts.Session), err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	timeline, err := j.Timeline(ctx, opts.Session, opts.Trigger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read timeline", err)
	}

	result := TraceResult{
		Session:  session,
		Trigger:  opts.Trigger,
		Timeline: timeline,
		Stats:    traceStats(timeline),
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	return outputTraceText(cmd.OutOrStdout(), result, opts.Verbose)
}

func listSessions(ctx context.Context, opts *TraceOptions, cmd *cobra.Command, j *journal.Journal) error {
	sessions, err := j.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}
	if sessions == nil {
		sessions = []journal.Session{}
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, sessions)
	}

	w := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%s  %s  %d command(s)  %s  %s\n",
			s.ID,
			time.UnixMilli(s.StartedAt).UTC().Format(time.RFC3339),
			s.Commands,
			sessionDuration(s),
			s.ConfigPath)
	}
	return nil
}

func traceStats(timeline []journal.Entry) TraceStats {
	var st TraceStats
	for _, e := range timeline {
		switch {
		case e.Event != nil:
			st.Events++
			if !e.Event.Matched {
				st.Unbound++
			}
		case e.Firing != nil:
			st.Dispatches++
			if e.Firing.Error != "" {
				st.Failures++
			}
		}
	}
	return st
}

func sessionDuration(s journal.Session) string {
	if s.EndedAt == nil {
		return "(running or interrupted)"
	}
	return (time.Duration(*s.EndedAt-s.StartedAt) * time.Millisecond).String()
}

// outputTraceJSON outputs a trace payload as JSON.
func outputTraceJSON(cmd *cobra.Command, data any) error {
	response := CLIResponse{
		Status: "ok",
		Data:   data,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputTraceText outputs a session timeline as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	s := result.Session
	fmt.Fprintf(w, "Session: %s\n", s.ID)
	fmt.Fprintf(w, "Config: %s (%d command(s))\n", s.ConfigPath, s.Commands)
	fmt.Fprintf(w, "Started: %s\n", time.UnixMilli(s.StartedAt).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", sessionDuration(s))
	if result.Trigger != "" {
		fmt.Fprintf(w, "Trigger: %s\n", result.Trigger)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no entries)")
	}
	for _, e := range result.Timeline {
		formatEntry(w, e, s.StartedAt, verbose)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Events:     %d (%d unbound)\n", result.Stats.Events, result.Stats.Unbound)
	fmt.Fprintf(w, "  Dispatches: %d (%d failed)\n", result.Stats.Dispatches, result.Stats.Failures)

	return nil
}

// formatEntry prints one timeline line with its offset from start.
func formatEntry(w io.Writer, e journal.Entry, start int64, verbose bool) {
	offset := fmt.Sprintf("+%dms", e.At-start)

	switch {
	case e.Event != nil:
		ev := e.Event
		if !ev.Matched {
			if verbose {
				fmt.Fprintf(w, "  [%d] %-9s %-7s %s unbound\n", e.Seq, offset, ev.Kind, ev.Trigger)
			}
			return
		}
		state := "inactive"
		if ev.Active {
			state = "active"
		}
		if !ev.Changed {
			state += " (unchanged)"
		}
		fmt.Fprintf(w, "  [%d] %-9s %-7s %s %s\n", e.Seq, offset, ev.Kind, ev.Trigger, state)

	case e.Firing != nil:
		f := e.Firing
		line := fmt.Sprintf("  [%d] %-9s %-7s %s -> %s", e.Seq, offset, f.Action, f.Trigger, f.Target)
		if f.CPS > 0 {
			line += fmt.Sprintf(" cps=%d", f.CPS)
		}
		if f.Error != "" {
			line += fmt.Sprintf(" error=%q", f.Error)
		}
		fmt.Fprintln(w, line)
	}
}
