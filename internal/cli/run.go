package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/natty/internal/device"
	"github.com/roach88/natty/internal/engine"
	"github.com/roach88/natty/internal/journal"
	"github.com/roach88/natty/internal/keymap"
)

// EventSource delivers physical input events.
type EventSource interface {
	Events(ctx context.Context) <-chan engine.Event
	Close() error
}

// OutputSink is an engine sink that owns an OS resource.
type OutputSink interface {
	engine.Sink
	Close() error
}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config  string
	Journal string
	Tick    time.Duration
	Devices []string

	// OpenSource and OpenSink allow replacing the evdev/uinput devices
	// (for testing). Nil selects the device package.
	OpenSource func(paths []string, keys *keymap.Keymap) (EventSource, error)
	OpenSink   func(keys *keymap.Keymap) (OutputSink, error)

	// SessionIDs overrides journal session ID generation (for testing).
	// Nil selects UUIDv7.
	SessionIDs journal.IDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Listen to input devices and run the configured commands",
		Long: `Load the configuration, open the input devices and the virtual output
device, and run until interrupted.

Reading /dev/input and writing /dev/uinput usually needs root or membership
in the input group.

Examples:
  natty run
  natty run --config ~/.config/natty/config.toml --journal ./natty.db
  natty run --device /dev/input/event3 --tick 2ms --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNatty(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "config file (default ./Natty.toml, then the user config dir)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the session to this SQLite journal")
	cmd.Flags().DurationVar(&opts.Tick, "tick", 0, "scheduler period (default from config, else 5ms)")
	cmd.Flags().StringSliceVar(&opts.Devices, "device", nil, "evdev node to listen to (repeatable; default: discover)")

	return cmd
}

func openDeviceSource(paths []string, keys *keymap.Keymap) (EventSource, error) {
	s, err := device.OpenSource(paths, keys)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openDeviceSink(keys *keymap.Keymap) (OutputSink, error) {
	s, err := device.OpenSink(keys)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func runNatty(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.Config)
	if err != nil {
		for _, issue := range issues(err) {
			slog.Error("configuration error", "code", issue.Code, "field", issue.Field, "message", issue.Message)
		}
		return WrapExitError(exitCodeFor(err), "failed to load configuration", err)
	}
	if !opts.Verbose {
		installLogger(cmd.ErrOrStderr(), cfg.File.General.Level())
	}
	slog.Info("configuration loaded", "path", cfg.Path, "commands", cfg.Table.Len())

	tick := opts.Tick
	if tick == 0 {
		tick = cfg.File.General.Tick()
	}
	devices := opts.Devices
	if len(devices) == 0 {
		devices = cfg.File.General.Devices
	}

	openSink := opts.OpenSink
	if openSink == nil {
		openSink = openDeviceSink
	}
	openSource := opts.OpenSource
	if openSource == nil {
		openSource = openDeviceSource
	}

	// The sink first, so discovery can already see and skip it.
	sink, err := openSink(cfg.Keys)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open output device", err)
	}
	defer closeLogged("output device", sink)

	source, err := openSource(devices, cfg.Keys)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open input devices", err)
	}
	defer closeLogged("input devices", source)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	engineOpts := []engine.Option{engine.WithTick(tick)}

	var session *journalSession
	if opts.Journal != "" {
		session, err = startJournal(ctx, opts, cfg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		engineOpts = append(engineOpts, engine.WithObserver(session.rec))
	}

	eng := engine.New(cfg.Table, sink, engineOpts...)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "natty running with %d command(s). Press Ctrl-C to stop.\n", cfg.Table.Len())

	runErr := eng.Run(ctx, source.Events(ctx))

	if session != nil {
		session.finish()
	}

	switch {
	case runErr == nil, errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		slog.Info("natty stopped")
		return nil
	case errors.Is(runErr, engine.ErrSourceClosed):
		return WrapExitError(ExitFailure, "input devices closed", runErr)
	default:
		return WrapExitError(ExitFailure, "engine error", runErr)
	}
}

type journalSession struct {
	j   *journal.Journal
	rec *journal.Recorder
}

func startJournal(ctx context.Context, opts *RunOptions, cfg *loaded) (*journalSession, error) {
	j, err := journal.Open(opts.Journal)
	if err != nil {
		return nil, err
	}

	ids := opts.SessionIDs
	if ids == nil {
		ids = journal.UUIDv7Generator{}
	}

	s := journal.Session{
		ID:         ids.Generate(),
		ConfigPath: cfg.Path,
		Commands:   cfg.Table.Len(),
		StartedAt:  time.Now().UnixMilli(),
	}
	if err := j.StartSession(ctx, s); err != nil {
		j.Close()
		return nil, err
	}

	slog.Info("journal session started", "journal", opts.Journal, "session", s.ID)
	return &journalSession{j: j, rec: journal.NewRecorder(j, s.ID, 0)}, nil
}

// finish flushes the recorder and stamps the session's end. Errors are
// logged; the run itself already ended.
func (s *journalSession) finish() {
	if err := s.rec.Close(); err != nil {
		slog.Error("journal write failed", "error", err)
	}
	if err := s.j.EndSession(context.Background(), s.rec.SessionID(), time.Now().UnixMilli()); err != nil {
		slog.Error("failed to end journal session", "error", err)
	}
	closeLogged("journal", s.j)
}

type closer interface {
	Close() error
}

func closeLogged(what string, c closer) {
	if err := c.Close(); err != nil {
		slog.Error("error closing "+what, "error", err)
	}
}
