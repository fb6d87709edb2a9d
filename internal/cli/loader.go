package cli

import (
	"errors"

	"github.com/roach88/natty/internal/command"
	"github.com/roach88/natty/internal/config"
	"github.com/roach88/natty/internal/keymap"
)

// Issue is one configuration problem, from any loading stage.
type Issue struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// CommandView is the display form of one command.
type CommandView struct {
	Trigger string `json:"trigger"`
	Method  string `json:"method"`
	Action  string `json:"action"`
	Target  string `json:"target"`
	MinCPS  int    `json:"min_cps,omitempty"`
	MaxCPS  int    `json:"max_cps,omitempty"`
}

func viewCommands(cmds []command.Command) []CommandView {
	views := make([]CommandView, 0, len(cmds))
	for _, c := range cmds {
		v := CommandView{
			Trigger: c.Trigger.String(),
			Method:  c.Method.String(),
			Action:  c.Action.Kind.String(),
			Target:  c.Action.Target.String(),
		}
		if c.Action.Repeats() {
			v.MinCPS, v.MaxCPS = c.Action.Rate.Min, c.Action.Rate.Max
		}
		views = append(views, v)
	}
	return views
}

// loaded is a fully built configuration.
type loaded struct {
	Path  string
	File  *config.File
	Table *command.Table
	Keys  *keymap.Keymap
}

// loadConfig resolves, loads and builds the configuration. Errors are
// *config.LoadError or command.ConfigError trees.
func loadConfig(explicit string) (*loaded, error) {
	path, err := config.ResolvePath(explicit)
	if err != nil {
		return nil, err
	}

	f, err := config.Load(path)
	if err != nil {
		return &loaded{Path: path}, err
	}

	keys := keymap.Default()
	table, err := f.Table(keys)
	if err != nil {
		return &loaded{Path: path, File: f}, err
	}

	return &loaded{Path: path, File: f, Table: table, Keys: keys}, nil
}

// issues flattens a loading error into display issues.
func issues(err error) []Issue {
	var out []Issue
	for _, le := range config.LoadErrors(err) {
		msg := le.Message
		if le.Err != nil {
			msg += ": " + le.Err.Error()
		}
		out = append(out, Issue{Code: le.Code, Message: msg})
	}
	for _, ce := range command.ConfigErrors(err) {
		out = append(out, Issue{Code: ce.Code, Field: ce.Field, Message: ce.Message})
	}
	if len(out) == 0 && err != nil {
		out = append(out, Issue{Code: config.ErrCodeGeneric, Message: err.Error()})
	}
	return out
}

// exitCodeFor maps a loading error to an exit code: missing or unreadable
// files are command errors, invalid content is a failure.
func exitCodeFor(err error) int {
	var le *config.LoadError
	if errors.As(err, &le) && (le.Code == config.ErrCodeNotFound || le.Code == config.ErrCodeGeneric) {
		return ExitCommandError
	}
	return ExitFailure
}
