package command

import (
	"errors"
	"fmt"
	"iter"
	"sort"
)

// Table maps each trigger to its single Command.
type Table struct {
	commands map[Input]*Command
}

// Build resolves bindings into a Table.
//
// Every binding is checked and all problems are returned together (joined
// with errors.Join); each one is a *ConfigError. Two bindings resolving to
// the same trigger are rejected rather than letting the later one win.
func Build(bindings []Binding, keys KeyResolver) (*Table, error) {
	if len(bindings) == 0 {
		return nil, &ConfigError{Code: ErrCodeEmpty, Field: "commands", Message: "no commands configured"}
	}

	t := &Table{commands: make(map[Input]*Command, len(bindings))}
	firstSeen := make(map[Input]int, len(bindings))
	var errs []error

	for i, b := range bindings {
		field := fmt.Sprintf("commands[%d]", i)

		trigger, err := resolveInput(b.Listen, field+".listen", keys)
		if err != nil {
			errs = append(errs, err)
		}
		target, targetErr := resolveInput(b.Action, field+".action", keys)
		if targetErr != nil {
			errs = append(errs, targetErr)
		}

		method, ok := ParseMethod(b.Method)
		if !ok {
			errs = append(errs, &ConfigError{
				Code:    ErrCodeInvalidMethod,
				Field:   field + ".method",
				Message: fmt.Sprintf("unknown method %q (want Hold or Toggle)", b.Method),
			})
		}

		if b.Range != nil && !b.Range.Valid() {
			errs = append(errs, &ConfigError{
				Code:    ErrCodeInvalidRange,
				Field:   field + ".range",
				Message: fmt.Sprintf("invalid rate range min=%d max=%d (need 0 < min <= max)", b.Range.Min, b.Range.Max),
			})
			continue
		}

		if err != nil || targetErr != nil || !ok {
			continue
		}

		if prev, dup := firstSeen[trigger]; dup {
			errs = append(errs, &ConfigError{
				Code:    ErrCodeDuplicateTrigger,
				Field:   field + ".listen",
				Message: fmt.Sprintf("trigger %s already bound by commands[%d]", trigger, prev),
			})
			continue
		}
		firstSeen[trigger] = i

		action := PressAction(target)
		if b.Range != nil {
			action = ClickAction(target, *b.Range)
		}
		t.commands[trigger] = newCommand(trigger, action, method)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

func resolveInput(spec InputSpec, field string, keys KeyResolver) (Input, error) {
	kind, ok := ParseInputKind(spec.Type)
	if !ok {
		return Input{}, &ConfigError{
			Code:    ErrCodeInvalidType,
			Field:   field + ".type",
			Message: fmt.Sprintf("unknown input type %q (want Key or Button)", spec.Type),
		}
	}

	switch kind {
	case KindKey:
		name, ok := keys.Canonical(spec.Value)
		if !ok {
			return Input{}, &ConfigError{
				Code:    ErrCodeUnknownKey,
				Field:   field + ".value",
				Message: fmt.Sprintf("unknown key %q", spec.Value),
			}
		}
		return KeyInput(name), nil
	case KindButton:
		btn, ok := ParseButton(spec.Value)
		if !ok {
			return Input{}, &ConfigError{
				Code:    ErrCodeUnknownButton,
				Field:   field + ".value",
				Message: fmt.Sprintf("unknown button %q", spec.Value),
			}
		}
		return ButtonInput(btn), nil
	}
	return Input{}, &ConfigError{Code: ErrCodeInvalidType, Field: field + ".type", Message: "unreachable input kind"}
}

// Get returns the command bound to trigger.
func (t *Table) Get(trigger Input) (*Command, bool) {
	c, ok := t.commands[trigger]
	return c, ok
}

// All yields every command in unspecified order. Callers may mutate the
// yielded commands in place.
func (t *Table) All() iter.Seq[*Command] {
	return func(yield func(*Command) bool) {
		for _, c := range t.commands {
			if !yield(c) {
				return
			}
		}
	}
}

// Len returns the number of commands.
func (t *Table) Len() int {
	return len(t.commands)
}

// Snapshot returns copies of all commands sorted by trigger for stable
// display.
func (t *Table) Snapshot() []Command {
	out := make([]Command, 0, len(t.commands))
	for _, c := range t.commands {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Trigger.String() < out[j].Trigger.String()
	})
	return out
}
