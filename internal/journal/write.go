package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// Session is one run of the engine.
type Session struct {
	ID         string `json:"id"`
	ConfigPath string `json:"config_path"`
	Commands   int    `json:"commands"`
	StartedAt  int64  `json:"started_at"`
	EndedAt    *int64 `json:"ended_at,omitempty"`
}

// EventRecord is one resolved input event.
type EventRecord struct {
	SessionID string `json:"-"`
	Seq       int64  `json:"seq"`
	At        int64  `json:"at"`
	Kind      string `json:"kind"`
	Trigger   string `json:"trigger"`
	Matched   bool   `json:"matched"`
	Changed   bool   `json:"changed"`
	Active    bool   `json:"active"`
}

// FiringRecord is one dispatch, successful or not.
type FiringRecord struct {
	SessionID string `json:"-"`
	Seq       int64  `json:"seq"`
	At        int64  `json:"at"`
	Trigger   string `json:"trigger"`
	Action    string `json:"action"`
	Target    string `json:"target"`
	CPS       int    `json:"cps,omitempty"`
	Error     string `json:"error,omitempty"`
}

// StartSession inserts a session. Duplicate IDs are ignored.
func (j *Journal) StartSession(ctx context.Context, s Session) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, config_path, commands, started_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, s.ID, s.ConfigPath, s.Commands, s.StartedAt)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

// EndSession stamps a session's end time.
func (j *Journal) EndSession(ctx context.Context, id string, at int64) error {
	res, err := j.db.ExecContext(ctx, `UPDATE sessions SET ended_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("end session %s: %w", id, ErrSessionNotFound)
	}
	return nil
}

// WriteEvent inserts an event record. Duplicate (session, seq) pairs are
// ignored.
func (j *Journal) WriteEvent(ctx context.Context, r EventRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (session_id, seq, at, kind, listen, matched, changed, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, r.SessionID, r.Seq, r.At, r.Kind, r.Trigger, r.Matched, r.Changed, r.Active)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// WriteFiring inserts a firing record. Duplicate (session, seq) pairs are
// ignored.
func (j *Journal) WriteFiring(ctx context.Context, r FiringRecord) error {
	var errText sql.NullString
	if r.Error != "" {
		errText = sql.NullString{String: r.Error, Valid: true}
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO firings (session_id, seq, at, listen, action_kind, target, cps, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, r.SessionID, r.Seq, r.At, r.Trigger, r.Action, r.Target, r.CPS, errText)
	if err != nil {
		return fmt.Errorf("write firing: %w", err)
	}
	return nil
}
