package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// ListSessions returns every session, newest first.
func (j *Journal) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, config_path, commands, started_at, ended_at
		FROM sessions
		ORDER BY started_at DESC, id COLLATE BINARY DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadSession returns one session.
func (j *Journal) ReadSession(ctx context.Context, id string) (Session, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, config_path, commands, started_at, ended_at
		FROM sessions WHERE id = ?
	`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("read session %s: %w", id, ErrSessionNotFound)
	}
	return s, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (Session, error) {
	var (
		s     Session
		ended sql.NullInt64
	)
	if err := sc.Scan(&s.ID, &s.ConfigPath, &s.Commands, &s.StartedAt, &ended); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	if ended.Valid {
		s.EndedAt = &ended.Int64
	}
	return s, nil
}

// ReadEvents returns a session's events in sequence order, optionally only
// those for trigger.
func (j *Journal) ReadEvents(ctx context.Context, sessionID, trigger string) ([]EventRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session_id, seq, at, kind, listen, matched, changed, active
		FROM events
		WHERE session_id = ? AND (? = '' OR listen = ?)
		ORDER BY seq ASC
	`, sessionID, trigger, trigger)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []EventRecord{}
	for rows.Next() {
		var r EventRecord
		if err := rows.Scan(&r.SessionID, &r.Seq, &r.At, &r.Kind, &r.Trigger, &r.Matched, &r.Changed, &r.Active); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ReadFirings returns a session's firings in sequence order, optionally
// only those for trigger.
func (j *Journal) ReadFirings(ctx context.Context, sessionID, trigger string) ([]FiringRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session_id, seq, at, listen, action_kind, target, cps, error
		FROM firings
		WHERE session_id = ? AND (? = '' OR listen = ?)
		ORDER BY seq ASC
	`, sessionID, trigger, trigger)
	if err != nil {
		return nil, fmt.Errorf("query firings: %w", err)
	}
	defer rows.Close()

	firings := []FiringRecord{}
	for rows.Next() {
		var (
			r       FiringRecord
			errText sql.NullString
		)
		if err := rows.Scan(&r.SessionID, &r.Seq, &r.At, &r.Trigger, &r.Action, &r.Target, &r.CPS, &errText); err != nil {
			return nil, fmt.Errorf("scan firing: %w", err)
		}
		r.Error = errText.String
		firings = append(firings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firings: %w", err)
	}
	return firings, nil
}

// Entry is one line of a session timeline: exactly one of Event and
// Firing is set.
type Entry struct {
	Seq    int64         `json:"seq"`
	At     int64         `json:"at"`
	Event  *EventRecord  `json:"event,omitempty"`
	Firing *FiringRecord `json:"firing,omitempty"`
}

// Timeline merges a session's events and firings into one list ordered by
// sequence number.
func (j *Journal) Timeline(ctx context.Context, sessionID, trigger string) ([]Entry, error) {
	if _, err := j.ReadSession(ctx, sessionID); err != nil {
		return nil, err
	}

	events, err := j.ReadEvents(ctx, sessionID, trigger)
	if err != nil {
		return nil, err
	}
	firings, err := j.ReadFirings(ctx, sessionID, trigger)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(events)+len(firings))
	for i := range events {
		entries = append(entries, Entry{Seq: events[i].Seq, At: events[i].At, Event: &events[i]})
	}
	for i := range firings {
		entries = append(entries, Entry{Seq: firings[i].Seq, At: firings[i].At, Firing: &firings[i]})
	}
	sort.SliceStable(entries, func(a, b int) bool { return entries[a].Seq < entries[b].Seq })

	return entries, nil
}
