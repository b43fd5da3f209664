package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Session is a persisted transcription run: one audio source driven
// through the pipeline under a fixed mode and configuration.
type Session struct {
	ID         string
	Mode       string
	SampleRate int
	BPM        float64
	Monophonic bool
	CreatedAt  time.Time
	ClosedAt   *time.Time
}

// CreateSession inserts a new session row.
func (d *DB) CreateSession(s Session) error {
	_, err := d.Exec(
		`INSERT INTO sessions (id, mode, sample_rate, bpm, monophonic) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Mode, s.SampleRate, s.BPM, s.Monophonic,
	)
	if err != nil {
		return fmt.Errorf("storage: creating session %s: %w", s.ID, err)
	}
	return nil
}

// CloseSession marks a session as finished.
func (d *DB) CloseSession(id string) error {
	_, err := d.Exec(`UPDATE sessions SET closed_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("storage: closing session %s: %w", id, err)
	}
	return nil
}

// DeleteSession removes a session and, via ON DELETE CASCADE, its notes
// and tuner readings.
func (d *DB) DeleteSession(id string) error {
	_, err := d.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("storage: deleting session %s: %w", id, err)
	}
	return nil
}

// GetSession fetches a session by ID.
func (d *DB) GetSession(id string) (Session, error) {
	var s Session
	var closedAt sql.NullTime
	row := d.QueryRow(
		`SELECT id, mode, sample_rate, bpm, monophonic, created_at, closed_at FROM sessions WHERE id = ?`,
		id,
	)
	if err := row.Scan(&s.ID, &s.Mode, &s.SampleRate, &s.BPM, &s.Monophonic, &s.CreatedAt, &closedAt); err != nil {
		if err == sql.ErrNoRows {
			return Session{}, fmt.Errorf("storage: session %s not found: %w", id, err)
		}
		return Session{}, fmt.Errorf("storage: reading session %s: %w", id, err)
	}
	if closedAt.Valid {
		s.ClosedAt = &closedAt.Time
	}
	return s, nil
}
