package storage

import (
	"database/sql"
	"fmt"

	"github.com/notewise/notewise/internal/note"
	"github.com/notewise/notewise/internal/pitch"
)

// InsertNote persists a transcribed note under sessionID.
func (d *DB) InsertNote(sessionID string, n note.Note) error {
	var startBeat, endBeat, value sql.NullFloat64
	if n.HasBeat {
		startBeat = sql.NullFloat64{Float64: n.StartBeat, Valid: true}
		endBeat = sql.NullFloat64{Float64: n.EndBeat, Valid: true}
		value = sql.NullFloat64{Float64: n.Value, Valid: true}
	}
	_, err := d.Exec(
		`INSERT INTO notes (session_id, octave, semitone, note_name, frequency, error_hz, start_s, end_s, start_beat, end_beat, value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, n.Pitch.Octave, n.Pitch.Semitone, n.Pitch.Note, n.Pitch.Frequency, n.Pitch.Error,
		n.StartS, n.EndS, startBeat, endBeat, value,
	)
	if err != nil {
		return fmt.Errorf("storage: inserting note for session %s: %w", sessionID, err)
	}
	return nil
}

// ListNotes returns every note recorded for sessionID, ordered by start
// time.
func (d *DB) ListNotes(sessionID string) ([]note.Note, error) {
	rows, err := d.Query(
		`SELECT octave, semitone, note_name, frequency, error_hz, start_s, end_s, start_beat, end_beat, value
		 FROM notes WHERE session_id = ? ORDER BY start_s`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: listing notes for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var notes []note.Note
	for rows.Next() {
		var octave, semitone int
		var noteName string
		var frequency, errorHz, startS, endS float64
		var startBeat, endBeat, value sql.NullFloat64
		if err := rows.Scan(&octave, &semitone, &noteName, &frequency, &errorHz, &startS, &endS, &startBeat, &endBeat, &value); err != nil {
			return nil, fmt.Errorf("storage: scanning note row: %w", err)
		}
		n := note.Note{
			Pitch: pitch.Pitch{
				Frequency: frequency,
				Octave:    octave,
				Semitone:  semitone,
				Note:      noteName,
				Error:     errorHz,
			},
			StartS: startS,
			EndS:   endS,
		}
		if startBeat.Valid {
			n.HasBeat = true
			n.StartBeat = startBeat.Float64
			n.EndBeat = endBeat.Float64
			n.Value = value.Float64
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterating notes for session %s: %w", sessionID, err)
	}
	return notes, nil
}
