package storage

import "fmt"

// InsertHarmonyReading persists one chroma-bin observation under
// sessionID.
func (d *DB) InsertHarmonyReading(sessionID string, semitone int, power, relativePower float64) error {
	_, err := d.Exec(
		`INSERT INTO harmony_readings (session_id, semitone, power, relative_power) VALUES (?, ?, ?, ?)`,
		sessionID, semitone, power, relativePower,
	)
	if err != nil {
		return fmt.Errorf("storage: inserting harmony reading for session %s: %w", sessionID, err)
	}
	return nil
}

// AverageChroma returns the mean relative_power across every observed
// iteration of sessionID, indexed by semitone (length 12, zero-filled
// for a semitone that was never observed). This is the chroma vector
// internal/similarity compares sessions by.
func (d *DB) AverageChroma(sessionID string) ([]float64, error) {
	rows, err := d.Query(
		`SELECT semitone, AVG(relative_power) FROM harmony_readings WHERE session_id = ? GROUP BY semitone`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: averaging chroma for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	chroma := make([]float64, 12)
	for rows.Next() {
		var semitone int
		var avg float64
		if err := rows.Scan(&semitone, &avg); err != nil {
			return nil, fmt.Errorf("storage: scanning chroma row for session %s: %w", sessionID, err)
		}
		if semitone >= 0 && semitone < 12 {
			chroma[semitone] = avg
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterating chroma rows for session %s: %w", sessionID, err)
	}
	return chroma, nil
}

// AllClosedSessionChromas returns the average chroma vector for every
// closed session except excludeID, keyed by session ID, for use as
// candidates in a similarity search.
func (d *DB) AllClosedSessionChromas(excludeID string) (map[string][]float64, error) {
	rows, err := d.Query(
		`SELECT id FROM sessions WHERE mode = 'harmony' AND closed_at IS NOT NULL AND id != ?`,
		excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: listing closed harmony sessions: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage: scanning session id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterating closed harmony sessions: %w", err)
	}

	result := make(map[string][]float64, len(ids))
	for _, id := range ids {
		chroma, err := d.AverageChroma(id)
		if err != nil {
			return nil, err
		}
		result[id] = chroma
	}
	return result, nil
}
