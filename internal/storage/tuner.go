package storage

import (
	"database/sql"
	"fmt"
)

// TunerReading is one band-peak-finder observation: the strongest peak
// seen in a configured band, or a nil frequency if none cleared the
// height gate.
type TunerReading struct {
	BandIdx        int
	Frequency      *float64
	ErrorSemitones *float64
}

// InsertTunerReading persists one band reading under sessionID.
func (d *DB) InsertTunerReading(sessionID string, r TunerReading) error {
	freq := sql.NullFloat64{}
	if r.Frequency != nil {
		freq = sql.NullFloat64{Float64: *r.Frequency, Valid: true}
	}
	errSemis := sql.NullFloat64{}
	if r.ErrorSemitones != nil {
		errSemis = sql.NullFloat64{Float64: *r.ErrorSemitones, Valid: true}
	}
	_, err := d.Exec(
		`INSERT INTO tuner_readings (session_id, band_idx, frequency, error_semitones) VALUES (?, ?, ?, ?)`,
		sessionID, r.BandIdx, freq, errSemis,
	)
	if err != nil {
		return fmt.Errorf("storage: inserting tuner reading for session %s: %w", sessionID, err)
	}
	return nil
}

// LatestTunerReadings returns the most recent reading for each band of
// sessionID.
func (d *DB) LatestTunerReadings(sessionID string) ([]TunerReading, error) {
	rows, err := d.Query(
		`SELECT band_idx, frequency, error_semitones FROM tuner_readings
		 WHERE session_id = ? AND id IN (
		     SELECT MAX(id) FROM tuner_readings WHERE session_id = ? GROUP BY band_idx
		 )
		 ORDER BY band_idx`,
		sessionID, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: listing tuner readings for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var readings []TunerReading
	for rows.Next() {
		var r TunerReading
		var freq, errSemis sql.NullFloat64
		if err := rows.Scan(&r.BandIdx, &freq, &errSemis); err != nil {
			return nil, fmt.Errorf("storage: scanning tuner reading row: %w", err)
		}
		if freq.Valid {
			v := freq.Float64
			r.Frequency = &v
		}
		if errSemis.Valid {
			v := errSemis.Float64
			r.ErrorSemitones = &v
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterating tuner readings for session %s: %w", sessionID, err)
	}
	return readings, nil
}
