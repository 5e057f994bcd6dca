package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ RunRepository = (*SQLRunRepository)(nil)

// SQLRunRepository handles database operations for source run records.
// Timestamps are stored as RFC 3339 text in UTC.
type SQLRunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *SQLRunRepository {
	return &SQLRunRepository{db: db}
}

// GetLastRun returns the last successful run timestamp for a source, or nil
// if the source has never completed a run. An unknown source is not an
// error; its record is created lazily by SetLastRun.
func (r *SQLRunRepository) GetLastRun(sourceKey string) (*time.Time, error) {
	var raw sql.NullString
	err := r.db.QueryRow(`
		SELECT last_successful_run FROM source_runs WHERE source_key = ?
	`, sourceKey).Scan(&raw)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run for %s: %w", sourceKey, err)
	}

	if !raw.Valid || raw.String == "" {
		return nil, nil
	}

	timestamp, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored timestamp %q for %s: %w", raw.String, sourceKey, err)
	}

	timestamp = timestamp.UTC()
	return &timestamp, nil
}

// SetLastRun upserts the last successful run timestamp for a source,
// overwriting any previous value.
func (r *SQLRunRepository) SetLastRun(sourceKey string, timestamp time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO source_runs (source_key, last_successful_run)
		VALUES (?, ?)
		ON CONFLICT (source_key) DO UPDATE SET
			last_successful_run = excluded.last_successful_run
	`, sourceKey, timestamp.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("failed to set last run for %s: %w", sourceKey, err)
	}

	return nil
}

// ListRuns returns all run records ordered by source key.
func (r *SQLRunRepository) ListRuns() ([]RunRecord, error) {
	rows, err := r.db.Query(`
		SELECT source_key, last_successful_run
		FROM source_runs
		ORDER BY source_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		var raw sql.NullString
		if err := rows.Scan(&record.SourceKey, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}

		if raw.Valid && raw.String != "" {
			timestamp, err := time.Parse(time.RFC3339Nano, raw.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse stored timestamp %q: %w", raw.String, err)
			}
			timestamp = timestamp.UTC()
			record.LastSuccessfulRun = &timestamp
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run records: %w", err)
	}

	return records, nil
}
