package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	upsertStateSQL = `INSERT INTO state (handle, run_id, processed_at) VALUES (?, ?, ?)
		ON CONFLICT(handle) DO UPDATE SET run_id = excluded.run_id, processed_at = excluded.processed_at
	`
	selectStateSQL = `SELECT run_id FROM state WHERE handle = ?`
	deleteStateSQL = `DELETE FROM state WHERE handle = ?`

	countPostsSQL   = `SELECT COUNT(*) FROM post`
	countReportsSQL = `SELECT COUNT(*) FROM creator_report`
	countStateSQL   = `SELECT COUNT(*) FROM state`
)

var stateQueries = map[string]string{
	"posts":     countPostsSQL,
	"reports":   countReportsSQL,
	"processed": countStateSQL,
}

// Processed reports whether the creator has been fully processed.
func (s *Store) Processed(ctx context.Context, handle string) (bool, error) {
	if s == nil || s.db == nil {
		return false, errDBNotInitialized
	}

	var runID string
	err := s.db.QueryRowContext(ctx, s.rebind(selectStateSQL), handle).Scan(&runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query state of %s: %w", handle, err)
	}
	return true, nil
}

// MarkProcessed records that runID completed the creator.
func (s *Store) MarkProcessed(ctx context.Context, handle, runID string) error {
	if s == nil || s.db == nil {
		return errDBNotInitialized
	}
	if handle == "" || runID == "" {
		return fmt.Errorf("handle: %s, runID: %s are all required", handle, runID)
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(upsertStateSQL), handle, runID, now()); err != nil {
		return fmt.Errorf("failed to save state of %s: %w", handle, err)
	}
	return nil
}

// Forget removes the creator from the ledger.
func (s *Store) Forget(ctx context.Context, handle string) error {
	if s == nil || s.db == nil {
		return errDBNotInitialized
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(deleteStateSQL), handle); err != nil {
		return fmt.Errorf("failed to delete state of %s: %w", handle, err)
	}
	return nil
}

// GetDataState returns row counts of the main tables.
func (s *Store) GetDataState(ctx context.Context) (map[string]int64, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64, len(stateQueries))
	for k, q := range stateQueries {
		var count int64
		if err := s.db.QueryRowContext(ctx, q).Scan(&count); err != nil {
			return nil, fmt.Errorf("error getting %s count: %w", k, err)
		}
		state[k] = count
	}
	return state, nil
}
