package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mchmarny/cloutcheck/pkg/model"
	"github.com/mchmarny/cloutcheck/pkg/store"
)

const (
	upsertReportSQL = `INSERT INTO creator_report (handle, run_id, analysis_date, reputation_score, rating, body)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(handle) DO UPDATE SET
			run_id = excluded.run_id,
			analysis_date = excluded.analysis_date,
			reputation_score = excluded.reputation_score,
			rating = excluded.rating,
			body = excluded.body
	`
	upsertHistorySQL = `INSERT INTO score_history (handle, run_id, analysis_date, reputation_score, rating)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(handle, run_id) DO UPDATE SET
			reputation_score = excluded.reputation_score,
			rating = excluded.rating
	`
	selectReportSQL  = `SELECT body FROM creator_report WHERE handle = ?`
	selectReportsSQL = `SELECT body FROM creator_report ORDER BY handle`
	selectHistorySQL = `SELECT run_id, analysis_date, reputation_score, rating
		FROM score_history WHERE handle = ? ORDER BY analysis_date DESC, run_id`
)

var _ store.ReportStore = (*Store)(nil)

// HistoryEntry is one past reputation score of a creator.
type HistoryEntry struct {
	RunID           string  `json:"run_id" yaml:"runId"`
	AnalysisDate    string  `json:"analysis_date" yaml:"analysisDate"`
	ReputationScore float64 `json:"reputation_score" yaml:"reputationScore"`
	Rating          string  `json:"rating" yaml:"rating"`
}

// Save upserts the latest report of a creator and appends its score to
// the history.
func (s *Store) Save(ctx context.Context, r *model.CreatorReport) error {
	if s == nil || s.db == nil {
		return errDBNotInitialized
	}
	if r == nil || r.Username == "" {
		return errors.New("report with username required")
	}

	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(upsertReportSQL),
		r.Username, r.RunID, r.AnalysisDate, r.ReputationScore, r.Rating, string(b)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to save report of %s: %w", r.Username, err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(upsertHistorySQL),
		r.Username, r.RunID, r.AnalysisDate, r.ReputationScore, r.Rating); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to save score history of %s: %w", r.Username, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

// Get returns the latest report of a creator.
func (s *Store) Get(ctx context.Context, handle string) (*model.CreatorReport, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	var body string
	err := s.db.QueryRowContext(ctx, s.rebind(selectReportSQL), handle).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query report of %s: %w", handle, err)
	}
	return decodeReport(body)
}

// List returns the latest report of every creator sorted by handle.
func (s *Store) List(ctx context.Context) ([]*model.CreatorReport, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, selectReportsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	list := make([]*model.CreatorReport, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		r, err := decodeReport(body)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return list, nil
}

// ScoreHistory returns the past scores of a creator, newest first.
func (s *Store) ScoreHistory(ctx context.Context, handle string) ([]*HistoryEntry, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(selectHistorySQL), handle)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history of %s: %w", handle, err)
	}
	defer rows.Close()

	list := make([]*HistoryEntry, 0)
	for rows.Next() {
		e := &HistoryEntry{}
		if err := rows.Scan(&e.RunID, &e.AnalysisDate, &e.ReputationScore, &e.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan score history: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate score history: %w", err)
	}
	return list, nil
}

func decodeReport(body string) (*model.CreatorReport, error) {
	var r model.CreatorReport
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
