package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/archlens/archlens-backend/internal/analysis/domain"
)

// FindingRecord is one denormalized finding row. Findings are flattened out
// of the report document at save time so severity and pattern trends can be
// queried with plain SQL instead of unpacking JSONB.
type FindingRecord struct {
	ID               int64
	RunID            string
	PatternType      string
	Severity         string
	Confidence       float64
	AffectedEntities []string
	MetricSnapshot   map[string]float64
	CreatedAt        time.Time
}

// PatternTrendPoint is one day's finding count for a pattern type.
type PatternTrendPoint struct {
	Day         time.Time `json:"day"`
	PatternType string    `json:"pattern_type"`
	Count       int64     `json:"count"`
}

// HistoryStore handles PostgreSQL operations for the finding history.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// InsertRunFindings records every finding of a run in a single transaction.
func (s *HistoryStore) InsertRunFindings(ctx context.Context, runID string, findings []domain.Finding) error {
	if len(findings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO finding_history (
			run_id, pattern_type, severity, confidence,
			affected_entities, metric_snapshot
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range findings {
		entitiesJSON, err := json.Marshal(f.AffectedEntities)
		if err != nil {
			entitiesJSON = []byte("[]")
		}
		snapshotJSON, err := json.Marshal(f.MetricSnapshot)
		if err != nil {
			snapshotJSON = []byte("{}")
		}

		_, err = stmt.ExecContext(ctx,
			runID,
			string(f.PatternType),
			string(f.Severity),
			f.Confidence,
			entitiesJSON,
			snapshotJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to insert finding row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByRunID retrieves the flattened findings of one run, most severe first.
func (s *HistoryStore) GetByRunID(ctx context.Context, runID string) ([]FindingRecord, error) {
	query := `
		SELECT id, run_id, pattern_type, severity, confidence,
		       affected_entities, metric_snapshot, created_at
		FROM finding_history
		WHERE run_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query finding history: %w", err)
	}
	defer rows.Close()

	var records []FindingRecord
	for rows.Next() {
		var rec FindingRecord
		var entitiesJSON, snapshotJSON []byte

		err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.PatternType,
			&rec.Severity,
			&rec.Confidence,
			&entitiesJSON,
			&snapshotJSON,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finding row: %w", err)
		}

		if len(entitiesJSON) > 0 {
			if err := json.Unmarshal(entitiesJSON, &rec.AffectedEntities); err != nil {
				rec.AffectedEntities = nil
			}
		}
		if len(snapshotJSON) > 0 {
			if err := json.Unmarshal(snapshotJSON, &rec.MetricSnapshot); err != nil {
				rec.MetricSnapshot = map[string]float64{}
			}
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating finding history: %w", err)
	}

	return records, nil
}

// PatternTrend returns per-day finding counts since the given time,
// optionally filtered to one pattern type.
func (s *HistoryStore) PatternTrend(ctx context.Context, patternType string, since time.Time) ([]PatternTrendPoint, error) {
	query := `
		SELECT date_trunc('day', created_at) AS day, pattern_type, COUNT(*)
		FROM finding_history
		WHERE created_at >= $1
	`
	args := []interface{}{since}

	if patternType != "" {
		query += " AND pattern_type = $2"
		args = append(args, patternType)
	}

	query += " GROUP BY day, pattern_type ORDER BY day ASC, pattern_type ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pattern trend: %w", err)
	}
	defer rows.Close()

	var points []PatternTrendPoint
	for rows.Next() {
		var p PatternTrendPoint
		if err := rows.Scan(&p.Day, &p.PatternType, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pattern trend: %w", err)
	}

	return points, nil
}

// CountBySeverity tallies one run's findings per severity.
func (s *HistoryStore) CountBySeverity(ctx context.Context, runID string) (map[string]int64, error) {
	query := `
		SELECT severity, COUNT(*)
		FROM finding_history
		WHERE run_id = $1
		GROUP BY severity
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count by severity: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var severity string
		var count int64
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, fmt.Errorf("failed to scan severity count: %w", err)
		}
		counts[severity] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating severity counts: %w", err)
	}

	return counts, nil
}
