package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/remedy"
)

var ErrReportNotFound = errors.New("analysis report not found")

// StoredReport is one persisted engine output: the report document and its
// remediation plans, kept as JSONB so the finding shape can evolve without
// schema churn.
type StoredReport struct {
	ID        string                   `json:"id"`
	RunID     string                   `json:"run_id"`
	UserID    string                   `json:"user_id"`
	Report    *domain.AnalysisReport   `json:"report"`
	Plans     []remedy.RemediationPlan `json:"plans"`
	CreatedAt time.Time                `json:"created_at"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Save upserts the report of one run. Re-analyzing the same run replaces
// the stored document.
func (r *Repo) Save(ctx context.Context, runID, userID string, report *domain.AnalysisReport, plans []remedy.RemediationPlan) (string, error) {
	if r.db == nil {
		return "", fmt.Errorf("pgx pool is nil")
	}

	reportB, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	plansB, err := json.Marshal(plans)
	if err != nil {
		return "", fmt.Errorf("marshal plans: %w", err)
	}

	const q = `
insert into analysis_reports (run_id, user_id, report, plans)
values ($1, $2::uuid, $3::jsonb, $4::jsonb)
on conflict (run_id) do update
set report = excluded.report, plans = excluded.plans
returning id::text;
`
	var id string
	if err := r.db.QueryRow(ctx, q, runID, userID, reportB, plansB).Scan(&id); err != nil {
		return "", fmt.Errorf("insert analysis report: %w", err)
	}
	return id, nil
}

// GetByRunID loads the stored report of one run.
func (r *Repo) GetByRunID(ctx context.Context, runID string) (*StoredReport, error) {
	if r.db == nil {
		return nil, fmt.Errorf("pgx pool is nil")
	}

	const q = `
select id::text, run_id, user_id::text, report, plans, created_at
from analysis_reports
where run_id = $1;
`
	var (
		sr      StoredReport
		reportB []byte
		plansB  []byte
	)
	err := r.db.QueryRow(ctx, q, runID).
		Scan(&sr.ID, &sr.RunID, &sr.UserID, &reportB, &plansB, &sr.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select analysis report: %w", err)
	}

	if err := json.Unmarshal(reportB, &sr.Report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	if err := json.Unmarshal(plansB, &sr.Plans); err != nil {
		return nil, fmt.Errorf("unmarshal plans: %w", err)
	}
	return &sr, nil
}

// ListByUser returns the user's stored reports, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]*StoredReport, error) {
	if r.db == nil {
		return nil, fmt.Errorf("pgx pool is nil")
	}
	if limit <= 0 {
		limit = 20
	}

	const q = `
select id::text, run_id, user_id::text, report, plans, created_at
from analysis_reports
where user_id = $1::uuid
order by created_at desc
limit $2;
`
	rows, err := r.db.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*StoredReport, 0, limit)
	for rows.Next() {
		var (
			sr      StoredReport
			reportB []byte
			plansB  []byte
		)
		if err := rows.Scan(&sr.ID, &sr.RunID, &sr.UserID, &reportB, &plansB, &sr.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(reportB, &sr.Report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		if err := json.Unmarshal(plansB, &sr.Plans); err != nil {
			return nil, fmt.Errorf("unmarshal plans: %w", err)
		}
		out = append(out, &sr)
	}
	return out, rows.Err()
}
