package runs

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	runKeyPrefix     = "al:run:"          // Key for run data: al:run:{run_id}
	userRunSetPrefix = "al:user:"         // Set of run IDs for a user: al:user:{user_id}:runs
	runTTL           = 7 * 24 * time.Hour // TTL for run data (7 days)
)

// Repo handles Redis operations for analysis runs.
type Repo struct {
	client *redis.Client
}

func NewRepo(client *redis.Client) *Repo {
	return &Repo{client: client}
}

// Create stores a new run and indexes it under its user. Missing identity
// and timestamps are filled in.
func (r *Repo) Create(ctx context.Context, run *AnalysisRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.Status == "" {
		run.Status = StatusPending
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	if run.UpdatedAt.IsZero() {
		run.UpdatedAt = now
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	userSetKey := r.userRunSetKey(run.UserID)
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.runKey(run.RunID), data, runTTL)
	pipe.SAdd(ctx, userSetKey, run.RunID)
	pipe.Expire(ctx, userSetKey, runTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// GetByRunID retrieves a run by its ID.
func (r *Repo) GetByRunID(ctx context.Context, runID string) (*AnalysisRun, error) {
	data, err := r.client.Get(ctx, r.runKey(runID)).Result()
	if err == redis.Nil {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run AnalysisRun
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

// Update overwrites a run record and refreshes its TTL.
func (r *Repo) Update(ctx context.Context, run *AnalysisRun) error {
	if _, err := r.GetByRunID(ctx, run.RunID); err != nil {
		return err
	}
	run.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := r.client.Set(ctx, r.runKey(run.RunID), data, runTTL).Err(); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Finish transitions a run to its terminal status with the finding tallies
// and, for failed or partial runs, the error text.
func (r *Repo) Finish(ctx context.Context, runID, status string, findingCount, criticalCount int, errMsg string) error {
	run, err := r.GetByRunID(ctx, runID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	run.Status = status
	run.FindingCount = findingCount
	run.CriticalCount = criticalCount
	run.Error = errMsg
	run.CompletedAt = &now
	return r.Update(ctx, run)
}

// ListByUser returns the user's runs, newest first. Run entries whose data
// key already expired are skipped; the set member lingers until its own TTL.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]*AnalysisRun, error) {
	runIDs, err := r.client.SMembers(ctx, r.userRunSetKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for user: %w", err)
	}

	out := make([]*AnalysisRun, 0, len(runIDs))
	for _, id := range runIDs {
		run, err := r.GetByRunID(ctx, id)
		if err == ErrRunNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a run and its user index entry.
func (r *Repo) Delete(ctx context.Context, runID string) error {
	run, err := r.GetByRunID(ctx, runID)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.runKey(runID))
	pipe.SRem(ctx, r.userRunSetKey(run.UserID), runID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

func (r *Repo) runKey(runID string) string {
	return fmt.Sprintf("%s%s", runKeyPrefix, runID)
}

func (r *Repo) userRunSetKey(userID string) string {
	return fmt.Sprintf("%s%s:runs", userRunSetPrefix, userID)
}
