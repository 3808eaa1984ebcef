package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/archlens/archlens-backend/internal/analysis/archive"
	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/detect"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/service"
	"github.com/archlens/archlens-backend/internal/reports"
	"github.com/archlens/archlens-backend/internal/runs"
	"github.com/archlens/archlens-backend/internal/storage/postgres"
	"github.com/archlens/archlens-backend/internal/users"
)

// watcherUID is the synthetic identity watcher runs are attributed to.
const watcherUID = "fact-watcher"

// WatcherDeps configures the fact-document watcher. Every store is
// optional; a missing one just skips that persistence step.
type WatcherDeps struct {
	Dir        string
	CronSpec   string
	Thresholds config.Thresholds
	Timeout    time.Duration

	// ArchiveDir, when set, receives an immutable copy of every document
	// the watcher analyzes, keyed by run id.
	ArchiveDir string

	Users   *users.Repo
	Runs    *runs.Repo
	Reports *reports.Repo
	History *postgres.HistoryStore
}

// Watcher periodically scans a drop directory for fact documents and runs
// the analysis over any file that is new or has changed since the last
// sweep.
type Watcher struct {
	deps WatcherDeps
	cron *cron.Cron

	mu     sync.Mutex
	seen   map[string]time.Time
	userID string
}

func NewWatcher(deps WatcherDeps) *Watcher {
	if deps.Timeout <= 0 {
		deps.Timeout = 30 * time.Second
	}
	return &Watcher{
		deps: deps,
		seen: map[string]time.Time{},
	}
}

// Start registers the sweep on its cron schedule and launches the
// scheduler.
func (w *Watcher) Start() error {
	if w.deps.Dir == "" {
		return fmt.Errorf("fact watch dir is not set")
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(w.deps.CronSpec, w.Sweep); err != nil {
		return fmt.Errorf("schedule fact watch: %w", err)
	}
	c.Start()
	w.cron = c

	log.Printf("[watch] scheduler started (spec %q, dir %s)", w.deps.CronSpec, w.deps.Dir)
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (w *Watcher) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

// Sweep scans the drop directory once. Exported so the worker command can
// run a single pass without the scheduler.
func (w *Watcher) Sweep() {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := os.ReadDir(w.deps.Dir)
	if err != nil {
		log.Printf("[watch] read dir %s: %v", w.deps.Dir, err)
		return
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(w.deps.Dir, e.Name())
		if last, ok := w.seen[path]; ok && !info.ModTime().After(last) {
			continue
		}
		w.seen[path] = info.ModTime()

		w.analyzeFile(path, ext)
	}
}

func (w *Watcher) analyzeFile(path, ext string) {
	body, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[watch] read %s: %v", path, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.deps.Timeout)
	defer cancel()

	userID := w.watcherUser(ctx)

	var run *runs.AnalysisRun
	if w.deps.Runs != nil {
		run = &runs.AnalysisRun{UserID: userID, Source: runs.SourceWatcher, Status: runs.StatusRunning}
		if err := w.deps.Runs.Create(ctx, run); err != nil {
			log.Printf("[watch] create run for %s: %v", path, err)
			run = nil
		}
	}

	var (
		res    *service.Result
		runErr error
	)
	if ext == ".json" {
		res, runErr = service.AnalyzeJSON(ctx, body, w.deps.Thresholds)
	} else {
		res, runErr = service.AnalyzeYAML(ctx, body, w.deps.Thresholds)
	}

	if res == nil {
		log.Printf("[watch] analyze %s: %v", path, runErr)
		w.finish(ctx, run, runs.StatusFailed, nil, runErr)
		return
	}

	status := runs.StatusCompleted
	var partial *detect.PartialAnalysisError
	if errors.As(runErr, &partial) {
		status = runs.StatusPartial
		log.Printf("[watch] analyze %s: partial result, missing %v", path, partial.Missing)
	}

	if w.deps.ArchiveDir != "" {
		runID := ""
		if run != nil {
			runID = run.RunID
		}
		if _, err := archive.Save(w.deps.ArchiveDir, runID, filepath.Base(path), body, ext); err != nil {
			log.Printf("[watch] archive %s: %v", path, err)
		}
	}

	if run != nil {
		if w.deps.Reports != nil && userID != "" {
			if _, err := w.deps.Reports.Save(ctx, run.RunID, userID, res.Report, res.Plans); err != nil {
				log.Printf("[watch] persist report run=%s: %v", run.RunID, err)
			}
		}
		if w.deps.History != nil {
			if err := w.deps.History.InsertRunFindings(ctx, run.RunID, res.Report.Findings); err != nil {
				log.Printf("[watch] persist history run=%s: %v", run.RunID, err)
			}
		}
	}
	w.finish(ctx, run, status, res.Report, runErr)

	log.Printf("[watch] analyzed %s: %d findings", filepath.Base(path), len(res.Report.Findings))
}

// watcherUser resolves (and caches) the users-table id watcher runs are
// stored under. Callers hold w.mu.
func (w *Watcher) watcherUser(ctx context.Context) string {
	if w.userID != "" {
		return w.userID
	}
	if w.deps.Users == nil {
		return ""
	}

	uid, err := w.deps.Users.EnsureUser(ctx, users.UpsertUser{
		FirebaseUID: watcherUID,
		DisplayName: "Fact watcher",
	})
	if err != nil {
		log.Printf("[watch] ensure watcher user: %v", err)
		return ""
	}
	w.userID = uid
	return uid
}

func (w *Watcher) finish(ctx context.Context, run *runs.AnalysisRun, status string, report *domain.AnalysisReport, runErr error) {
	if w.deps.Runs == nil || run == nil {
		return
	}

	findingCount, criticalCount := 0, 0
	if report != nil {
		findingCount = len(report.Findings)
		for _, f := range report.Findings {
			if f.Severity == domain.SeverityCritical {
				criticalCount++
			}
		}
	}
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}

	if err := w.deps.Runs.Finish(ctx, run.RunID, status, findingCount, criticalCount, errMsg); err != nil {
		log.Printf("[watch] finish run=%s: %v", run.RunID, err)
	}
}
