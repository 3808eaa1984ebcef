package http

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/detect"
	"github.com/archlens/archlens-backend/internal/analysis/domain"
	"github.com/archlens/archlens-backend/internal/analysis/service"
	"github.com/archlens/archlens-backend/internal/api/http/middleware"
	"github.com/archlens/archlens-backend/internal/auth"
	"github.com/archlens/archlens-backend/internal/reports"
	"github.com/archlens/archlens-backend/internal/runs"
	"github.com/archlens/archlens-backend/internal/storage/postgres"
)

// Handler serves the analysis API. The persistence dependencies are
// optional: with a nil repo the corresponding feature degrades (no run
// tracking, no stored reports) while analysis itself keeps working.
type Handler struct {
	baseCfg config.Thresholds
	timeout time.Duration

	runRepo    *runs.Repo
	reportRepo *reports.Repo
	history    *postgres.HistoryStore
}

func NewHandler(baseCfg config.Thresholds, timeout time.Duration, runRepo *runs.Repo, reportRepo *reports.Repo, history *postgres.HistoryStore) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{
		baseCfg:    baseCfg,
		timeout:    timeout,
		runRepo:    runRepo,
		reportRepo: reportRepo,
		history:    history,
	}
}

// AnalyzeRaw runs the engine over a fact document posted as the raw request
// body. YAML is selected by Content-Type (or ?format=yaml); anything else is
// treated as JSON.
func (h *Handler) AnalyzeRaw(c *gin.Context) {
	defer c.Request.Body.Close()
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body: " + err.Error()})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fact document is required"})
		return
	}

	h.analyze(c, body, isYAMLRequest(c), runs.SourceUpload)
}

// AnalyzeUpload runs the engine over an uploaded fact document. The format
// follows the file extension.
func (h *Handler) AnalyzeUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open upload: " + err.Error()})
		return
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read upload: " + err.Error()})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	h.analyze(c, body, ext == ".yaml" || ext == ".yml", runs.SourceUpload)
}

func (h *Handler) analyze(c *gin.Context, body []byte, asYAML bool, source string) {
	userID := auth.UserDBID(c)

	var run *runs.AnalysisRun
	if h.runRepo != nil {
		run = &runs.AnalysisRun{UserID: userID, Source: source, Status: runs.StatusRunning}
		if err := h.runRepo.Create(c.Request.Context(), run); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create run"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var (
		res    *service.Result
		runErr error
	)
	if asYAML {
		res, runErr = service.AnalyzeYAML(ctx, body, h.baseCfg)
	} else {
		res, runErr = service.AnalyzeJSON(ctx, body, h.baseCfg)
	}

	// Fatal: nothing analyzable came back.
	if res == nil {
		h.finishRun(c, run, runs.StatusFailed, nil, runErr)
		c.JSON(http.StatusBadRequest, gin.H{"error": runErr.Error()})
		return
	}

	status := runs.StatusCompleted
	resp := AnalyzeResponse{
		Status: status,
		Report: res.Report,
		Plans:  res.Plans,
	}

	var partial *detect.PartialAnalysisError
	if errors.As(runErr, &partial) {
		status = runs.StatusPartial
		resp.Status = status
		resp.Missing = partial.Missing
	}

	if warn := h.persist(c, run, userID, res); warn != "" {
		resp.Warning = warn
	}
	h.finishRun(c, run, status, res.Report, runErr)
	if run != nil {
		resp.RunID = run.RunID
	}

	c.JSON(http.StatusOK, resp)
}

// persist stores the report document and the flattened finding rows.
// Failures are reported as a warning, not an error: the analysis result in
// the response is already complete.
func (h *Handler) persist(c *gin.Context, run *runs.AnalysisRun, userID string, res *service.Result) string {
	if run == nil {
		return ""
	}

	rid := middleware.GetRequestID(c.Request.Context())
	if h.reportRepo != nil && userID != "" {
		if _, err := h.reportRepo.Save(c.Request.Context(), run.RunID, userID, res.Report, res.Plans); err != nil {
			log.Printf("[analysis] persist report run=%s req=%s: %v", run.RunID, rid, err)
			return "report not persisted: " + err.Error()
		}
	}
	if h.history != nil {
		if err := h.history.InsertRunFindings(c.Request.Context(), run.RunID, res.Report.Findings); err != nil {
			log.Printf("[analysis] persist history run=%s req=%s: %v", run.RunID, rid, err)
			return "finding history not persisted: " + err.Error()
		}
	}
	return ""
}

func (h *Handler) finishRun(c *gin.Context, run *runs.AnalysisRun, status string, report *domain.AnalysisReport, runErr error) {
	if h.runRepo == nil || run == nil {
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

	if err := h.runRepo.Finish(c.Request.Context(), run.RunID, status, findingCount, criticalCount, errMsg); err != nil {
		log.Printf("[analysis] finish run=%s: %v", run.RunID, err)
	}
}

// GetRun retrieves an analysis run by ID.
func (h *Handler) GetRun(c *gin.Context) {
	if h.runRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run tracking is disabled"})
		return
	}

	runID := c.Param("id")
	run, err := h.runRepo.GetByRunID(c.Request.Context(), runID)
	if err != nil {
		if err == runs.ErrRunNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get run"})
		return
	}

	c.JSON(http.StatusOK, RunResponse{Run: run})
}

// ListRuns retrieves the authenticated user's runs, newest first.
func (h *Handler) ListRuns(c *gin.Context) {
	if h.runRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run tracking is disabled"})
		return
	}

	userID := auth.UserDBID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	list, err := h.runRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	c.JSON(http.StatusOK, RunListResponse{Runs: list})
}

// GetReport retrieves the stored report of one run.
func (h *Handler) GetReport(c *gin.Context) {
	if h.reportRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report storage is disabled"})
		return
	}

	runID := c.Param("id")
	sr, err := h.reportRepo.GetByRunID(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, reports.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get report"})
		return
	}

	c.JSON(http.StatusOK, sr)
}

// ListReports retrieves the authenticated user's stored reports.
func (h *Handler) ListReports(c *gin.Context) {
	if h.reportRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report storage is disabled"})
		return
	}

	userID := auth.UserDBID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, err := h.reportRepo.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": list})
}

// GetTrends returns per-day finding counts from the history store,
// optionally filtered by ?pattern= and bounded by ?days= (default 30).
func (h *Handler) GetTrends(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "finding history is disabled"})
		return
	}

	pattern := c.Query("pattern")
	if pattern != "" && !domain.PatternType(pattern).IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown pattern type"})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
		return
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	points, err := h.history.PatternTrend(c.Request.Context(), pattern, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query trends"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": points})
}
