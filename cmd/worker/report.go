package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/archlens/archlens-backend/internal/analysis/archive"
	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/detect"
	"github.com/archlens/archlens-backend/internal/analysis/export"
	"github.com/archlens/archlens-backend/internal/analysis/service"
)

// runReport analyzes one fact document and writes the full artifact set
// into outDir: graph.dot, report.json, report.yaml, plus an archived copy
// of the input under outDir/snapshots.
func runReport(path, outDir string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = "out"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ext := strings.ToLower(filepath.Ext(path))
	var (
		res    *service.Result
		runErr error
	)
	if ext == ".yaml" || ext == ".yml" {
		res, runErr = service.AnalyzeYAML(ctx, body, config.FromEnv())
	} else {
		res, runErr = service.AnalyzeJSON(ctx, body, config.FromEnv())
	}
	if res == nil {
		return runErr
	}

	var partial *detect.PartialAnalysisError
	if errors.As(runErr, &partial) {
		log.Printf("partial result, missing detectors: %v", partial.Missing)
	}

	dotPath := filepath.Join(outDir, "graph.dot")
	if err := writeDOT(path, dotPath); err != nil {
		return err
	}
	jsonPath := filepath.Join(outDir, "report.json")
	if err := export.WriteJSON(jsonPath, res); err != nil {
		return err
	}
	yamlPath := filepath.Join(outDir, "report.yaml")
	if err := export.WriteYAML(yamlPath, res); err != nil {
		return err
	}

	snap, err := archive.Save(outDir, "", filepath.Base(path), body, ext)
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s, %s, %s (input archived at %s)\n", dotPath, jsonPath, yamlPath, snap.Dir)
	fmt.Printf("findings (%d):\n", len(res.Report.Findings))
	for _, f := range res.Report.Findings {
		fmt.Printf(" - [%s] %s: %s\n", f.Severity, f.PatternType, strings.Join(f.AffectedEntities, ", "))
	}
	return nil
}
