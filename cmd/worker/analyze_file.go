package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/archlens/archlens-backend/internal/analysis/config"
	"github.com/archlens/archlens-backend/internal/analysis/detect"
	"github.com/archlens/archlens-backend/internal/analysis/service"
)

// analyzeFile reads a fact document, runs the analysis and prints the
// report with its remediation plans as indented JSON on stdout.
func analyzeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		res    *service.Result
		runErr error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		res, runErr = service.AnalyzeYAML(ctx, b, config.FromEnv())
	default:
		res, runErr = service.AnalyzeJSON(ctx, b, config.FromEnv())
	}
	if res == nil {
		return runErr
	}

	var partial *detect.PartialAnalysisError
	if errors.As(runErr, &partial) {
		log.Printf("partial result, missing detectors: %v", partial.Missing)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
