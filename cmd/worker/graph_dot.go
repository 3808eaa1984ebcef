package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/archlens/archlens-backend/internal/analysis/export"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/ingest/parser"
	"github.com/archlens/archlens-backend/internal/analysis/ingest/validator"
)

// writeDOT renders a fact document as a Graphviz digraph, skipping the
// detectors entirely. The graph is titled after the input file.
func writeDOT(inPath, outPath string) error {
	b, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	doc, err := parseByExt(inPath, b)
	if err != nil {
		return err
	}
	if err := validator.Validate(doc); err != nil {
		return err
	}

	topo, err := graph.Build(&doc.FactModel)
	if err != nil {
		return err
	}

	title := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
	return os.WriteFile(outPath, []byte(export.ToDOT(topo, title)), 0o644)
}

// parseByExt picks the document codec from the file extension, defaulting
// to JSON like the HTTP layer does.
func parseByExt(path string, b []byte) (*parser.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parser.ParseYAMLBytes(b)
	default:
		return parser.ParseJSONBytes(b)
	}
}
