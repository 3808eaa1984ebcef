package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/archlens/archlens-backend/internal/analysis/export"
	"github.com/archlens/archlens-backend/internal/analysis/graph"
	"github.com/archlens/archlens-backend/internal/analysis/ingest/parser"
	"github.com/archlens/archlens-backend/internal/analysis/ingest/validator"
)

// GraphDOT renders the posted fact document's topology as a Graphviz
// digraph without running any detectors. The same format selection as
// AnalyzeRaw applies; ?title= labels the graph.
func (h *Handler) GraphDOT(c *gin.Context) {
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

	var doc *parser.Document
	if isYAMLRequest(c) {
		doc, err = parser.ParseYAMLBytes(body)
	} else {
		doc, err = parser.ParseJSONBytes(body)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parse document: " + err.Error()})
		return
	}
	if err := validator.Validate(doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	topo, err := graph.Build(&doc.FactModel)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dot := export.ToDOT(topo, c.Query("title"))
	c.Data(http.StatusOK, "text/vnd.graphviz; charset=utf-8", []byte(dot))
}
