package http

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Register mounts the analysis API on the given group:
//
//	POST /analysis/analyze-raw  raw JSON or YAML fact document
//	POST /analysis/analyze      multipart fact document upload
//	POST /analysis/graph/dot    topology of a fact document as Graphviz DOT
//	GET  /analysis/runs         the user's runs
//	GET  /analysis/runs/:id     one run record
//	GET  /analysis/reports      the user's stored reports
//	GET  /analysis/reports/:id  one stored report by run id
//	GET  /analysis/trends       per-day finding counts
func (h *Handler) Register(rg gin.IRouter) {
	g := rg.Group("/analysis")

	g.POST("/analyze-raw", h.AnalyzeRaw)
	g.POST("/analyze", h.AnalyzeUpload)
	g.POST("/graph/dot", h.GraphDOT)

	g.GET("/runs", h.ListRuns)
	g.GET("/runs/:id", h.GetRun)

	g.GET("/reports", h.ListReports)
	g.GET("/reports/:id", h.GetReport)

	g.GET("/trends", h.GetTrends)
}

func isYAMLRequest(c *gin.Context) bool {
	if strings.EqualFold(c.Query("format"), "yaml") {
		return true
	}
	ct := c.ContentType()
	return strings.Contains(ct, "yaml") || strings.Contains(ct, "yml")
}
