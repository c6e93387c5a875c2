package ui

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leadtime/adapters/postgres"
	"leadtime/app"
	"leadtime/domain/core"
	"leadtime/internal/errors"
)

// Server exposes the evidence document, forecasts and a rendered report
// over HTTP.
type Server struct {
	router   *gin.Engine
	pipeline *app.PipelineService
	forecast *app.ForecastService
	store    *postgres.Store // nil when no database is configured
	source   string          // default feed source
}

// NewServer creates a server wired to the pipeline and, optionally, the
// evidence store.
func NewServer(pipeline *app.PipelineService, forecast *app.ForecastService, store *postgres.Store, source string) *Server {
	s := &Server{
		router:   gin.Default(),
		pipeline: pipeline,
		forecast: forecast,
		store:    store,
		source:   source,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/api/stats", s.handleStats)
	s.router.GET("/api/forecast", s.handleForecast)
	s.router.GET("/api/estimates", s.handleEstimates)
	s.router.GET("/api/summary", s.handleSummary)
	s.router.GET("/report", s.handleReport)
}

// Run starts the server on the given port
func (s *Server) Run(port string) error {
	log.Printf("[Server] listening on :%s", port)
	return s.router.Run(":" + port)
}

// Router returns the underlying gin engine, for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStats(c *gin.Context) {
	source, ok := s.feedSource(c)
	if !ok {
		return
	}

	res, err := s.pipeline.Run(c.Request.Context(), source)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Document)
}

func (s *Server) handleForecast(c *gin.Context) {
	source, ok := s.feedSource(c)
	if !ok {
		return
	}

	doc, err := s.forecast.Run(c.Request.Context(), source, time.Now())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleEstimates(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no evidence store configured"})
		return
	}

	estimates, err := s.store.ListEstimates(c.Request.Context(), c.Query("assignee"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"estimates": estimates})
}

func (s *Server) handleSummary(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no evidence store configured"})
		return
	}

	assignee := c.Query("assignee")
	estimate := c.Query("estimate")
	if assignee == "" || estimate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "summary requires assignee and estimate"})
		return
	}

	summary, err := s.store.LatestSummary(c.Request.Context(), assignee, estimate)
	if err != nil {
		s.renderError(c, errors.DatabaseError(err.Error()))
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no summary stored for (%s, %s)", assignee, estimate)})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleReport(c *gin.Context) {
	source, ok := s.feedSource(c)
	if !ok {
		return
	}

	res, err := s.pipeline.Run(c.Request.Context(), source)
	if err != nil {
		s.renderError(c, err)
		return
	}

	md := BuildMarkdownReport(res.Document)
	c.Data(http.StatusOK, "text/html; charset=utf-8", RenderHTML(md))
}

// feedSource resolves the feed for a request: explicit query parameter
// first, configured default second.
func (s *Server) feedSource(c *gin.Context) (string, bool) {
	if feed := c.Query("feed"); feed != "" {
		return feed, true
	}
	if s.source != "" {
		return s.source, true
	}
	err := errors.FeedInvalid("no feed source: pass ?feed= or set FEED_SOURCE")
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": err.Code})
	return "", false
}

func (s *Server) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if core.IsIngestionError(err) || core.IsDerivationError(err) {
		status = http.StatusUnprocessableEntity
	}
	log.Printf("[Server] request failed: %v", err)
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  codeFor(err),
	})
}

// codeFor maps pipeline errors onto the application error codes
func codeFor(err error) string {
	switch {
	case errors.IsAppError(err):
		return errors.GetCode(err)
	case core.IsIngestionError(err):
		return errors.CodeFeedInvalid
	case core.IsDerivationError(err):
		return errors.CodeDerivation
	case core.IsAggregationError(err):
		return errors.CodeAggregation
	}
	return errors.CodeInternalError
}
