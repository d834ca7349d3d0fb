// Package httpapi implements the HTTP service surface spec.md §6 names
// informationally: POST /register_query, POST /match_document, GET /,
// plus GET /metrics for the Prometheus telemetry. It is a thin JSON front
// end over a *monitor.Monitor — decomposition,
// presearching, and the two-phase match pipeline all live there.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/fenwick-labs/percolate/internal/apperr"
	"github.com/fenwick-labs/percolate/internal/monitor"
	"github.com/fenwick-labs/percolate/internal/querytree"
	"github.com/fenwick-labs/percolate/internal/telemetry"
)

// requestIDHeader is the header a correlation id is echoed back on, so a
// caller can tie a response to the log lines s.logger emitted for it.
const requestIDHeader = "X-Request-Id"

// requestIDKey is the gin context key handlers read the id back from.
const requestIDKey = "request_id"

// requestIDMiddleware assigns every request a uuid for log correlation
// across register_query/match_document, mirroring the request-scoped
// logging the MCP surface does for the same two operations.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	id, _ := c.Get(requestIDKey)
	s, _ := id.(string)
	return s
}

// Recorder is the audit sink register_query calls are mirrored to. It is
// an interface rather than *audit.Log directly so tests can stub it, and
// so a server started with auditing disabled can pass a no-op.
type Recorder interface {
	RecordRegistration(queryID uint64, queryText string) error
}

// noopRecorder discards every registration; used when auditing is
// disabled in configuration.
type noopRecorder struct{}

func (noopRecorder) RecordRegistration(uint64, string) error { return nil }

// NoopRecorder is the Recorder used when the audit trail is disabled.
var NoopRecorder Recorder = noopRecorder{}

// Server wires a *monitor.Monitor and a *monitor.MatcherPool to the
// package's four HTTP endpoints.
type Server struct {
	monitor  *monitor.Monitor
	matchers *monitor.MatcherPool
	audit    Recorder
	router   *gin.Engine
}

// Options configures a new Server.
type Options struct {
	Debug bool // adds gin's request logger when true
}

// NewServer builds a Server. audit may be NoopRecorder.
func NewServer(m *monitor.Monitor, matchers *monitor.MatcherPool, audit Recorder, opts Options) *Server {
	if audit == nil {
		audit = NoopRecorder
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("percolated"))
	router.Use(requestIDMiddleware())
	if opts.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{monitor: m, matchers: matchers, audit: audit, router: router}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/", s.handleLiveness)
	s.router.POST("/register_query", s.handleRegisterQuery)
	s.router.POST("/match_document", s.handleMatchDocument)
	s.router.GET("/metrics", gin.WrapH(telemetry.Handler()))
}

// Run starts the HTTP server on addr and blocks until it exits, returning
// its error.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler returns the underlying http.Handler, mostly for tests that want
// an httptest.Server without binding a real port.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleLiveness(c *gin.Context) {
	c.String(http.StatusOK, "percolated: ok")
}

type registerQueryRequest struct {
	ID    uint64 `json:"id"`
	Query string `json:"query" binding:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// handleRegisterQuery parses req.Query through bleve's query-string
// mini-language (the "external query parser" spec.md §6 assumes),
// wraps the result in querytree.Opaque, and registers it.
func (s *Server) handleRegisterQuery(c *gin.Context) {
	var req registerQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	bq := bleve.NewQueryStringQuery(req.Query)
	q := &querytree.Opaque{Inner: bq}

	if err := s.monitor.RegisterQuery(monitor.RegisteredQuery{ID: req.ID, Query: q}); err != nil {
		writeError(c, err)
		return
	}

	telemetry.RecordRegistration()
	if err := s.audit.RecordRegistration(req.ID, monitor.Describe(q)); err != nil {
		slog.Warn("audit log write failed",
			slog.String("request_id", requestID(c)),
			slog.Uint64("query_id", req.ID),
			slog.String("error", err.Error()))
	}

	c.JSON(http.StatusOK, gin.H{"id": req.ID})
}

type metricsResponse struct {
	TotalQueries       int `json:"total_queries"`
	ProspectiveQueries int `json:"prospective_queries"`
	ActualMatches      int `json:"actual_matches"`
}

type matchDocumentResponse struct {
	IDs     []uint64        `json:"ids"`
	Metrics metricsResponse `json:"metrics"`
}

// handleMatchDocument binds the request body directly as the document map
// spec.md §6 describes ({field: string, ...}), runs it through a pooled
// Matcher keyed by client remote address, and reports the match set plus
// the Phase 1/Phase 2 cost.
func (s *Server) handleMatchDocument(c *gin.Context) {
	var doc map[string]any
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	mt, err := s.matchers.Get(c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}

	start := time.Now()
	ids, metrics, err := mt.MatchDocument(doc)
	telemetry.RecordMatch(metrics, time.Since(start))
	if err != nil {
		slog.Warn("match_document failed",
			slog.String("request_id", requestID(c)), slog.String("error", err.Error()))
		writeError(c, err)
		return
	}

	idList := make([]uint64, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}

	c.JSON(http.StatusOK, matchDocumentResponse{
		IDs: idList,
		Metrics: metricsResponse{
			TotalQueries:       metrics.TotalQueries,
			ProspectiveQueries: metrics.ProspectiveQueries,
			ActualMatches:      metrics.ActualMatches,
		},
	})
}

func writeError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Category {
		case apperr.CategorySchema, apperr.CategoryArgument:
			status = http.StatusBadRequest
		case apperr.CategoryIndex, apperr.CategoryInternal:
			status = http.StatusInternalServerError
		}
		c.JSON(status, errorResponse{Error: appErr.Message, Code: appErr.Code})
		return
	}
	c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
