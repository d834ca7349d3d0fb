package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fenwick-labs/percolate/internal/audit"
	"github.com/fenwick-labs/percolate/internal/monitor"
	"github.com/fenwick-labs/percolate/internal/querytree"
	"github.com/fenwick-labs/percolate/internal/telemetry"
	"github.com/fenwick-labs/percolate/pkg/version"
)

// QueryParser turns a register_query call's query string into a query
// tree. cmd/percolated/cmd/serve.go supplies one that wraps
// bleve.NewQueryStringQuery in querytree.Opaque. Declaring it as a func
// type keeps this package from importing bleve directly, matching how the teacher kept embedder/engine behind
// interfaces it could swap or stub in tests.
type QueryParser func(string) querytree.Query

// Server is the MCP server exposing register_query and match_document as
// tools for agent clients, the same two operations internal/httpapi
// serves over HTTP.
type Server struct {
	mcp      *mcp.Server
	monitor  *monitor.Monitor
	matchers *monitor.MatcherPool
	audit    *audit.Log // nil when auditing is disabled
	parse    QueryParser
	logger   *slog.Logger
}

// NewServer creates a new MCP server bound to m. auditLog may be nil to
// disable the registration audit trail.
func NewServer(m *monitor.Monitor, matchers *monitor.MatcherPool, auditLog *audit.Log, parse QueryParser) (*Server, error) {
	if m == nil {
		return nil, errors.New("monitor is required")
	}
	if matchers == nil {
		return nil, errors.New("matcher pool is required")
	}
	if parse == nil {
		return nil, errors.New("query parser is required")
	}

	s := &Server{
		monitor:  m,
		matchers: matchers,
		audit:    auditLog,
		parse:    parse,
		logger:   slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "percolated",
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	s.logger.Debug("registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "register_query",
		Description: "Register a standing query against the percolator. Every future match_document call checks new documents against it.",
	}, s.handleRegisterQuery)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "match_document",
		Description: "Match a document against every currently registered standing query, returning the ids of the ones that matched.",
	}, s.handleMatchDocument)

	s.logger.Info("MCP tools registered", slog.Int("count", 2))
}

func (s *Server) handleRegisterQuery(ctx context.Context, _ *mcp.CallToolRequest, input RegisterQueryInput) (
	*mcp.CallToolResult,
	RegisterQueryOutput,
	error,
) {
	requestID := uuid.New().String()

	if input.Query == "" {
		return nil, RegisterQueryOutput{}, NewInvalidParamsError("query is required")
	}

	q := s.parse(input.Query)
	if err := s.monitor.RegisterQuery(monitor.RegisteredQuery{ID: input.ID, Query: q}); err != nil {
		return nil, RegisterQueryOutput{}, MapError(err)
	}

	telemetry.RecordRegistration()
	if s.audit != nil {
		if err := s.audit.RecordRegistration(input.ID, monitor.Describe(q)); err != nil {
			s.logger.Warn("audit log write failed",
				slog.String("request_id", requestID),
				slog.Uint64("query_id", input.ID), slog.String("error", err.Error()))
		}
	}

	return nil, RegisterQueryOutput{ID: input.ID}, nil
}

func (s *Server) handleMatchDocument(ctx context.Context, _ *mcp.CallToolRequest, input MatchDocumentInput) (
	*mcp.CallToolResult,
	MatchDocumentOutput,
	error,
) {
	requestID := uuid.New().String()

	if len(input.Document) == 0 {
		return nil, MatchDocumentOutput{}, NewInvalidParamsError("document is required")
	}

	mt, err := s.matchers.Get("mcp")
	if err != nil {
		return nil, MatchDocumentOutput{}, MapError(err)
	}

	start := time.Now()
	ids, metrics, err := mt.MatchDocument(input.Document)
	telemetry.RecordMatch(metrics, time.Since(start))
	if err != nil {
		s.logger.Warn("match_document failed",
			slog.String("request_id", requestID), slog.String("error", err.Error()))
		return nil, MatchDocumentOutput{}, MapError(err)
	}

	idList := make([]uint64, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}

	out := MatchDocumentOutput{
		IDs:                idList,
		TotalQueries:       metrics.TotalQueries,
		ProspectiveQueries: metrics.ProspectiveQueries,
		ActualMatches:      metrics.ActualMatches,
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatMatchResult(out)}},
	}
	return result, out, nil
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unsupported MCP transport: %s (supported: stdio)", transport)
	}
}
