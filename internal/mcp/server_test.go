package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-labs/percolate/internal/audit"
	"github.com/fenwick-labs/percolate/internal/monitor"
	"github.com/fenwick-labs/percolate/internal/presearcher"
	"github.com/fenwick-labs/percolate/internal/querytree"
	"github.com/fenwick-labs/percolate/internal/schema"
)

func termParser(field string) QueryParser {
	return func(s string) querytree.Query {
		return &querytree.Term{Field: field, Value: s}
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	docSchema, err := schema.New(schema.FieldSpec{
		Name:     "body",
		Type:     schema.Text,
		Indexing: &schema.IndexingOptions{Tokenizer: "default"},
	})
	require.NoError(t, err)

	p := presearcher.NewTermFilteredPresearcher(presearcher.NewTfIdfScorer())
	m, err := monitor.NewMonitor(docSchema, p)
	require.NoError(t, err)

	pool, err := monitor.NewMatcherPool(m, 4)
	require.NoError(t, err)

	s, err := NewServer(m, pool, nil, termParser("body"))
	require.NoError(t, err)
	return s
}

func TestNewServer_RequiresMonitorAndPoolAndParser(t *testing.T) {
	docSchema, err := schema.New(schema.FieldSpec{Name: "body", Type: schema.Text, Indexing: &schema.IndexingOptions{Tokenizer: "default"}})
	require.NoError(t, err)
	p := presearcher.NewTermFilteredPresearcher(presearcher.NewTfIdfScorer())
	m, err := monitor.NewMonitor(docSchema, p)
	require.NoError(t, err)
	pool, err := monitor.NewMatcherPool(m, 4)
	require.NoError(t, err)

	_, err = NewServer(nil, pool, nil, termParser("body"))
	assert.Error(t, err)

	_, err = NewServer(m, nil, nil, termParser("body"))
	assert.Error(t, err)

	_, err = NewServer(m, pool, nil, nil)
	assert.Error(t, err)
}

func TestHandleRegisterQuery_ThenMatch(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, regOut, err := s.handleRegisterQuery(ctx, nil, RegisterQueryInput{ID: 1, Query: "bloomberg"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), regOut.ID)

	_, matchOut, err := s.handleMatchDocument(ctx, nil, MatchDocumentInput{Document: map[string]any{"body": "Michael Bloomberg"}})
	require.NoError(t, err)
	assert.Contains(t, matchOut.IDs, uint64(1))
	assert.Equal(t, 1, matchOut.TotalQueries)
}

func TestHandleRegisterQuery_RejectsEmptyQuery(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleRegisterQuery(context.Background(), nil, RegisterQueryInput{ID: 1, Query: ""})
	assert.Error(t, err)
}

func TestHandleMatchDocument_RejectsEmptyDocument(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleMatchDocument(context.Background(), nil, MatchDocumentInput{})
	assert.Error(t, err)
}

func TestHandleRegisterQuery_WritesAuditTrail(t *testing.T) {
	docSchema, err := schema.New(schema.FieldSpec{Name: "body", Type: schema.Text, Indexing: &schema.IndexingOptions{Tokenizer: "default"}})
	require.NoError(t, err)
	p := presearcher.NewTermFilteredPresearcher(presearcher.NewTfIdfScorer())
	m, err := monitor.NewMonitor(docSchema, p)
	require.NoError(t, err)
	pool, err := monitor.NewMatcherPool(m, 4)
	require.NoError(t, err)

	log, err := audit.Open(t.TempDir() + "/audit.db")
	require.NoError(t, err)
	defer func() { _ = log.Close() }()

	s, err := NewServer(m, pool, log, termParser("body"))
	require.NoError(t, err)

	_, _, err = s.handleRegisterQuery(context.Background(), nil, RegisterQueryInput{ID: 9, Query: "bay"})
	require.NoError(t, err)

	count, err := log.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
