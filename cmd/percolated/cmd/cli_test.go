package cmd

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-labs/percolate/internal/httpapi"
	"github.com/fenwick-labs/percolate/internal/monitor"
	"github.com/fenwick-labs/percolate/internal/presearcher"
	"github.com/fenwick-labs/percolate/internal/schema"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// startTestServer spins up an httptest.Server over a fresh in-memory
// Monitor with a single "body" text field, for exercising the CLI's HTTP
// client subcommands end to end.
func startTestServer(t *testing.T) *httptest.Server {
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

	pool, err := monitor.NewMatcherPool(m, 8)
	require.NoError(t, err)

	srv := httpapi.NewServer(m, pool, httpapi.NoopRecorder, httpapi.Options{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}
