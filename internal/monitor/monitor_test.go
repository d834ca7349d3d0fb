package monitor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-labs/percolate/internal/presearcher"
	"github.com/fenwick-labs/percolate/internal/querytree"
	"github.com/fenwick-labs/percolate/internal/schema"
)

func newTestMonitor(t *testing.T) *Monitor {
	t.Helper()
	docSchema, err := schema.New(schema.FieldSpec{
		Name:     "body",
		Type:     schema.Text,
		Indexing: &schema.IndexingOptions{Tokenizer: "default"},
	})
	require.NoError(t, err)

	p := presearcher.NewTermFilteredPresearcher(presearcher.NewTfIdfScorer())
	m, err := NewMonitor(docSchema, p)
	require.NoError(t, err)
	return m
}

func term(field, value string) querytree.Query {
	return &querytree.Term{Field: field, Value: value}
}

func TestMonitor_BasicTermQuery(t *testing.T) {
	m := newTestMonitor(t)

	const id = uint64(0)
	require.NoError(t, m.RegisterQuery(RegisteredQuery{ID: id, Query: term("body", "bloomberg")}))

	matches, _, err := m.MatchDocument(map[string]any{"body": "Michael Bloomberg"})
	require.NoError(t, err)
	assert.Contains(t, matches, id)

	noMatches, _, err := m.MatchDocument(map[string]any{"body": "Michael Bay"})
	require.NoError(t, err)
	assert.Empty(t, noMatches)
}

func TestMonitor_BooleanShouldQuery(t *testing.T) {
	m := newTestMonitor(t)

	const id = uint64(0)
	q := &querytree.Boolean{Clauses: []querytree.Clause{
		{Occur: querytree.Should, Query: term("body", "trump")},
		{Occur: querytree.Should, Query: term("body", "bloomberg")},
	}}
	require.NoError(t, m.RegisterQuery(RegisteredQuery{ID: id, Query: q}))

	cases := []struct {
		body    string
		matches bool
	}{
		{"Michael Bloomberg", true},
		{"Donald Trump", true},
		{"Bloomberg Trump", true},
		{"Rishi Sunak", false},
	}

	for _, c := range cases {
		matches, _, err := m.MatchDocument(map[string]any{"body": c.body})
		require.NoError(t, err)
		if c.matches {
			assert.Contains(t, matches, id, "expected %q to match", c.body)
		} else {
			assert.Empty(t, matches, "expected %q not to match", c.body)
		}
	}
}

func TestMonitor_MustNotExclusion(t *testing.T) {
	// spec.md §8 scenario 4: (Must diary)(MustNot girl).
	m := newTestMonitor(t)

	const id = uint64(7)
	q := &querytree.Boolean{Clauses: []querytree.Clause{
		{Occur: querytree.Must, Query: term("body", "diary")},
		{Occur: querytree.MustNot, Query: term("body", "girl")},
	}}
	require.NoError(t, m.RegisterQuery(RegisteredQuery{ID: id, Query: q}))

	matches, _, err := m.MatchDocument(map[string]any{"body": "diary of a wimpy kid"})
	require.NoError(t, err)
	assert.Contains(t, matches, id)

	excluded, _, err := m.MatchDocument(map[string]any{"body": "diary of a young girl"})
	require.NoError(t, err)
	assert.Empty(t, excluded)
}

func TestMonitor_BoostSurvivesDecomposition(t *testing.T) {
	// spec.md §8 scenario 5: Boost(body:barack, 2.0) OR body:biden.
	m := newTestMonitor(t)

	const id = uint64(3)
	q := &querytree.Boolean{Clauses: []querytree.Clause{
		{Occur: querytree.Should, Query: &querytree.Boost{Inner: term("body", "barack"), Factor: 2.0}},
		{Occur: querytree.Should, Query: term("body", "biden")},
	}}
	require.NoError(t, m.RegisterQuery(RegisteredQuery{ID: id, Query: q}))

	matches, _, err := m.MatchDocument(map[string]any{"body": "barack obama"})
	require.NoError(t, err)
	assert.Contains(t, matches, id)

	matches, _, err = m.MatchDocument(map[string]any{"body": "joe biden"})
	require.NoError(t, err)
	assert.Contains(t, matches, id)
}

func TestMonitor_ReRegisteringOverwritesStoreEntry(t *testing.T) {
	m := newTestMonitor(t)

	const id = uint64(1)
	require.NoError(t, m.RegisterQuery(RegisteredQuery{ID: id, Query: term("body", "alpha")}))
	require.NoError(t, m.RegisterQuery(RegisteredQuery{ID: id, Query: term("body", "beta")}))

	rq, ok := m.store.Get(id)
	require.True(t, ok)
	assert.Equal(t, term("body", "beta"), rq.Query)
}

func TestMonitor_MetricsReportCounts(t *testing.T) {
	m := newTestMonitor(t)

	require.NoError(t, m.RegisterQuery(RegisteredQuery{ID: 1, Query: term("body", "alpha")}))
	require.NoError(t, m.RegisterQuery(RegisteredQuery{ID: 2, Query: term("body", "beta")}))

	_, metrics, err := m.MatchDocument(map[string]any{"body": "alpha"})
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.TotalQueries)
	assert.Equal(t, 1, metrics.ActualMatches)
}

func TestMonitor_ConcurrentRegisterAndMatch(t *testing.T) {
	m := newTestMonitor(t)

	const n = 256
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			_ = m.RegisterQuery(RegisteredQuery{ID: id, Query: term("body", "concurrent")})
		}(uint64(i))
	}
	wg.Wait()

	matches, _, err := m.MatchDocument(map[string]any{"body": "concurrent access"})
	require.NoError(t, err)
	assert.Len(t, matches, n)
}
