// Package monitor implements the standing-query registry and the two-phase
// match pipeline (§3/§4/§9): RegisterQuery decomposes a query into atomic
// sub-queries and indexes a synthetic document per sub-query into an
// in-memory bleve index; MatchDocument presearches that index for
// candidate query ids (Phase 1), then re-evaluates each candidate's
// original query tree against an ephemeral single-document index
// (Phase 2).
package monitor

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/fenwick-labs/percolate/internal/apperr"
	"github.com/fenwick-labs/percolate/internal/decomposer"
	"github.com/fenwick-labs/percolate/internal/presearcher"
	"github.com/fenwick-labs/percolate/internal/schema"
)

// Metrics reports the cost of one MatchDocument call (§9 telemetry).
type Metrics struct {
	TotalQueries       int
	ProspectiveQueries int
	ActualMatches      int
}

// Monitor owns the query index, the registered-query store, the
// presearcher, and the document schema it was built against. The schema
// passed to the presearcher is the plain document schema: reserved fields
// never need a schema.FieldSpec of their own since the presearcher
// addresses them by the schema.QueryIDField/AnyTermField constants
// directly rather than through a field lookup (§4.2).
type Monitor struct {
	queryIndex     bleve.Index
	store          *queryStore
	presearcher    presearcher.Presearcher
	documentSchema *schema.Schema
	tokenizers     *schema.TokenizerManager
}

// NewMonitor builds a Monitor over documentSchema, backed by an in-memory
// query index whose mapping is documentSchema's fields plus the two
// reserved fields (§3).
func NewMonitor(documentSchema *schema.Schema, p presearcher.Presearcher) (*Monitor, error) {
	tokenizers := schema.NewTokenizerManager()

	indexMapping, err := buildQueryIndexMapping(documentSchema, tokenizers)
	if err != nil {
		return nil, apperr.IndexError(apperr.ErrCodeIndexCommit, err)
	}

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, apperr.IndexError(apperr.ErrCodeIndexCommit, err)
	}

	return &Monitor{
		queryIndex:     idx,
		store:          newQueryStore(),
		presearcher:    p,
		documentSchema: documentSchema,
		tokenizers:     tokenizers,
	}, nil
}

// Schema returns the user document schema this Monitor was built against.
func (m *Monitor) Schema() *schema.Schema {
	return m.documentSchema
}

// Tokenizers returns the tokenizer manager backing both indexes.
func (m *Monitor) Tokenizers() *schema.TokenizerManager {
	return m.tokenizers
}

// RegisterQuery decomposes rq.Query and indexes one synthetic document per
// atomic sub-query, each stamped with rq.ID via the reserved query-id
// field (§4.3.1). Re-registering an id overwrites the store entry; any
// synthetic documents left behind by a prior registration under the same
// id are not evicted (§9 open question).
func (m *Monitor) RegisterQuery(rq RegisteredQuery) error {
	subqueries := decomposer.Decompose(rq.Query)

	batch := m.queryIndex.NewBatch()
	for i, sub := range subqueries {
		doc, err := m.presearcher.ConvertQueryToDocument(sub, m.documentSchema)
		if err != nil {
			return err
		}
		doc[schema.QueryIDField] = float64(rq.ID)

		docID := fmt.Sprintf("%d-%d", rq.ID, i)
		if err := batch.Index(docID, doc); err != nil {
			return apperr.IndexError(apperr.ErrCodeIndexCommit, err)
		}
	}

	if err := m.queryIndex.Batch(batch); err != nil {
		return apperr.IndexError(apperr.ErrCodeIndexCommit, err)
	}

	m.store.Insert(rq)
	return nil
}

// MatchDocument runs a one-shot Phase 1 / Phase 2 match against doc. For
// repeated matching, prefer Matcher, which reuses its ephemeral index and
// writer across calls (§9, "the ephemeral writer is not shared across
// threads").
func (m *Monitor) MatchDocument(doc map[string]any) (map[uint64]struct{}, Metrics, error) {
	matcher, err := m.Matcher()
	if err != nil {
		return nil, Metrics{}, err
	}
	return matcher.MatchDocument(doc)
}

// Matcher returns a new Matcher handle bound to this Monitor.
func (m *Monitor) Matcher() (*Matcher, error) {
	return newMatcher(m)
}
