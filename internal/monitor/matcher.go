package monitor

import (
	"sync"

	"github.com/blevesearch/bleve/v2"
	"golang.org/x/sync/errgroup"

	"github.com/fenwick-labs/percolate/internal/apperr"
	"github.com/fenwick-labs/percolate/internal/schema"
)

// Matcher is a reusable match-document handle: it owns one ephemeral
// single-document index and writer for Phase 2 re-evaluation, so repeated
// MatchDocument calls don't pay index-creation cost each time. A Matcher
// is not safe for concurrent use from multiple goroutines; Monitor.Matcher
// hands out a fresh one per caller (§9, "the ephemeral writer is not
// shared across threads").
type Matcher struct {
	monitor        *Monitor
	ephemeralIndex bleve.Index
}

func newMatcher(m *Monitor) (*Matcher, error) {
	mapping, err := buildDocumentIndexMapping(m.documentSchema, m.tokenizers)
	if err != nil {
		return nil, apperr.IndexError(apperr.ErrCodeIndexCommit, err)
	}

	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, apperr.IndexError(apperr.ErrCodeIndexCommit, err)
	}

	return &Matcher{monitor: m, ephemeralIndex: idx}, nil
}

// MatchDocument runs the two-phase pipeline (§4.3.2) against doc: Phase 1
// presearches the query index for candidate registered-query ids; Phase 2
// re-indexes doc into the ephemeral index and re-evaluates each
// candidate's original query tree against it exactly.
func (mt *Matcher) MatchDocument(doc map[string]any) (map[uint64]struct{}, Metrics, error) {
	metrics := Metrics{TotalQueries: mt.monitor.store.Len()}

	candidates, err := mt.presearchCandidates(doc)
	if err != nil {
		return nil, metrics, err
	}
	metrics.ProspectiveQueries = len(candidates)

	if err := mt.reindexDocument(doc); err != nil {
		return nil, metrics, err
	}

	matches := make(map[uint64]struct{})
	var mu sync.Mutex
	var g errgroup.Group
	for id := range candidates {
		rq, ok := mt.monitor.store.Get(id)
		if !ok {
			continue
		}

		g.Go(func() error {
			matched, err := mt.evaluate(rq)
			if err != nil {
				return err
			}
			if matched {
				mu.Lock()
				matches[rq.ID] = struct{}{}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, metrics, err
	}
	metrics.ActualMatches = len(matches)

	return matches, metrics, nil
}

// presearchCandidates runs Phase 1: converts doc into a candidate-selection
// query via the presearcher and searches the query index, harvesting the
// distinct registered-query ids of every synthetic document hit.
func (mt *Matcher) presearchCandidates(doc map[string]any) (map[uint64]struct{}, error) {
	candidateQuery, err := mt.monitor.presearcher.ConvertDocumentToQuery(doc, mt.monitor.documentSchema, mt.monitor.tokenizers)
	if err != nil {
		return nil, err
	}

	docCount, err := mt.monitor.queryIndex.DocCount()
	if err != nil {
		return nil, apperr.IndexError(apperr.ErrCodeIndexReader, err)
	}

	req := bleve.NewSearchRequest(candidateQuery)
	req.Fields = []string{schema.QueryIDField}
	if docCount > 0 {
		req.Size = int(docCount)
	}

	result, err := mt.monitor.queryIndex.Search(req)
	if err != nil {
		return nil, apperr.IndexError(apperr.ErrCodeIndexSearch, err)
	}

	ids := make(map[uint64]struct{})
	for _, hit := range result.Hits {
		raw, ok := hit.Fields[schema.QueryIDField]
		if !ok {
			continue
		}
		asFloat, ok := raw.(float64)
		if !ok {
			return nil, apperr.SchemaError(apperr.ErrCodeQueryIDNotU64,
				"stored query id field was not numeric", nil)
		}
		ids[uint64(asFloat)] = struct{}{}
	}
	return ids, nil
}

// reindexDocument wipes the ephemeral index and indexes doc as its sole
// document, mirroring MonitorMatcher::match_document's delete_all + add +
// commit sequence.
func (mt *Matcher) reindexDocument(doc map[string]any) error {
	if err := mt.ephemeralIndex.Delete("document"); err != nil {
		return apperr.IndexError(apperr.ErrCodeIndexCommit, err)
	}
	if err := mt.ephemeralIndex.Index("document", doc); err != nil {
		return apperr.IndexError(apperr.ErrCodeIndexCommit, err)
	}
	return nil
}

// evaluate re-runs rq's original query tree against the ephemeral
// single-document index, Phase 2's exact boolean re-check.
func (mt *Matcher) evaluate(rq RegisteredQuery) (bool, error) {
	q, err := rq.Query.ToBleve()
	if err != nil {
		return false, apperr.IndexError(apperr.ErrCodeIndexSearch, err)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = 1

	result, err := mt.ephemeralIndex.Search(req)
	if err != nil {
		return false, apperr.IndexError(apperr.ErrCodeIndexSearch, err)
	}

	return len(result.Hits) > 0, nil
}
