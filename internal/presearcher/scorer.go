// Package presearcher implements the candidate-selection layer: converting
// a decomposed sub-query into a synthetic term document for the query
// index (index-time), and converting an incoming document into a
// candidate-selection query (match-time), using a pluggable Scorer to
// pick the most selective terms.
package presearcher

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/fenwick-labs/percolate/internal/apperr"
	"github.com/fenwick-labs/percolate/internal/querytree"
)

// Scorer is the statistics capability a Presearcher needs: a read side
// (score, via doc_freq/total_num_docs) and a write side (add_term,
// add_document_count) updated as real documents are presearched. The
// reference implementation, TfIdfScorer, uses atomic counters and a
// concurrent map; alternate statistics sources may be plugged in (§4.2.4).
type Scorer interface {
	Score(tree querytree.QueryDocumentTree) float32
	AddTerm(field, value string)
	AddDocumentCount()
}

// IDF is the inverse document frequency selectivity heuristic:
// ln(1 + ((N - df) + 0.5) / (df + 0.5)). Requires N >= df, violation of
// which is an InternalError (§7: "idf called with df > N").
func IDF(docFreq, totalDocs uint64) (float32, error) {
	if totalDocs < docFreq {
		return 0, apperr.InternalError("idf called with doc_freq > total_docs")
	}
	x := (float64(totalDocs-docFreq) + 0.5) / (float64(docFreq) + 0.5)
	return float32(math.Log(1.0 + x)), nil
}

type termKey struct {
	field string
	value string
}

// TfIdfScorer is the reference Scorer: relaxed atomic counters plus a
// mutex-guarded frequency map, since CorpusStatistics correctness is only
// required to be approximate (§5).
type TfIdfScorer struct {
	tokenCount    uint64
	documentCount uint64

	mu    sync.RWMutex
	freqs map[termKey]uint64
}

// NewTfIdfScorer returns a Scorer with zeroed corpus statistics.
func NewTfIdfScorer() *TfIdfScorer {
	return &TfIdfScorer{freqs: make(map[termKey]uint64)}
}

func (s *TfIdfScorer) AddDocumentCount() {
	atomic.AddUint64(&s.documentCount, 1)
}

func (s *TfIdfScorer) AddTerm(field, value string) {
	atomic.AddUint64(&s.tokenCount, 1)
	key := termKey{field: field, value: value}

	s.mu.Lock()
	s.freqs[key]++
	s.mu.Unlock()
}

func (s *TfIdfScorer) docFreq(field, value string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.freqs[termKey{field: field, value: value}]
}

func (s *TfIdfScorer) totalDocs() uint64 {
	return atomic.LoadUint64(&s.documentCount)
}

// Score implements the selectivity scoring of §4.2.3: Term -> idf,
// Disjunction -> minimum child score (as selective as its weakest
// branch), Conjunction -> maximum child score (the most restrictive
// branch governs selectivity), AnyTerm -> -1 (lowest possible).
func (s *TfIdfScorer) Score(tree querytree.QueryDocumentTree) float32 {
	switch v := tree.(type) {
	case *querytree.TreeConjunction:
		var max float32
		for i, child := range v.Children {
			score := s.Score(child)
			if i == 0 || score > max {
				max = score
			}
		}
		return max
	case *querytree.TreeDisjunction:
		var min float32 = 1.0
		for i, child := range v.Children {
			score := s.Score(child)
			if i == 0 || score < min {
				min = score
			}
		}
		return min
	case *querytree.TreeTerm:
		total := s.totalDocs()
		df := s.docFreq(v.Field, v.Value)
		score, err := IDF(df, total)
		if err != nil {
			// Statistics-unavailable is neutral, not fatal (§4.2.3).
			return 0
		}
		return score
	case *querytree.TreeAnyTerm:
		return -1.0
	default:
		return 0
	}
}
