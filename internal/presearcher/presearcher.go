package presearcher

import (
	bquery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/fenwick-labs/percolate/internal/querytree"
	"github.com/fenwick-labs/percolate/internal/schema"
)

// Presearcher converts between the decomposer's sub-queries and the
// synthetic documents the Monitor's query index stores (§4.2).
type Presearcher interface {
	// ConvertQueryToDocument builds the synthetic indexed document for a
	// decomposed sub-query. indexSchema is the user document schema; the
	// two reserved fields are addressed by their schema constants, not
	// looked up in it.
	ConvertQueryToDocument(query querytree.Query, indexSchema *schema.Schema) (map[string]any, error)

	// ConvertDocumentToQuery builds the candidate-selection query run
	// against the query index for an incoming document.
	ConvertDocumentToQuery(doc map[string]any, indexSchema *schema.Schema, tokenizers *schema.TokenizerManager) (bquery.Query, error)
}
