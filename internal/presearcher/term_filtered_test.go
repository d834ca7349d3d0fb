package presearcher

import (
	"testing"

	bquery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-labs/percolate/internal/apperr"
	"github.com/fenwick-labs/percolate/internal/querytree"
	"github.com/fenwick-labs/percolate/internal/schema"
)

func bodySchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(schema.FieldSpec{
		Name:     "body",
		Type:     schema.Text,
		Indexing: &schema.IndexingOptions{Tokenizer: "default"},
	})
	require.NoError(t, err)
	return s
}

func TestTermFilteredPresearcher_TermToFieldTerms(t *testing.T) {
	s := NewTfIdfScorer()
	addDocument(s, "body", "This is the first document")
	p := NewTermFilteredPresearcher(s)

	fieldTerms := make(map[string]map[string]struct{})
	p.toFieldTerms(&querytree.TreeTerm{Field: "body", Value: "document"}, fieldTerms)

	_, ok := fieldTerms["body"]["document"]
	assert.True(t, ok)
}

func TestTermFilteredPresearcher_DisjunctionToFieldTerms(t *testing.T) {
	s := NewTfIdfScorer()
	addDocument(s, "body", "This is the first document")
	p := NewTermFilteredPresearcher(s)

	fieldTerms := make(map[string]map[string]struct{})
	tree := &querytree.TreeDisjunction{Children: []querytree.QueryDocumentTree{
		&querytree.TreeTerm{Field: "body", Value: "document"},
		&querytree.TreeTerm{Field: "body", Value: "first"},
		&querytree.TreeTerm{Field: "body", Value: "fourth"},
	}}
	p.toFieldTerms(tree, fieldTerms)

	_, hasDocument := fieldTerms["body"]["document"]
	_, hasFirst := fieldTerms["body"]["first"]
	_, hasFourth := fieldTerms["body"]["fourth"]
	assert.True(t, hasDocument)
	assert.True(t, hasFirst)
	assert.True(t, hasFourth)
}

func TestTermFilteredPresearcher_ConjunctionToFieldTerms(t *testing.T) {
	// Conjunction recurses only into its highest-scoring (most selective)
	// child: "fourth" has never been seen, so its idf is highest.
	s := NewTfIdfScorer()
	addDocument(s, "body", "This is the first document")
	p := NewTermFilteredPresearcher(s)

	fieldTerms := make(map[string]map[string]struct{})
	tree := &querytree.TreeConjunction{Children: []querytree.QueryDocumentTree{
		&querytree.TreeTerm{Field: "body", Value: "document"},
		&querytree.TreeTerm{Field: "body", Value: "first"},
		&querytree.TreeTerm{Field: "body", Value: "fourth"},
	}}
	p.toFieldTerms(tree, fieldTerms)

	_, hasDocument := fieldTerms["body"]["document"]
	_, hasFirst := fieldTerms["body"]["first"]
	_, hasFourth := fieldTerms["body"]["fourth"]
	assert.False(t, hasDocument)
	assert.False(t, hasFirst)
	assert.True(t, hasFourth)
}

func TestTermFilteredPresearcher_AnyTermToFieldTerms(t *testing.T) {
	s := NewTfIdfScorer()
	p := NewTermFilteredPresearcher(s)

	fieldTerms := make(map[string]map[string]struct{})
	p.toFieldTerms(&querytree.TreeAnyTerm{}, fieldTerms)

	_, ok := fieldTerms[schema.AnyTermField]["true"]
	assert.True(t, ok)
}

func TestConvertQueryToDocument_TermProducesJoinedStringField(t *testing.T) {
	s := NewTfIdfScorer()
	p := NewTermFilteredPresearcher(s)
	idxSchema := bodySchema(t)

	q := &querytree.Term{Field: "body", Value: "bloomberg"}
	doc, err := p.ConvertQueryToDocument(q, idxSchema)
	require.NoError(t, err)
	assert.Equal(t, "bloomberg", doc["body"])
}

func TestConvertQueryToDocument_DisjunctionJoinsSortedTerms(t *testing.T) {
	s := NewTfIdfScorer()
	p := NewTermFilteredPresearcher(s)
	idxSchema := bodySchema(t)

	q := &querytree.Boolean{Clauses: []querytree.Clause{
		{Occur: querytree.Should, Query: &querytree.Term{Field: "body", Value: "trump"}},
		{Occur: querytree.Should, Query: &querytree.Term{Field: "body", Value: "bloomberg"}},
	}}
	doc, err := p.ConvertQueryToDocument(q, idxSchema)
	require.NoError(t, err)
	assert.Equal(t, "bloomberg trump", doc["body"])
}

func TestConvertQueryToDocument_UnknownFieldIsSilentlySkipped(t *testing.T) {
	s := NewTfIdfScorer()
	p := NewTermFilteredPresearcher(s)
	idxSchema := bodySchema(t)

	q := &querytree.Term{Field: "ghost_field", Value: "x"}
	doc, err := p.ConvertQueryToDocument(q, idxSchema)
	require.NoError(t, err)
	_, ok := doc["ghost_field"]
	assert.False(t, ok)
}

func TestConvertQueryToDocument_AnyTermSetsBooleanMarker(t *testing.T) {
	s := NewTfIdfScorer()
	p := NewTermFilteredPresearcher(s)
	idxSchema := bodySchema(t)

	q := &querytree.Boolean{Clauses: []querytree.Clause{
		{Occur: querytree.MustNot, Query: &querytree.Term{Field: "body", Value: "girl"}},
	}}
	doc, err := p.ConvertQueryToDocument(q, idxSchema)
	require.NoError(t, err)
	assert.Equal(t, true, doc[schema.AnyTermField])
}

func TestConvertDocumentToQuery_BuildsDisjunctionOfTermsAndMarker(t *testing.T) {
	tokenizers := schema.NewTokenizerManager()
	s := NewTfIdfScorer()
	p := NewTermFilteredPresearcher(s)
	idxSchema := bodySchema(t)

	doc := map[string]any{"body": "the quick fox"}
	q, err := p.ConvertDocumentToQuery(doc, idxSchema, tokenizers)
	require.NoError(t, err)

	dq, ok := q.(*bquery.DisjunctionQuery)
	require.True(t, ok)
	// one TermQuery per tokenized word plus the anyterm marker.
	assert.Len(t, dq.Disjuncts, 4)
}

func TestConvertDocumentToQuery_UpdatesScorerStatistics(t *testing.T) {
	tokenizers := schema.NewTokenizerManager()
	s := NewTfIdfScorer()
	p := NewTermFilteredPresearcher(s)
	idxSchema := bodySchema(t)

	_, err := p.ConvertDocumentToQuery(map[string]any{"body": "alpha beta"}, idxSchema, tokenizers)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), s.totalDocs())
	assert.Equal(t, uint64(1), s.docFreq("body", "alpha"))
	assert.Equal(t, uint64(1), s.docFreq("body", "beta"))
}

func TestConvertDocumentToQuery_MissingIndexingOptionsIsInvalidArgument(t *testing.T) {
	tokenizers := schema.NewTokenizerManager()
	s := NewTfIdfScorer()
	p := NewTermFilteredPresearcher(s)
	idxSchema, err := schema.New(schema.FieldSpec{Name: "body", Type: schema.Text})
	require.NoError(t, err)

	_, err = p.ConvertDocumentToQuery(map[string]any{"body": "x"}, idxSchema, tokenizers)
	require.Error(t, err)
	assert.Equal(t, apperr.CategoryArgument, apperr.GetCategory(err))
}

func TestConvertDocumentToQuery_NonStringValueIsInvalidArgument(t *testing.T) {
	tokenizers := schema.NewTokenizerManager()
	s := NewTfIdfScorer()
	p := NewTermFilteredPresearcher(s)
	idxSchema := bodySchema(t)

	_, err := p.ConvertDocumentToQuery(map[string]any{"body": 42}, idxSchema, tokenizers)
	require.Error(t, err)
	assert.Equal(t, apperr.CategoryArgument, apperr.GetCategory(err))
}
