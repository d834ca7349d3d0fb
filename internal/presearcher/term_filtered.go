package presearcher

import (
	"sort"
	"strings"

	bquery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/fenwick-labs/percolate/internal/apperr"
	"github.com/fenwick-labs/percolate/internal/querytree"
	"github.com/fenwick-labs/percolate/internal/schema"
)

// TermFilteredPresearcher is the reference Presearcher: it selects the
// necessary terms of a sub-query by walking its QueryDocumentTree, using
// a Scorer to pick the single most selective child of a conjunction.
type TermFilteredPresearcher struct {
	Scorer Scorer
}

// NewTermFilteredPresearcher returns a Presearcher backed by scorer.
func NewTermFilteredPresearcher(scorer Scorer) *TermFilteredPresearcher {
	return &TermFilteredPresearcher{Scorer: scorer}
}

// toFieldTerms walks tree, accumulating the necessary terms per field
// (§4.2.1): Term emits directly, Disjunction unions every child (none
// alone is guaranteed present), Conjunction recurses only into the
// highest-scoring child (the most selective clause), AnyTerm emits the
// reserved marker.
func (p *TermFilteredPresearcher) toFieldTerms(tree querytree.QueryDocumentTree, fieldTerms map[string]map[string]struct{}) {
	switch v := tree.(type) {
	case *querytree.TreeConjunction:
		if len(v.Children) == 0 {
			return
		}
		best := v.Children[0]
		bestScore := p.Scorer.Score(best)
		for _, child := range v.Children[1:] {
			score := p.Scorer.Score(child)
			if score > bestScore {
				bestScore = score
				best = child
			}
		}
		p.toFieldTerms(best, fieldTerms)
	case *querytree.TreeDisjunction:
		for _, child := range v.Children {
			p.toFieldTerms(child, fieldTerms)
		}
	case *querytree.TreeTerm:
		set := fieldTerms[v.Field]
		if set == nil {
			set = make(map[string]struct{})
			fieldTerms[v.Field] = set
		}
		set[v.Value] = struct{}{}
	case *querytree.TreeAnyTerm:
		set := fieldTerms[schema.AnyTermField]
		if set == nil {
			set = make(map[string]struct{})
			fieldTerms[schema.AnyTermField] = set
		}
		set["true"] = struct{}{}
	}
}

func (p *TermFilteredPresearcher) ConvertQueryToDocument(query querytree.Query, indexSchema *schema.Schema) (map[string]any, error) {
	fieldTerms := make(map[string]map[string]struct{})
	p.toFieldTerms(query.ToAST(), fieldTerms)

	doc := make(map[string]any, len(fieldTerms))
	for field, terms := range fieldTerms {
		if field == schema.AnyTermField {
			doc[schema.AnyTermField] = true
			continue
		}

		spec, ok := indexSchema.Field(field)
		if !ok {
			// Unsupported/unknown field: silently dropped per §9's open
			// question decision, not a SchemaError.
			continue
		}

		switch spec.Type {
		case schema.Text:
			values := make([]string, 0, len(terms))
			for t := range terms {
				values = append(values, t)
			}
			sort.Strings(values)
			doc[field] = strings.Join(values, " ")
		default:
			continue
		}
	}

	return doc, nil
}

func (p *TermFilteredPresearcher) ConvertDocumentToQuery(doc map[string]any, indexSchema *schema.Schema, tokenizers *schema.TokenizerManager) (bquery.Query, error) {
	p.Scorer.AddDocumentCount()

	var disjuncts []bquery.Query

	for field, value := range doc {
		spec, ok := indexSchema.Field(field)
		if !ok || spec.Type != schema.Text {
			continue
		}

		if spec.Indexing == nil {
			return nil, apperr.InvalidArgument(apperr.ErrCodeNoIndexingOptions,
				"field "+field+" has no indexing options").WithDetail("field", field)
		}

		tokenizer, ok := tokenizers.Get(spec.Indexing.Tokenizer)
		if !ok {
			return nil, apperr.InvalidArgument(apperr.ErrCodeNoTokenizer,
				"no tokenizer found for field "+field).WithDetail("field", field).WithDetail("tokenizer", spec.Indexing.Tokenizer)
		}

		text, ok := value.(string)
		if !ok {
			return nil, apperr.InvalidArgument(apperr.ErrCodeNotStringValue,
				field+" is not a text field value").WithDetail("field", field)
		}

		for _, token := range tokenizer.Tokenize(text) {
			p.Scorer.AddTerm(field, token)
			tq := bquery.NewTermQuery(token)
			tq.SetField(field)
			disjuncts = append(disjuncts, tq)
		}
	}

	marker := bquery.NewBoolFieldQuery(true)
	marker.SetField(schema.AnyTermField)
	disjuncts = append(disjuncts, marker)

	dq := bquery.NewDisjunctionQuery(disjuncts)
	dq.SetMin(1)
	return dq, nil
}

var _ Presearcher = (*TermFilteredPresearcher)(nil)
