package monitor

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/fenwick-labs/percolate/internal/schema"
)

// bleveAnalyzerName derives the name a user schema tokenizer is registered
// under in a bleve index mapping, kept distinct from bleve's own built-in
// analyzer names.
func bleveAnalyzerName(tokenizerName string) string {
	return "percolate_" + tokenizerName
}

// registerAnalyzers adds a custom bleve tokenizer/analyzer pair for every
// tokenizer known to tm, so each field's declared tokenizer (§4.2.2) governs
// how bleve itself indexes and searches that field, not just how the
// presearcher extracts candidate terms from it.
func registerAnalyzers(indexMapping *bleve.IndexMapping, tm *schema.TokenizerManager, tokenizerNames []string) error {
	for _, name := range tokenizerNames {
		tokenizer, ok := tm.Get(name)
		if !ok {
			continue
		}

		bleveTokenizerName := "percolate_tokenizer_" + name
		if err := registry.RegisterTokenizer(bleveTokenizerName, adaptedTokenizerConstructor(tokenizer)); err != nil {
			return fmt.Errorf("register tokenizer %s: %w", name, err)
		}

		analyzerName := bleveAnalyzerName(name)
		err := indexMapping.AddCustomAnalyzer(analyzerName, map[string]interface{}{
			"type":      custom.Name,
			"tokenizer": bleveTokenizerName,
		})
		if err != nil {
			return fmt.Errorf("register analyzer %s: %w", name, err)
		}
	}
	return nil
}

// adaptedTokenizerConstructor wraps a schema.Tokenizer as a bleve
// analysis.Tokenizer, ported from the teacher's bleveCodeTokenizer
// (internal/store/bm25.go) which does the same positional bookkeeping.
func adaptedTokenizerConstructor(t schema.Tokenizer) registry.TokenizerConstructor {
	return func(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
		return &adaptedTokenizer{inner: t}, nil
	}
}

type adaptedTokenizer struct {
	inner schema.Tokenizer
}

func (a *adaptedTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := a.inner.Tokenize(text)

	result := make(analysis.TokenStream, 0, len(tokens))
	pos := 1
	offset := 0

	for _, token := range tokens {
		start := strings.Index(strings.ToLower(text[offset:]), strings.ToLower(token))
		if start == -1 {
			start = offset
		} else {
			start += offset
		}
		end := start + len(token)

		result = append(result, &analysis.Token{
			Term:     []byte(token),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
		if end <= len(text) {
			offset = end
		}
	}

	return result
}

// fieldTokenizerNames collects the distinct declared tokenizer names of a
// schema's text fields.
func fieldTokenizerNames(s *schema.Schema) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, f := range s.Fields() {
		if f.Type == schema.Text && f.Indexing != nil {
			if _, ok := seen[f.Indexing.Tokenizer]; !ok {
				seen[f.Indexing.Tokenizer] = struct{}{}
				names = append(names, f.Indexing.Tokenizer)
			}
		}
	}
	return names
}

// buildFieldMapping returns the bleve field mapping for one user field spec.
func buildFieldMapping(spec schema.FieldSpec) *mapping.FieldMapping {
	switch spec.Type {
	case schema.Boolean:
		return mapping.NewBooleanFieldMapping()
	default:
		fm := mapping.NewTextFieldMapping()
		if spec.Indexing != nil {
			fm.Analyzer = bleveAnalyzerName(spec.Indexing.Tokenizer)
		}
		return fm
	}
}

// buildDocumentIndexMapping builds the mapping for the ephemeral per-document
// index the Matcher runs original queries against: user fields only.
func buildDocumentIndexMapping(documentSchema *schema.Schema, tokenizers *schema.TokenizerManager) (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	if err := registerAnalyzers(im, tokenizers, fieldTokenizerNames(documentSchema)); err != nil {
		return nil, err
	}

	docMapping := bleve.NewDocumentMapping()
	docMapping.Dynamic = false
	for _, f := range documentSchema.Fields() {
		docMapping.AddFieldMappingsAt(f.Name, buildFieldMapping(f))
	}
	im.DefaultMapping = docMapping
	return im, nil
}

// buildQueryIndexMapping builds the mapping for the Monitor's query index:
// the user schema's fields plus the two reserved fields (§3).
func buildQueryIndexMapping(documentSchema *schema.Schema, tokenizers *schema.TokenizerManager) (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	if err := registerAnalyzers(im, tokenizers, fieldTokenizerNames(documentSchema)); err != nil {
		return nil, err
	}

	docMapping := bleve.NewDocumentMapping()
	docMapping.Dynamic = false
	for _, f := range documentSchema.Fields() {
		docMapping.AddFieldMappingsAt(f.Name, buildFieldMapping(f))
	}

	queryIDMapping := mapping.NewNumericFieldMapping()
	queryIDMapping.Store = true
	queryIDMapping.Index = true
	docMapping.AddFieldMappingsAt(schema.QueryIDField, queryIDMapping)

	anyTermMapping := mapping.NewBooleanFieldMapping()
	anyTermMapping.Store = false
	anyTermMapping.Index = true
	docMapping.AddFieldMappingsAt(schema.AnyTermField, anyTermMapping)

	im.DefaultMapping = docMapping
	return im, nil
}
