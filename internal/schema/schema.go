// Package schema describes the user document schema a Monitor is built
// against: field names, their types, and the tokenizer each text field is
// indexed with.
package schema

import "github.com/fenwick-labs/percolate/internal/apperr"

// Reserved field names the monitor's query-index schema adds on top of the
// user schema. User schemas must not declare fields with these names.
const (
	QueryIDField = "__monitor_query_id__"
	AnyTermField = "__anytermfield__"
)

// FieldType is the set of field types the presearcher understands.
type FieldType int

const (
	// Text fields are tokenized and their terms are indexed.
	Text FieldType = iota
	// Boolean fields carry a single true/false flag; only the reserved
	// AnyTermField uses this today, but user schemas may declare one too
	// (the presearcher silently skips it per spec: unsupported field
	// types in a sub-query document are dropped, not rejected).
	Boolean
)

func (t FieldType) String() string {
	switch t {
	case Text:
		return "text"
	case Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// IndexingOptions names the tokenizer a text field is analyzed with. A text
// field with a nil IndexingOptions cannot be presearched and triggers
// ErrCodeNoIndexingOptions when a document is converted to a candidate
// query.
type IndexingOptions struct {
	Tokenizer string
}

// FieldSpec describes one field of a document schema.
type FieldSpec struct {
	Name      string
	Type      FieldType
	Indexing  *IndexingOptions
}

// Schema is an ordered, named set of FieldSpecs.
type Schema struct {
	order  []string
	fields map[string]FieldSpec
}

// New builds a Schema from field specs, rejecting collisions with the
// reserved field names and duplicate field names.
func New(fields ...FieldSpec) (*Schema, error) {
	s := &Schema{fields: make(map[string]FieldSpec, len(fields))}
	for _, f := range fields {
		if f.Name == QueryIDField || f.Name == AnyTermField {
			return nil, apperr.SchemaError(apperr.ErrCodeReservedFieldMissing,
				"user schema must not declare reserved field "+f.Name, nil)
		}
		if _, exists := s.fields[f.Name]; exists {
			return nil, apperr.SchemaError(apperr.ErrCodeReservedFieldMissing,
				"duplicate field "+f.Name, nil)
		}
		s.fields[f.Name] = f
		s.order = append(s.order, f.Name)
	}
	return s, nil
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Fields returns all field specs in declaration order.
func (s *Schema) Fields() []FieldSpec {
	out := make([]FieldSpec, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.fields[name])
	}
	return out
}
