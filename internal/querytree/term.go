package querytree

import bquery "github.com/blevesearch/bleve/v2/search/query"

// Term is a single indexed term on one field.
type Term struct {
	Field string
	Value string
}

func (t *Term) ToAST() QueryDocumentTree {
	return &TreeTerm{Field: t.Field, Value: t.Value}
}

func (t *Term) ToBleve() (bquery.Query, error) {
	q := bquery.NewTermQuery(t.Value)
	q.SetField(t.Field)
	return q, nil
}

func (t *Term) Clone() Query {
	c := *t
	return &c
}
