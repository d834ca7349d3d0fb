package querytree

import bquery "github.com/blevesearch/bleve/v2/search/query"

// TermSet is a disjunction of terms over a single field.
type TermSet struct {
	Field  string
	Values []string
}

func (t *TermSet) ToAST() QueryDocumentTree {
	children := make([]QueryDocumentTree, len(t.Values))
	for i, v := range t.Values {
		children[i] = &TreeTerm{Field: t.Field, Value: v}
	}
	if len(children) == 1 {
		return children[0]
	}
	return &TreeDisjunction{Children: children}
}

func (t *TermSet) ToBleve() (bquery.Query, error) {
	disjuncts := make([]bquery.Query, len(t.Values))
	for i, v := range t.Values {
		tq := bquery.NewTermQuery(v)
		tq.SetField(t.Field)
		disjuncts[i] = tq
	}
	dq := bquery.NewDisjunctionQuery(disjuncts)
	dq.SetMin(1)
	return dq, nil
}

func (t *TermSet) Clone() Query {
	values := append([]string(nil), t.Values...)
	return &TermSet{Field: t.Field, Values: values}
}
