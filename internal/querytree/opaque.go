package querytree

import bquery "github.com/blevesearch/bleve/v2/search/query"

// Opaque wraps a bleve query type the decomposer and presearcher do not
// otherwise recognize. The decomposer treats it as an indivisible leaf
// (§4.1 rule 4, "Other leaf. Append as-is"); lacking any way to introspect
// an arbitrary bleve query's terms, its AST is AnyTerm, which structurally
// satisfies invariant #3 (every synthetic doc carries a term or the
// AnyTerm marker, never neither).
type Opaque struct {
	Inner bquery.Query
}

func (o *Opaque) ToAST() QueryDocumentTree {
	return &TreeAnyTerm{}
}

func (o *Opaque) ToBleve() (bquery.Query, error) {
	return o.Inner, nil
}

func (o *Opaque) Clone() Query {
	return &Opaque{Inner: o.Inner}
}
