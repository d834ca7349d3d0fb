package querytree

import bquery "github.com/blevesearch/bleve/v2/search/query"

// DisjunctionMax is a disjunction with max-scoring semantics; for matching
// purposes it is equivalent to a pure disjunction (§3).
type DisjunctionMax struct {
	Disjuncts []Query
}

func (d *DisjunctionMax) ToAST() QueryDocumentTree {
	children := make([]QueryDocumentTree, len(d.Disjuncts))
	for i, q := range d.Disjuncts {
		children[i] = q.ToAST()
	}
	if len(children) == 1 {
		return children[0]
	}
	return &TreeDisjunction{Children: children}
}

func (d *DisjunctionMax) ToBleve() (bquery.Query, error) {
	disjuncts := make([]bquery.Query, len(d.Disjuncts))
	for i, q := range d.Disjuncts {
		inner, err := q.ToBleve()
		if err != nil {
			return nil, err
		}
		disjuncts[i] = inner
	}
	dq := bquery.NewDisjunctionQuery(disjuncts)
	dq.SetMin(1)
	return dq, nil
}

func (d *DisjunctionMax) Clone() Query {
	disjuncts := make([]Query, len(d.Disjuncts))
	for i, q := range d.Disjuncts {
		disjuncts[i] = q.Clone()
	}
	return &DisjunctionMax{Disjuncts: disjuncts}
}
