// Package decomposer reduces an arbitrary query tree into a list of atomic
// sub-queries suitable for indexing by the presearcher, propagating
// MustNot exclusions inherited from ancestor booleans onto every
// sub-query produced in their scope.
package decomposer

import "github.com/fenwick-labs/percolate/internal/querytree"

// Decompose reduces query into the list of atomic sub-queries satisfying
// match(query, doc) <=> exists sub in Decompose(query). match(sub, doc).
// The decomposer is total: it never fails, and query types it does not
// recognize (anything but Boolean, Boost, DisjunctionMax) are appended
// verbatim as opaque leaves.
func Decompose(query querytree.Query) []querytree.Query {
	items := make([]querytree.Query, 0, 1)
	list := &scratchList{items: &items, offset: 0}
	decompose(list, query)
	return items
}

func decompose(list *scratchList, query querytree.Query) {
	scoped := list.saved()

	switch v := query.(type) {
	case *querytree.Boolean:
		decomposeBoolean(scoped, v)
	case *querytree.Boost:
		decomposeBoost(scoped, v)
	case *querytree.DisjunctionMax:
		decomposeDisjunctionMax(scoped, v)
	default:
		scoped.push(query)
	}
}

func decomposeBoolean(list *scratchList, b *querytree.Boolean) {
	var mandatory []querytree.Query
	var exclusions []querytree.Query

	for _, clause := range b.Clauses {
		switch clause.Occur {
		case querytree.Should:
			decompose(list, clause.Query)
		case querytree.Must:
			mandatory = append(mandatory, clause.Query)
		case querytree.MustNot:
			exclusions = append(exclusions, clause.Query)
		}
	}

	if len(mandatory) > 1 || (len(mandatory) == 1 && !list.isEmpty()) {
		// Safe over-approximation: emit the whole boolean verbatim: the
		// presearcher will extract the most selective term from the
		// conjunction.
		list.push(b)
		return
	}

	if len(mandatory) == 1 {
		decompose(list, mandatory[0])
	}

	if len(exclusions) == 0 {
		return
	}

	list.mapInPlace(func(sub querytree.Query) querytree.Query {
		clauses := make([]querytree.Clause, 0, len(exclusions)+1)
		clauses = append(clauses, querytree.Clause{Occur: querytree.Must, Query: sub})
		for _, excl := range exclusions {
			clauses = append(clauses, querytree.Clause{Occur: querytree.MustNot, Query: excl})
		}
		return &querytree.Boolean{Clauses: clauses}
	})
}

func decomposeBoost(list *scratchList, b *querytree.Boost) {
	if b.Factor == 1.0 {
		decompose(list, b.Inner)
		return
	}

	decompose(list, b.Inner)
	list.mapInPlace(func(sub querytree.Query) querytree.Query {
		return &querytree.Boost{Inner: sub, Factor: b.Factor}
	})
}

func decomposeDisjunctionMax(list *scratchList, d *querytree.DisjunctionMax) {
	for _, disjunct := range d.Disjuncts {
		decompose(list, disjunct)
	}
}
