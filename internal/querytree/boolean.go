package querytree

import bquery "github.com/blevesearch/bleve/v2/search/query"

// Clause pairs a child query with how it participates in a Boolean.
type Clause struct {
	Occur Occur
	Query Query
}

// Boolean is a query tree node whose children are labelled
// Should | Must | MustNot.
type Boolean struct {
	Clauses []Clause
}

// ToAST derives the necessary-term AST for a boolean: Must children are all
// necessary (a conjunction of their trees); absent any Must, Should
// children form a disjunction (at least one needed); MustNot children
// contribute no necessary terms since absence isn't indexable by presence.
// A boolean with no Must or Should (MustNot-only) degrades to AnyTerm,
// though the decomposer never emits a sub-query in that shape (§9:
// "a boolean with only MustNot children never matches... the decomposer
// emits nothing for it").
func (b *Boolean) ToAST() QueryDocumentTree {
	var musts, shoulds []QueryDocumentTree
	for _, c := range b.Clauses {
		switch c.Occur {
		case Must:
			musts = append(musts, c.Query.ToAST())
		case Should:
			shoulds = append(shoulds, c.Query.ToAST())
		case MustNot:
			// No necessary terms from an exclusion.
		}
	}
	if len(musts) == 1 {
		return musts[0]
	}
	if len(musts) > 1 {
		return &TreeConjunction{Children: musts}
	}
	if len(shoulds) == 1 {
		return shoulds[0]
	}
	if len(shoulds) > 0 {
		return &TreeDisjunction{Children: shoulds}
	}
	return &TreeAnyTerm{}
}

func (b *Boolean) ToBleve() (bquery.Query, error) {
	bq := bquery.NewBooleanQuery(nil, nil, nil)
	for _, c := range b.Clauses {
		inner, err := c.Query.ToBleve()
		if err != nil {
			return nil, err
		}
		switch c.Occur {
		case Must:
			bq.AddMust(inner)
		case Should:
			bq.AddShould(inner)
		case MustNot:
			bq.AddMustNot(inner)
		}
	}
	return bq, nil
}

func (b *Boolean) Clone() Query {
	clauses := make([]Clause, len(b.Clauses))
	for i, c := range b.Clauses {
		clauses[i] = Clause{Occur: c.Occur, Query: c.Query.Clone()}
	}
	return &Boolean{Clauses: clauses}
}
