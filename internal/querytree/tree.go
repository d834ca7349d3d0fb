// Package querytree implements the polymorphic query tree: a closed set of
// concrete node types (Term, TermSet, Boolean, Boost, DisjunctionMax) plus
// an Opaque escape hatch for query types supplied by the underlying index
// library that the decomposer doesn't need to understand.
package querytree

import (
	bquery "github.com/blevesearch/bleve/v2/search/query"
)

// Occur labels a Boolean query's children.
type Occur int

const (
	Should Occur = iota
	Must
	MustNot
)

func (o Occur) String() string {
	switch o {
	case Should:
		return "should"
	case Must:
		return "must"
	case MustNot:
		return "must_not"
	default:
		return "unknown"
	}
}

// Query is the node interface every concrete query type implements: ToAST
// derives the extraction-side tree the presearcher walks, ToBleve lowers
// the node to a real query runnable against bleve's index, and Clone
// deep-copies it (RegisteredQuery cloning duplicates the tree per spec §3).
type Query interface {
	ToAST() QueryDocumentTree
	ToBleve() (bquery.Query, error)
	Clone() Query
}

// QueryDocumentTree is the extraction-side AST used by the presearcher to
// select necessary terms (§4.2.1) and to score selectivity (§4.2.3).
type QueryDocumentTree interface {
	isQueryDocumentTree()
}

// TreeTerm is a single necessary term.
type TreeTerm struct {
	Field string
	Value string
}

func (*TreeTerm) isQueryDocumentTree() {}

// TreeConjunction requires every child; the presearcher picks the single
// most selective child to represent it (§4.2.1).
type TreeConjunction struct {
	Children []QueryDocumentTree
}

func (*TreeConjunction) isQueryDocumentTree() {}

// TreeDisjunction requires at least one child; the presearcher must
// represent every child since none alone is guaranteed present (§4.2.1).
type TreeDisjunction struct {
	Children []QueryDocumentTree
}

func (*TreeDisjunction) isQueryDocumentTree() {}

// TreeAnyTerm marks a leaf that cannot be term-constrained: the sub-query
// must always be considered a Phase-1 candidate.
type TreeAnyTerm struct{}

func (*TreeAnyTerm) isQueryDocumentTree() {}
