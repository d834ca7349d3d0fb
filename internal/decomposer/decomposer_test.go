package decomposer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-labs/percolate/internal/querytree"
)

func term(field, value string) querytree.Query {
	return &querytree.Term{Field: field, Value: value}
}

func TestDecompose_AtomicLeafYieldsSingleton(t *testing.T) {
	subs := Decompose(term("body", "bloomberg"))
	require.Len(t, subs, 1)
	assert.Equal(t, term("body", "bloomberg"), subs[0])
}

func TestDecompose_ShouldYieldsIndependentSubqueries(t *testing.T) {
	q := &querytree.Boolean{Clauses: []querytree.Clause{
		{Occur: querytree.Should, Query: term("body", "trump")},
		{Occur: querytree.Should, Query: term("body", "bloomberg")},
	}}

	subs := Decompose(q)
	require.Len(t, subs, 2)
	assert.Equal(t, term("body", "trump"), subs[0])
	assert.Equal(t, term("body", "bloomberg"), subs[1])
}

func TestDecompose_SingleMustWithNoPriorOutputsRecurses(t *testing.T) {
	q := &querytree.Boolean{Clauses: []querytree.Clause{
		{Occur: querytree.Must, Query: term("body", "diary")},
	}}

	subs := Decompose(q)
	require.Len(t, subs, 1)
	assert.Equal(t, term("body", "diary"), subs[0])
}

func TestDecompose_MustWithExclusionWrapsSingleSubquery(t *testing.T) {
	// (Must diary)(MustNot girl) — spec.md §8 scenario 4: decomposition
	// yields exactly one sub-query equal to the input.
	q := &querytree.Boolean{Clauses: []querytree.Clause{
		{Occur: querytree.Must, Query: term("body", "diary")},
		{Occur: querytree.MustNot, Query: term("body", "girl")},
	}}

	subs := Decompose(q)
	require.Len(t, subs, 1)

	wrapped, ok := subs[0].(*querytree.Boolean)
	require.True(t, ok)
	require.Len(t, wrapped.Clauses, 2)
	assert.Equal(t, querytree.Must, wrapped.Clauses[0].Occur)
	assert.Equal(t, term("body", "diary"), wrapped.Clauses[0].Query)
	assert.Equal(t, querytree.MustNot, wrapped.Clauses[1].Occur)
	assert.Equal(t, term("body", "girl"), wrapped.Clauses[1].Query)
}

func TestDecompose_MustNotOnlyEmitsNothing(t *testing.T) {
	q := &querytree.Boolean{Clauses: []querytree.Clause{
		{Occur: querytree.MustNot, Query: term("body", "girl")},
	}}

	subs := Decompose(q)
	assert.Empty(t, subs)
}

func TestDecompose_MultipleMustEmittedVerbatim(t *testing.T) {
	q := &querytree.Boolean{Clauses: []querytree.Clause{
		{Occur: querytree.Must, Query: term("body", "michael")},
		{Occur: querytree.Must, Query: term("body", "bloomberg")},
	}}

	subs := Decompose(q)
	require.Len(t, subs, 1)
	assert.Same(t, q, subs[0])
}

func TestDecompose_SingleMustWithPriorShouldOutputsEmittedVerbatim(t *testing.T) {
	q := &querytree.Boolean{Clauses: []querytree.Clause{
		{Occur: querytree.Should, Query: term("body", "trump")},
		{Occur: querytree.Must, Query: term("body", "bloomberg")},
	}}

	subs := Decompose(q)
	// The Should clause produces one independent sub-query, then the
	// single Must clause finds the list non-empty and is emitted verbatim
	// rather than recursed into.
	require.Len(t, subs, 2)
	assert.Equal(t, term("body", "trump"), subs[0])
	assert.Same(t, q, subs[1])
}

func TestDecompose_BoostFactorOneIsTransparent(t *testing.T) {
	q := &querytree.Boost{Inner: term("body", "barack"), Factor: 1.0}

	subs := Decompose(q)
	require.Len(t, subs, 1)
	assert.Equal(t, term("body", "barack"), subs[0])
}

func TestDecompose_BoostNonUnitWrapsOutputs(t *testing.T) {
	q := &querytree.Boost{Inner: term("body", "barack"), Factor: 2.0}

	subs := Decompose(q)
	require.Len(t, subs, 1)
	boost, ok := subs[0].(*querytree.Boost)
	require.True(t, ok)
	assert.Equal(t, 2.0, boost.Factor)
	assert.Equal(t, term("body", "barack"), boost.Inner)
}

func TestDecompose_DisjunctionWithBoostedClauseKeepsBoth(t *testing.T) {
	// spec.md §8 scenario 5: Boost(body:barack, 2.0) OR body:biden — both
	// sub-queries survive decomposition.
	q := &querytree.Boolean{Clauses: []querytree.Clause{
		{Occur: querytree.Should, Query: &querytree.Boost{Inner: term("body", "barack"), Factor: 2.0}},
		{Occur: querytree.Should, Query: term("body", "biden")},
	}}

	subs := Decompose(q)
	require.Len(t, subs, 2)

	boost, ok := subs[0].(*querytree.Boost)
	require.True(t, ok)
	assert.Equal(t, term("body", "barack"), boost.Inner)
	assert.Equal(t, term("body", "biden"), subs[1])
}

func TestDecompose_DisjunctionMaxActsLikeShould(t *testing.T) {
	q := &querytree.DisjunctionMax{Disjuncts: []querytree.Query{
		term("body", "a"),
		term("body", "b"),
	}}

	subs := Decompose(q)
	require.Len(t, subs, 2)
	assert.Equal(t, term("body", "a"), subs[0])
	assert.Equal(t, term("body", "b"), subs[1])
}
