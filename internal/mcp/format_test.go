package mcp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMatchResult_NoMatches(t *testing.T) {
	out := MatchDocumentOutput{ProspectiveQueries: 3, TotalQueries: 10}
	got := FormatMatchResult(out)
	assert.Contains(t, got, "No matches")
	assert.Contains(t, got, "3 candidates")
	assert.Contains(t, got, "10 queries")
}

func TestFormatMatchResult_SingleMatch(t *testing.T) {
	out := MatchDocumentOutput{IDs: []uint64{7}, ProspectiveQueries: 1, TotalQueries: 1, ActualMatches: 1}
	got := FormatMatchResult(out)
	assert.True(t, strings.HasPrefix(got, "## 1 Match ("))
	assert.Contains(t, got, "- query 7")
}

func TestFormatMatchResult_MultipleMatchesSortedAscending(t *testing.T) {
	out := MatchDocumentOutput{IDs: []uint64{9, 2, 5}, ProspectiveQueries: 3, TotalQueries: 3, ActualMatches: 3}
	got := FormatMatchResult(out)
	assert.True(t, strings.HasPrefix(got, "## 3 Matches ("))

	iTwo := strings.Index(got, "- query 2")
	iFive := strings.Index(got, "- query 5")
	iNine := strings.Index(got, "- query 9")
	assert.True(t, iTwo < iFive && iFive < iNine)
}
