package mcp

import (
	"fmt"
	"sort"
	"strings"
)

// FormatMatchResult renders a match_document result as markdown, the same
// shape the teacher used for search results: a headline count followed by
// one line per match.
func FormatMatchResult(out MatchDocumentOutput) string {
	if len(out.IDs) == 0 {
		return fmt.Sprintf("No matches (%d candidates considered, %d queries registered).",
			out.ProspectiveQueries, out.TotalQueries)
	}

	ids := make([]uint64, len(out.IDs))
	copy(ids, out.IDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %d Match", len(ids))
	if len(ids) != 1 {
		sb.WriteString("es")
	}
	fmt.Fprintf(&sb, " (%d candidates, %d registered)\n\n", out.ProspectiveQueries, out.TotalQueries)

	for _, id := range ids {
		fmt.Fprintf(&sb, "- query %d\n", id)
	}

	return sb.String()
}
