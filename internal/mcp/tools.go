package mcp

// RegisterQueryInput defines the input schema for the register_query tool.
type RegisterQueryInput struct {
	ID    uint64 `json:"id" jsonschema:"the standing query's caller-assigned identifier"`
	Query string `json:"query" jsonschema:"the query, in bleve's query-string mini-language, e.g. body:bloomberg"`
}

// RegisterQueryOutput defines the output schema for the register_query tool.
type RegisterQueryOutput struct {
	ID uint64 `json:"id" jsonschema:"the id that was registered"`
}

// MatchDocumentInput defines the input schema for the match_document tool.
// Document carries the document's fields verbatim, keyed by field name.
type MatchDocumentInput struct {
	Document map[string]any `json:"document" jsonschema:"the document to match against every registered query, keyed by field name"`
}

// MatchDocumentOutput defines the output schema for the match_document tool.
type MatchDocumentOutput struct {
	IDs                []uint64 `json:"ids" jsonschema:"ids of every registered query that matched the document"`
	TotalQueries       int      `json:"total_queries" jsonschema:"number of queries registered at match time"`
	ProspectiveQueries int      `json:"prospective_queries" jsonschema:"number of Phase 1 candidate ids the presearcher surfaced"`
	ActualMatches      int      `json:"actual_matches" jsonschema:"number of Phase 2 confirmed matches, equal to len(ids)"`
}
