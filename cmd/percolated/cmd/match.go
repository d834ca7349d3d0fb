package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fenwick-labs/percolate/internal/apiclient"
	"github.com/fenwick-labs/percolate/internal/output"
)

func newMatchCmd() *cobra.Command {
	var jsonDoc string
	var fields []string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a document against every query registered with a running percolated server",
		Long: `Submit a document to a percolated server's POST /match_document
endpoint and report which registered query ids matched, plus the
Phase 1 candidate count and Phase 2 confirmed match count.

The document is built from --json, --field key=value pairs, or both
(fields override keys also present in --json).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := buildDocument(jsonDoc, fields)
			if err != nil {
				return err
			}
			if len(doc) == 0 {
				return fmt.Errorf("match: document is empty; pass --json or --field")
			}

			w := output.NewAuto(cmd.OutOrStdout())
			client := apiclient.New(serverAddr)

			result, err := client.MatchDocument(cmd.Context(), doc)
			if err != nil {
				w.Error(err.Error())
				return err
			}

			ids := append([]uint64(nil), result.IDs...)
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

			if len(ids) == 0 {
				w.Statusf("", "No matches (%d candidates, %d queries registered)",
					result.Metrics.ProspectiveQueries, result.Metrics.TotalQueries)
				return nil
			}

			w.Successf("%d match(es) (%d candidates, %d queries registered)",
				len(ids), result.Metrics.ProspectiveQueries, result.Metrics.TotalQueries)
			for _, id := range ids {
				w.Statusf("-", "query %d", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonDoc, "json", "", "Document as a JSON object")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "field=value pair, repeatable")

	return cmd
}

func buildDocument(jsonDoc string, fields []string) (map[string]any, error) {
	doc := map[string]any{}
	if jsonDoc != "" {
		if err := json.Unmarshal([]byte(jsonDoc), &doc); err != nil {
			return nil, fmt.Errorf("match: invalid --json: %w", err)
		}
	}

	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("match: --field %q must be key=value", f)
		}
		doc[key] = value
	}

	return doc, nil
}
