package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fenwick-labs/percolate/internal/apiclient"
	"github.com/fenwick-labs/percolate/internal/output"
)

func newRegisterCmd() *cobra.Command {
	var id uint64
	var query string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a standing query with a running percolated server",
		Long: `Register a standing query against a percolated server's
POST /register_query endpoint. The query string is parsed server-side
through bleve's query-string mini-language (e.g. "field:value",
"field:value1 field:value2", "+field:value -other:value").`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if query == "" {
				return fmt.Errorf("register: --query is required")
			}

			w := output.NewAuto(cmd.OutOrStdout())
			client := apiclient.New(serverAddr)

			result, err := client.RegisterQuery(cmd.Context(), id, query)
			if err != nil {
				w.Error(err.Error())
				return err
			}

			w.Successf("Registered query %d", result.ID)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&id, "id", 0, "Query id")
	cmd.Flags().StringVar(&query, "query", "", "Query string, in bleve's query-string syntax")

	return cmd
}
