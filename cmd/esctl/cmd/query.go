package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vnFuhung2903/vcs-search-toolkit/dto"
	"github.com/vnFuhung2903/vcs-search-toolkit/usecases/services"
)

type queryOptions struct {
	index    string
	query    string
	q        string
	pageSize int
}

func newQueryCmd(v *viper.Viper, loadLogger loggerLoader) *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Stream every document matching a query",
		Long: `Stream every document of --index matching the query to stdout as
newline-delimited JSON. --query takes a Query DSL object and wins over --q,
a query string. With neither, every document is returned.

Examples:
  esctl query --index logs
  esctl query --index logs --q 'level:error'
  esctl query --index logs --query '{"term":{"user":"john"}}' --page-size 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, v, loadLogger, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.index, "index", "i", "", "Index to query")
	cmd.Flags().StringVar(&opts.query, "query", "", "Query DSL object as JSON")
	cmd.Flags().StringVar(&opts.q, "q", "", "Query string")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Documents per scroll page (default ELASTICSEARCH_PAGE_SIZE)")
	_ = cmd.MarkFlagRequired("index")

	return cmd
}

func runQuery(cmd *cobra.Command, v *viper.Viper, loadLogger loggerLoader, opts queryOptions) error {
	queryOpts := dto.QueryOptions{QueryString: opts.q, PageSize: opts.pageSize}
	if opts.query != "" {
		if err := json.Unmarshal([]byte(opts.query), &queryOpts.Query); err != nil {
			return fmt.Errorf("invalid --query: %w", err)
		}
	}
	out := json.NewEncoder(cmd.OutOrStdout())

	return withService(cmd.Context(), v, loadLogger, func(svc services.ISearchIndexService) error {
		it, err := svc.Query(cmd.Context(), opts.index, queryOpts)
		if err != nil {
			return err
		}
		for document, err := range it.All() {
			if err != nil {
				return err
			}
			if err := out.Encode(document); err != nil {
				return err
			}
		}
		return nil
	})
}
