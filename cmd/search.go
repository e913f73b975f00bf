package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newSearchCmd creates the 'search' subcommand.
func newSearchCmd() *cobra.Command {
	var (
		pages     int
		searchURL string
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Collects search results",
		Long: `Runs a marketplace search for the query (or fetches --url directly),
follows pagination up to --pages pages and prints the results as a JSON array.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" && searchURL == "" {
				return errors.New("a query or --url is required")
			}
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			results, err := appInstance.Search(cmd.Context(), query, searchURL, pages)
			if err != nil {
				if len(results) == 0 {
					return err
				}
				appInstance.Logger().Warn("search stopped early", zap.Int("results", len(results)), zap.Error(err))
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return fmt.Errorf("write results: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 0, "maximum result pages to fetch (default from config)")
	cmd.Flags().StringVar(&searchURL, "url", "", "search results URL to start from instead of a query")
	return cmd
}
