package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/notional/internal/session"
)

var (
	searchObject string
	searchLimit  int
)

func init() {
	searchCmd.Flags().StringVar(&searchObject, "type", "", "Only return pages or databases (page|database)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Stop after this many results (0 for all)")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find pages and databases by title",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter any
		switch searchObject {
		case "":
		case "page", "database":
			filter = session.ObjectFilter(searchObject)
		default:
			return fmt.Errorf("--type must be page or database, got %q", searchObject)
		}
		pr, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		var query string
		if len(args) == 1 {
			query = args[0]
		}
		ctx := cmd.Context()
		it := s.Search(query, filter).Limit(searchLimit)
		for hit, err := range it.All(ctx) {
			if err != nil {
				return err
			}
			if hit.Database != nil {
				err = pr.Database(hit.Database)
			} else {
				err = pr.Page(hit.Page)
			}
			if err != nil {
				return err
			}
		}
		logger.Debug("search finished", zap.Int("results", it.Total()), zap.Int("batches", it.PageNumber()))
		return nil
	},
}
