package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/notional/internal/session"
)

var (
	queryFilter string
	querySorts  []string
	queryLimit  int
)

func init() {
	queryCmd.Flags().StringVar(&queryFilter, "filter", "", "Filter object as JSON")
	queryCmd.Flags().StringArrayVar(&querySorts, "sort", nil, "Sort by property, as name or name:desc (repeatable)")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Stop after this many pages (0 for all)")
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query [database-id]",
	Short: "List the pages of a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		q, err := buildQuery(s, args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		it, err := q.Execute(ctx)
		if err != nil {
			return err
		}
		for p, err := range it.All(ctx) {
			if err != nil {
				return err
			}
			if err := pr.Page(p); err != nil {
				return err
			}
		}
		logger.Debug("query finished", zap.Int("pages", it.Total()), zap.Int("batches", it.PageNumber()))
		return nil
	},
}

func buildQuery(s *session.Session, dbID string) (*session.Query, error) {
	q := s.Query(dbID).Limit(queryLimit)
	if queryFilter != "" {
		if !json.Valid([]byte(queryFilter)) {
			return nil, fmt.Errorf("--filter is not valid JSON")
		}
		q.Filter(json.RawMessage(queryFilter))
	}
	for _, arg := range querySorts {
		sort, err := parseSort(arg)
		if err != nil {
			return nil, err
		}
		q.Sort(sort)
	}
	return q, nil
}

// parseSort turns "Name" or "Name:desc" into a property sort object.
func parseSort(arg string) (map[string]string, error) {
	name, dir, _ := strings.Cut(arg, ":")
	if name == "" {
		return nil, fmt.Errorf("invalid sort %q", arg)
	}
	direction := "ascending"
	switch strings.ToLower(dir) {
	case "", "asc", "ascending":
	case "desc", "descending":
		direction = "descending"
	default:
		return nil, fmt.Errorf("invalid sort direction %q", dir)
	}
	return map[string]string{"property": name, "direction": direction}, nil
}
