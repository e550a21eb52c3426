package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/notional/internal/export"
)

var (
	exportBodies bool
	exportFilter string
	exportLimit  int
)

func init() {
	exportCmd.Flags().BoolVar(&exportBodies, "bodies", false, "Also export each page body")
	exportCmd.Flags().StringVar(&exportFilter, "filter", "", "Filter object as JSON")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "Stop after this many pages (0 for all)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [database-id] [output.db]",
	Short: "Copy a database and its pages into a SQLite file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.ExportPath
		if len(args) == 2 {
			path = args[1]
		}
		opts := export.Options{Bodies: exportBodies, Limit: exportLimit, Log: logger}
		if exportFilter != "" {
			if !json.Valid([]byte(exportFilter)) {
				return fmt.Errorf("--filter is not valid JSON")
			}
			opts.Filter = json.RawMessage(exportFilter)
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		w, err := export.NewSQLiteWriter(path)
		if err != nil {
			return err
		}
		n, err := export.Database(cmd.Context(), s, args[0], w, opts)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("export to %s: %w", path, err)
		}
		logger.Info("wrote export", zap.String("path", path))
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d pages to %s\n", n, path)
		return nil
	},
}
