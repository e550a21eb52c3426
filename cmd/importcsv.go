package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/notional/internal/csvimport"
)

var (
	importTitle       string
	importTitleColumn int
	importNoHeader    bool
	importInfer       bool
)

func init() {
	importCSVCmd.Flags().StringVar(&importTitle, "title", "", "Database title (default file name)")
	importCSVCmd.Flags().IntVar(&importTitleColumn, "title-column", 0, "Index of the column used as page title")
	importCSVCmd.Flags().BoolVar(&importNoHeader, "no-header", false, "First row is data")
	importCSVCmd.Flags().BoolVar(&importInfer, "infer", false, "Infer number, checkbox, date and select columns")
	rootCmd.AddCommand(importCSVCmd)
}

var importCSVCmd = &cobra.Command{
	Use:   "import-csv [parent-page-id] [file.csv]",
	Short: "Create a database from a CSV file, one page per row",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		t, err := csvimport.Read(f, csvimport.Options{
			NoHeader:    importNoHeader,
			TitleColumn: importTitleColumn,
			Infer:       importInfer,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", args[1], err)
		}
		title := importTitle
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(args[1]), filepath.Ext(args[1]))
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		db, n, err := csvimport.Import(cmd.Context(), s, args[0], title, t)
		if err != nil {
			if db != nil {
				return fmt.Errorf("database %s created, %d of %d rows imported: %w", db.ID, n, len(t.Rows), err)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created database %s with %d pages\n", db.ID, n)
		return nil
	},
}
