package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/htmlimport"
	"github.com/agentic-research/notional/internal/property"
)

var (
	htmlBaseURL string
	htmlNewPage bool
)

func init() {
	importHTMLCmd.Flags().StringVar(&htmlBaseURL, "base-url", "", "Resolve relative links and images against this URL")
	importHTMLCmd.Flags().BoolVar(&htmlNewPage, "new-page", false, "Create a child page titled after the document instead of appending")
	rootCmd.AddCommand(importHTMLCmd)
}

var importHTMLCmd = &cobra.Command{
	Use:   "import-html [page-id] [file.html|-]",
	Short: "Append the contents of an HTML document to a page",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if args[1] != "-" {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			r = f
		}
		doc, err := htmlimport.Parse(r, htmlimport.Options{BaseURL: htmlBaseURL})
		if err != nil {
			return fmt.Errorf("%s: %w", args[1], err)
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		target := args[0]
		if htmlNewPage {
			id, err := api.NormalizeID(args[0])
			if err != nil {
				return err
			}
			title := doc.Title
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(args[1]), filepath.Ext(args[1]))
			}
			p, err := s.CreatePage(ctx, api.PageParent(id), map[string]property.Value{"title": property.NewTitle(title)})
			if err != nil {
				return err
			}
			target = p.ID
		}
		n, err := htmlimport.Import(ctx, s, target, doc)
		if err != nil {
			return fmt.Errorf("%d of %d blocks appended to %s: %w", n, len(doc.Blocks), target, err)
		}
		logger.Debug("html imported", zap.String("page", target), zap.Int("blocks", n))
		fmt.Fprintf(cmd.OutOrStdout(), "appended %d blocks to %s\n", n, target)
		return nil
	},
}
