package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/block"
	"github.com/agentic-research/notional/internal/output"
	"github.com/agentic-research/notional/internal/property"
	"github.com/agentic-research/notional/internal/record"
)

var (
	withBody       bool
	createDatabase string
	createParent   string
)

func init() {
	pageGetCmd.Flags().BoolVar(&withBody, "body", false, "Also load the page body")
	pageCreateCmd.Flags().StringVar(&createDatabase, "database", "", "Database the page is created in")
	pageCreateCmd.Flags().StringVar(&createParent, "parent", "", "Page the new page is created under")
	pageCreateCmd.MarkFlagsMutuallyExclusive("database", "parent")
	pageCreateCmd.MarkFlagsOneRequired("database", "parent")

	pageCmd.AddCommand(pageGetCmd, pageSetCmd, pageCreateCmd, pageArchiveCmd)
	rootCmd.AddCommand(pageCmd)
}

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Read and edit pages",
}

var pageGetCmd = &cobra.Command{
	Use:   "get [page-id]",
	Short: "Print a page and its properties",
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
		ctx := cmd.Context()
		p, err := s.FetchPage(ctx, args[0])
		if err != nil {
			return err
		}
		markdown := pr.Format() == output.FormatMarkdown
		if withBody || markdown {
			body, err := p.LoadBody(ctx)
			if err != nil {
				return err
			}
			if err := block.LoadAll(ctx, body); err != nil {
				return err
			}
			if !markdown {
				return pr.Blocks(body)
			}
		}
		return pr.Page(p)
	},
}

var pageSetCmd = &cobra.Command{
	Use:   "set [page-id] [name=value]...",
	Short: "Assign property values and save the page",
	Long: `Assign property values and save the page.

Values are parsed according to the property's kind. Lists are comma
separated, dates are YYYY-MM-DD or RFC 3339 and "start/end" sets a range.
An empty value clears numbers, selects and dates.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		p, err := s.FetchPage(ctx, args[0])
		if err != nil {
			return err
		}
		for _, arg := range args[1:] {
			name, raw, err := splitAssignment(arg)
			if err != nil {
				return err
			}
			v, err := parseFor(p, name, raw)
			if err != nil {
				return err
			}
			if err := p.Set(name, v); err != nil {
				return err
			}
		}
		if err := s.SavePage(ctx, p); err != nil {
			return err
		}
		return pr.Page(p)
	},
}

var pageCreateCmd = &cobra.Command{
	Use:   "create [name=value]...",
	Short: "Create a page in a database or under another page",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		var p *record.Page
		if createDatabase != "" {
			db, err := s.FetchDatabase(ctx, createDatabase)
			if err != nil {
				return err
			}
			p = record.NewPage(api.DatabaseParent(db.ID), db.Schema)
		} else {
			id, err := api.NormalizeID(createParent)
			if err != nil {
				return err
			}
			p = record.NewPage(api.PageParent(id), nil)
		}
		for _, arg := range args {
			name, raw, err := splitAssignment(arg)
			if err != nil {
				return err
			}
			v, err := parseFor(p, name, raw)
			if err != nil {
				return err
			}
			if err := p.Set(name, v); err != nil {
				return err
			}
		}
		created, err := s.InsertPage(ctx, p)
		if err != nil {
			return err
		}
		return pr.Page(created)
	},
}

var pageArchiveCmd = &cobra.Command{
	Use:   "archive [page-id]",
	Short: "Move a page to the trash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		p, err := s.FetchPage(ctx, args[0])
		if err != nil {
			return err
		}
		p.Archive()
		if err := s.SavePage(ctx, p); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "archived %s\n", p.ID)
		return nil
	},
}

func splitAssignment(arg string) (string, string, error) {
	name, value, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", arg)
	}
	return name, value, nil
}

// parseFor parses raw as the kind the page's schema declares for name. A
// page outside any database only has a title, so every name parses as one.
func parseFor(p *record.Page, name, raw string) (property.Value, error) {
	if sch := p.Schema(); sch != nil {
		k, ok := sch.KindOf(name)
		if !ok {
			return nil, &api.UnknownPropertyError{Property: name}
		}
		return property.FromString(k, raw)
	}
	if v, err := p.Get(name); err == nil {
		return property.FromString(v.Kind(), raw)
	}
	return property.FromString(property.KindTitle, raw)
}
