package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/notional/internal/block"
)

var (
	blocksAll  bool
	appendKind string
)

func init() {
	blocksCmd.Flags().BoolVar(&blocksAll, "all", false, "Load nested children recursively")
	appendCmd.Flags().StringVar(&appendKind, "kind", "paragraph", "Block type: paragraph, heading_1..3, bulleted, numbered, to_do, quote, code, divider")
	rootCmd.AddCommand(blocksCmd, appendCmd)
}

var blocksCmd = &cobra.Command{
	Use:   "blocks [block-or-page-id]",
	Short: "List the child blocks of a page or block",
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
		children, err := s.LoadChildren(ctx, args[0])
		if err != nil {
			return err
		}
		if blocksAll {
			if err := block.LoadAll(ctx, children); err != nil {
				return err
			}
		}
		return pr.Blocks(children)
	},
}

var appendCmd = &cobra.Command{
	Use:   "append [parent-id] [text]...",
	Short: "Append one block per text argument",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		texts := args[1:]
		if len(texts) == 0 {
			if appendKind != "divider" {
				return fmt.Errorf("%s blocks need text", appendKind)
			}
			texts = []string{""}
		}
		blocks := make([]*block.Block, 0, len(texts))
		for _, t := range texts {
			b, err := newBlock(appendKind, t)
			if err != nil {
				return err
			}
			blocks = append(blocks, b)
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		created, err := s.AppendBlocks(cmd.Context(), args[0], blocks...)
		if err != nil {
			return err
		}
		return pr.Blocks(created)
	},
}

func newBlock(kind, text string) (*block.Block, error) {
	switch strings.ToLower(kind) {
	case "paragraph", "p":
		return block.NewParagraph(text), nil
	case "heading_1", "h1":
		return block.NewHeading(1, text), nil
	case "heading_2", "h2":
		return block.NewHeading(2, text), nil
	case "heading_3", "h3":
		return block.NewHeading(3, text), nil
	case "bulleted", "bulleted_list_item":
		return block.NewBulletedItem(text), nil
	case "numbered", "numbered_list_item":
		return block.NewNumberedItem(text), nil
	case "to_do", "todo":
		return block.NewToDo(text, false), nil
	case "quote":
		return block.NewQuote(text), nil
	case "toggle":
		return block.NewToggle(text), nil
	case "code":
		return block.NewCode(text, "plain text"), nil
	case "divider":
		return block.NewDivider(), nil
	}
	return nil, fmt.Errorf("unsupported block kind %q", kind)
}
