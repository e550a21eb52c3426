package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentic-research/notional/internal/mcpserver"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve workspace read tools over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		logger.Info("serving mcp on stdio")
		return mcpserver.New(s, logger, Version).ServeStdio()
	},
}
