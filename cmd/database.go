package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	databaseCmd.AddCommand(databaseGetCmd)
	rootCmd.AddCommand(databaseCmd)
}

var databaseCmd = &cobra.Command{
	Use:     "database",
	Aliases: []string{"db"},
	Short:   "Inspect databases",
}

var databaseGetCmd = &cobra.Command{
	Use:   "get [database-id]",
	Short: "Print a database and its property schema",
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
		db, err := s.FetchDatabase(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return pr.Database(db)
	},
}
