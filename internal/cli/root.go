package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	ok   = color.New(color.FgGreen).SprintFunc()
	warn = color.New(color.FgYellow).SprintFunc()
	bad  = color.New(color.FgRed).SprintFunc()
)

// RootCmd returns the babymind command tree
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "babymind",
		Short: "Administer the BabyMind care engine",
		Long: `Administer the BabyMind care engine.

Configuration is read from the environment and an optional .env file:
  DATABASE_TYPE    sqlite, postgres or mysql (default: sqlite)
  DB_PATH          SQLite database path (default: ./babymind.db)
  DATABASE_URL     PostgreSQL or MySQL connection URL
  RULES_PATH       rule-table YAML file (default: built-in tables)
  JWT_SECRET       secret for caregiver tokens`,
		SilenceUsage: true,
	}

	cmd.AddCommand(BackupCmd())
	cmd.AddCommand(RulesCmd())
	cmd.AddCommand(TokenCmd())
	cmd.AddCommand(RunCmd())

	return cmd
}
