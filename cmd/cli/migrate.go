package cli

import (
	"fmt"

	"github.com/axellelanca/urlalias/cmd"
	"github.com/axellelanca/urlalias/internal/repository"
	"github.com/spf13/cobra"
)

// MigrateCmd represents the 'migrate' command
// This command handles database schema creation and updates
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `This command connects to the configured database and brings its schema up
to date: embedded SQL migrations for PostgreSQL, GORM automatic migrations
for SQLite.`,
	RunE: func(c *cobra.Command, args []string) error {
		db, err := repository.InitDB(cmd.Cfg.Database.URL)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying SQL database: %w", err)
		}
		defer sqlDB.Close()

		if err := repository.Migrate(db, cmd.Cfg.Database.URL); err != nil {
			return err
		}

		fmt.Fprintln(c.OutOrStdout(), "Database migrations executed successfully.")
		return nil
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
