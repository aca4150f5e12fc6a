package cmd

import (
	"github.com/spf13/cobra"

	config "task-lifecycle.com/task-lifecycle/internal/configs"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := config.Migrate(a.db); err != nil {
			return err
		}

		a.log.Info().Str("dsn", a.cfg.DatabaseDSN).Msg("schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
