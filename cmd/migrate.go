package cmd

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"posbridge.GO/config"
)

var (
	migratePath  string
	migrateSteps int
)

func newMigrator() (*migrate.Migrate, error) {
	dsn := config.GetEnv("MYSQL_DSN", "")
	if dsn == "" {
		return nil, fmt.Errorf("MYSQL_DSN is required for migrations")
	}
	return migrate.New("file://"+migratePath, "mysql://"+dsn)
}

var migrateUpCmd = &cobra.Command{
	Use:   "migrate:up",
	Short: "Apply pending schema migrations",
	Run: func(cmd *cobra.Command, args []string) {
		m, err := newMigrator()
		if err != nil {
			fmt.Printf("Migrate: %v\n", err)
			return
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			fmt.Printf("Migrate up failed: %v\n", err)
			return
		}
		fmt.Println("Migrations applied.")
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "migrate:down",
	Short: "Roll back schema migrations",
	Run: func(cmd *cobra.Command, args []string) {
		m, err := newMigrator()
		if err != nil {
			fmt.Printf("Migrate: %v\n", err)
			return
		}
		if err := m.Steps(-migrateSteps); err != nil && err != migrate.ErrNoChange {
			fmt.Printf("Migrate down failed: %v\n", err)
			return
		}
		fmt.Printf("Rolled back %d migration(s).\n", migrateSteps)
	},
}

func init() {
	for _, c := range []*cobra.Command{migrateUpCmd, migrateDownCmd} {
		c.Flags().StringVar(&migratePath, "path", "migrations", "Migrations directory")
	}
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "Number of migrations to roll back")
	rootCmd.AddCommand(migrateUpCmd)
	rootCmd.AddCommand(migrateDownCmd)
}
