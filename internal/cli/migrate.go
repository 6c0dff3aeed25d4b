package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskproof/internal/config"
	pgInfra "github.com/fastygo/taskproof/internal/infrastructure/postgres"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Moves the Postgres schema using the files under MIGRATIONS_PATH.

Without --steps every pending migration is applied. A positive value applies
that many, a negative value rolls that many back.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "Number of migrations to apply (negative rolls back)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := consoleLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	if err := pgInfra.Migrate(cfg, log, migrateSteps); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
