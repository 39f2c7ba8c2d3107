package main

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/kiwari-pos/register/internal/config"
	"github.com/kiwari-pos/register/internal/logging"
	"github.com/spf13/cobra"
)

func migrateCmd(envFile *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the catalog schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			logger := logging.New(cfg.Log.Level, cfg.Log.Pretty)

			m, err := migrate.New("file://"+dir, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("create migrate: %w", err)
			}
			defer m.Close()

			switch args[0] {
			case "up":
				err = m.Up()
			case "down":
				err = m.Down()
			}
			if errors.Is(err, migrate.ErrNoChange) {
				logger.Info().Msg("schema already up to date")
				return nil
			}
			if err != nil {
				return fmt.Errorf("migrate %s: %w", args[0], err)
			}

			version, dirty, _ := m.Version()
			logger.Info().Uint("version", version).Bool("dirty", dirty).Str("direction", args[0]).Msg("migration applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "migrations", "Directory holding the migration files")
	return cmd
}
