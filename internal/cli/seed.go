package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"quiz-results-service/internal/config"
	"quiz-results-service/internal/infra/memory"
	"quiz-results-service/internal/infra/postgres"
)

// NewSeedCmd imports a YAML catalog of users, companies and quizzes into
// Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var fixtures string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import a fixtures catalog into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			if fixtures == "" {
				fixtures = cfg.Fixtures.Path
			}
			if fixtures == "" {
				return fmt.Errorf("no fixtures file given")
			}
			if err := runMigrations(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			catalog, err := memory.LoadCatalog(fixtures)
			if err != nil {
				return err
			}

			db := postgres.OpenDB(cfg.Postgres.URL)
			defer db.Close()
			if err := postgres.ImportCatalog(cmd.Context(), db, catalog); err != nil {
				return err
			}
			logger.Info("catalog imported",
				slog.String("path", fixtures),
				slog.Int("users", len(catalog.Users)),
				slog.Int("companies", len(catalog.Companies)),
				slog.Int("quizzes", len(catalog.Quizzes)))
			return nil
		},
	}
	cmd.Flags().StringVar(&fixtures, "fixtures", "", "catalog YAML (defaults to fixtures.path)")
	return cmd
}
