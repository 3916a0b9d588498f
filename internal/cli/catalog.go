package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weapon-quiz-service/internal/config"
	pgmirror "weapon-quiz-service/internal/infra/postgres"
	"weapon-quiz-service/internal/logger"
)

// NewCatalogCmd groups catalog maintenance commands.
func NewCatalogCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the weapon catalog mirror",
	}

	var limit int
	sync := &cobra.Command{
		Use:   "sync",
		Short: "Copy weapons from the catalog API into the Postgres mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogSync(cmd.Context(), *configPath, limit)
		},
	}
	sync.Flags().IntVar(&limit, "limit", 500, "maximum number of weapons to fetch")
	cmd.AddCommand(sync)
	return cmd
}

func runCatalogSync(ctx context.Context, configPath string, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Env)
	defer func() { _ = log.Sync() }()

	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return err
	}
	db, err := openBun(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := newAPISource(cfg, log).FetchRecords(ctx, limit)
	if err != nil {
		return err
	}
	written, err := pgmirror.NewWeaponWriter(db).Upsert(ctx, records)
	if err != nil {
		return err
	}
	log.Info("catalog mirror synced", zap.Int("fetched", len(records)), zap.Int("written", written))
	return nil
}
