package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"weapon-quiz-service/internal/catalog"
	"weapon-quiz-service/internal/config"
	"weapon-quiz-service/internal/infra/fanapi"
	pgmirror "weapon-quiz-service/internal/infra/postgres"
)

const (
	sourceAPI    = "api"
	sourceMirror = "mirror"
)

// newAPISource builds the HTTP weapon source from config.
func newAPISource(cfg config.Config, log *zap.Logger) *fanapi.WeaponSource {
	return fanapi.NewWeaponSource(cfg.Catalog.URL,
		fanapi.WithHTTPClient(&http.Client{Timeout: config.TTLDuration(cfg.Catalog.Timeout, 8*time.Second)}),
		fanapi.WithRetries(cfg.Catalog.Retries, config.TTLDuration(cfg.Catalog.Backoff, 250*time.Millisecond)),
		fanapi.WithLogger(log.Named("fanapi")),
	)
}

// newRecordSource picks the configured record source. The mirror needs a pool.
func newRecordSource(cfg config.Config, pool *pgxpool.Pool, log *zap.Logger) (catalog.RecordSource, error) {
	switch cfg.Catalog.Source {
	case "", sourceAPI:
		return newAPISource(cfg, log), nil
	case sourceMirror:
		if pool == nil {
			return nil, fmt.Errorf("catalog source %q requires postgres.url", sourceMirror)
		}
		return pgmirror.NewWeaponMirror(pool), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

func normalizeOptions(cfg config.Config) (catalog.Options, error) {
	grade, err := catalog.ParseMinGrade(cfg.Catalog.MinGrade)
	if err != nil {
		return catalog.Options{}, fmt.Errorf("catalog.min_grade: %w", err)
	}
	return catalog.Options{
		Mode:     catalog.ParseMode(cfg.Catalog.Mode),
		MinGrade: grade,
	}, nil
}

func connectPostgres(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.Postgres.URL == "" {
		return nil, nil
	}
	return pgxpool.Connect(ctx, cfg.Postgres.URL)
}
