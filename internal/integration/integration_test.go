package integration

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"weapon-quiz-service/internal/app"
	"weapon-quiz-service/internal/catalog"
	pgmirror "weapon-quiz-service/internal/infra/postgres"
	pgmigrations "weapon-quiz-service/internal/infra/postgres/migrations"
	infraredis "weapon-quiz-service/internal/infra/redis"
)

func TestMirrorPlaythroughEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedWeapons(t, ctx, pgURL, sampleWeapons())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := catalog.NewLoader(pgmirror.NewWeaponMirror(pool), catalog.Options{Mode: catalog.ModeScaling}, nil)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	catalogRepo := infraredis.NewCatalogRepository(redisClient, loader, 5*time.Minute, nil)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute, nil)
	service := app.NewQuizService(sessionStore, catalogRepo, app.Options{CatalogLimit: 10, PoolSize: 3}, nil,
		app.WithRand(rand.New(rand.NewSource(7))))

	session, err := service.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := session.Progress().Total; got != 2 {
		t.Fatalf("expected pool of 2 answerable weapons, got %d", got)
	}

	item, _, err := service.CurrentItem(ctx, session.ID())
	if err != nil {
		t.Fatalf("current item: %v", err)
	}
	if _, err := service.SubmitGuess(ctx, session.ID(), strings.ToUpper(item.CorrectAnswers[0])); err != nil {
		t.Fatalf("submit first: %v", err)
	}
	if _, err := service.SubmitGuess(ctx, session.ID(), "Luck"); err != nil {
		t.Fatalf("submit second: %v", err)
	}

	results, err := service.Results(ctx, session.ID())
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.Total != 2 || results.CorrectCount != 1 || results.Percentage != 50 {
		t.Fatalf("unexpected results %+v", results)
	}

	snap, err := sessionStore.Snapshot(ctx, session.ID())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Cursor != 2 || snap.CorrectCount != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "weapons"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/weapons?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedWeapons(t *testing.T, ctx context.Context, dsn string, records []catalog.Record) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	written, err := pgmirror.NewWeaponWriter(db).Upsert(ctx, records)
	if err != nil {
		t.Fatalf("seed weapons: %v", err)
	}
	if written != len(records) {
		t.Fatalf("expected %d rows written, got %d", len(records), written)
	}
}

func sampleWeapons() []catalog.Record {
	return []catalog.Record{
		{
			ID:         "w-claymore",
			Name:       "Claymore",
			ScalesWith: []catalog.Scaling{{Name: "Str", Scaling: "D"}, {Name: "Dex", Scaling: "D"}},
		},
		{
			ID:         "w-moonveil",
			Name:       "Moonveil",
			ScalesWith: []catalog.Scaling{{Name: "Int", Scaling: "B"}, {Name: "Dex", Scaling: "E"}},
		},
		{
			ID:   "w-club",
			Name: "Club",
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
