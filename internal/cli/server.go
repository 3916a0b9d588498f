package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weapon-quiz-service/internal/app"
	"weapon-quiz-service/internal/catalog"
	"weapon-quiz-service/internal/config"
	"weapon-quiz-service/internal/infra/memory"
	rediscache "weapon-quiz-service/internal/infra/redis"
	"weapon-quiz-service/internal/logger"
	transport "weapon-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// sessionStore is a session repository that evicts idle sessions in the background.
type sessionStore interface {
	app.SessionRepository
	RunJanitor(ctx context.Context, interval time.Duration)
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Env)
	defer func() { _ = log.Sync() }()

	normalize, err := normalizeOptions(cfg)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	pool, err := connectPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	source, err := newRecordSource(cfg, pool, log)
	if err != nil {
		return err
	}
	loader := catalog.NewLoader(source, normalize, log.Named("catalog"))

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)
	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)

	var catalogRepo app.CatalogRepository
	var store sessionStore
	if redisClient != nil {
		catalogRepo = rediscache.NewCatalogRepository(redisClient, loader, catalogTTL, log.Named("cache"))
		store = rediscache.NewSessionStore(redisClient, redisTTL, log.Named("sessions"))
	} else {
		catalogRepo = memory.NewCatalogRepository(loader, catalogTTL)
		store = memory.NewSessionStore(memory.WithIdleTTL(config.TTLDuration(cfg.Quiz.IdleTTL, 30*time.Minute)))
	}
	go store.RunJanitor(ctx, time.Minute)

	service := app.NewQuizService(store, catalogRepo, app.Options{
		CatalogLimit: config.IntOr(cfg.Catalog.Limit, app.DefaultCatalogLimit),
		PoolSize:     config.IntOr(cfg.Quiz.Size, app.DefaultPoolSize),
	}, log.Named("quiz"))

	pacing := transport.Pacing{
		Cooldown:   config.TTLDuration(cfg.Quiz.Cooldown, 0),
		Transition: config.TTLDuration(cfg.Quiz.TransitionDelay, 1500*time.Millisecond),
	}
	router := transport.NewRouter(
		transport.NewWSHandler(service, pacing, log.Named("ws")),
		transport.NewRESTHandler(service, log.Named("rest")),
		cfg.Server.AllowedOrigins,
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
