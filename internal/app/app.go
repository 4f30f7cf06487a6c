package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pvcommunity/internal/benchmark"
	"pvcommunity/internal/cache"
	"pvcommunity/internal/config"
	httpserver "pvcommunity/internal/http"
	"pvcommunity/internal/http/handlers"
	"pvcommunity/internal/ingest"
	"pvcommunity/internal/ratelimit"
	"pvcommunity/internal/repository"
	"pvcommunity/internal/service"
	"pvcommunity/internal/stats"
	"pvcommunity/internal/ws"
	"pvcommunity/libs/db"
	libredis "pvcommunity/libs/redis"
)

// App wires community service dependencies.
type App struct {
	server      *httpserver.Server
	consumer    *ingest.Consumer
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.Open(cfg.Database.DSN, db.PoolOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}

	store := repository.NewPostgresStore(sqlDB)
	if err := store.EnsureSchema(context.Background()); err != nil {
		sqlDB.Close()
		return nil, err
	}

	var redisClient *redis.Client
	var statsCache *cache.StatsCache
	var limiter *ratelimit.Limiter
	var updates *ratelimit.UpdateGuard
	if cfg.Redis.Addr != "" {
		redisClient, err = libredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		statsCache = cache.NewStatsCache(redisClient, cfg.CacheTTL())
		limiter = ratelimit.NewLimiter(redisClient, cfg.Limits.SubmitPerHour, 0)
		updates = ratelimit.NewUpdateGuard(redisClient, cfg.Limits.UpdatesPerMonth)
	} else {
		logger.Warn("redis not configured, cache and rate limits disabled")
	}

	aggregator := stats.NewAggregator(store)
	engine := benchmark.NewEngine(store)
	tokens := service.NewShareTokenService(cfg.Secrets.ShareTokenSecret, cfg.ShareTokenTTL())
	hub := ws.NewHub(logger)
	wsServer := ws.NewServer(hub, 10*time.Second, logger)

	communityService := service.NewCommunityService(
		store,
		aggregator,
		engine,
		statsCache,
		limiter,
		updates,
		tokens,
		hub,
		[]byte(cfg.Secrets.HashSecret),
		logger,
	)

	routes := httpserver.Routes{
		Stats:       handlers.NewStatsHandler(communityService, logger),
		Totals:      handlers.NewTotalsHandler(communityService, logger),
		Regionen:    handlers.NewRegionenHandler(communityService, logger),
		Benchmark:   handlers.NewBenchmarkHandler(communityService, logger),
		Trends:      handlers.NewTrendsHandler(communityService, logger),
		Degradation: handlers.NewDegradationHandler(communityService, logger),
		Submit:      handlers.NewSubmitHandler(communityService, logger),
		Delete:      handlers.NewDeleteHandler(communityService, logger),
		Live:        wsServer.HandleWS,
		Health:      handlers.NewHealthHandler(),
	}

	router := httpserver.CORS(cfg.HTTP.CORSOrigins, httpserver.NewRouter(routes))
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	var consumer *ingest.Consumer
	if brokers := cfg.Kafka.Brokers; len(brokers) > 0 {
		consumer, err = ingest.NewConsumer(brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, communityService, logger)
		if err != nil {
			if redisClient != nil {
				redisClient.Close()
			}
			sqlDB.Close()
			return nil, err
		}
	}

	return &App{
		server:      server,
		consumer:    consumer,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts HTTP server and, when configured, the Kafka consumer. The
// first component to fail takes the other down with it.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- a.server.Run(ctx)
	}()
	if a.consumer != nil {
		go func() {
			errCh <- a.consumer.Run(ctx)
		}()
	}
	return <-errCh
}

// Close releases resources.
func (a *App) Close() {
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Warn("failed to close kafka consumer", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
