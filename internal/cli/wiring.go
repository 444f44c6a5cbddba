package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"quiz-results-service/internal/app"
	"quiz-results-service/internal/config"
	"quiz-results-service/internal/domain"
	"quiz-results-service/internal/infra/memory"
	"quiz-results-service/internal/infra/postgres"
	redisinfra "quiz-results-service/internal/infra/redis"
)

func newLogger(cfg config.Config) *slog.Logger {
	logger := newLoggerTo(os.Stdout, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLoggerTo(w io.Writer, cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: config.LogLevel(cfg.Log.Level),
	}))
}

// backends holds the storage ports chosen from config. Redis and Postgres
// are used when configured; otherwise the in-memory implementations fill in.
type backends struct {
	directory app.Directory
	quizzes   app.QuizRepository
	results   app.ResultStore
	cache     app.ResultCache
	analytics app.AnalyticsRepository

	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
	}

	resultTTL := config.TTLDuration(cfg.Redis.ResultTTL, redisinfra.DefaultResultTTL)
	if redisClient != nil {
		b.cache = redisinfra.NewResultCache(redisClient, resultTTL)
	} else {
		logger.Warn("redis not configured, result cache is process local")
		b.cache = memory.NewResultCache(resultTTL)
	}

	var loader memory.QuizLoader
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		db := postgres.OpenDB(cfg.Postgres.URL)
		b.closers = append(b.closers, func() { _ = db.Close() })

		loader = postgres.NewQuizLoader(pool)
		b.directory = postgres.NewDirectory(db)
		b.results = postgres.NewResultStore(db)
		b.analytics = postgres.NewAnalytics(db)
	} else {
		catalog := domain.Catalog{}
		if cfg.Fixtures.Path != "" {
			var err error
			catalog, err = memory.LoadCatalog(cfg.Fixtures.Path)
			if err != nil {
				b.Close()
				return nil, err
			}
		}
		logger.Warn("postgres not configured, using in-memory directory and results",
			slog.Int("quizzes", len(catalog.Quizzes)))
		dir := memory.NewDirectory(catalog)
		store := memory.NewResultStore()
		b.closers = append(b.closers, func() {
			logger.Info("discarding in-memory results", slog.Int("results", store.Len()))
		})
		loader = dir
		b.directory = dir
		b.results = store
		b.analytics = memory.NewAnalytics(store, dir)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if redisClient != nil {
		b.quizzes = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		b.quizzes = memory.NewQuizRepository(loader, quizTTL)
	}
	return b, nil
}
