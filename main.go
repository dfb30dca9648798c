package main

import (
	"context"
	"os"

	"sjsage522/contestharvester/config"
	"sjsage522/contestharvester/helpers"
	"sjsage522/contestharvester/internal/crawler"
	"sjsage522/contestharvester/logger"
	apperrors "sjsage522/contestharvester/pkg/errors"
	"sjsage522/contestharvester/services/cache"
	"sjsage522/contestharvester/services/publisher"
	"sjsage522/contestharvester/services/snapshot"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	if err := newRootCommand(loadConfig).Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads and validates the configuration from the environment
func loadConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	logger.Init(cfg.Environment)

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfiguration("invalid configuration", err)
	}
	return cfg, nil
}

// Services holds all the initialized services
type Services struct {
	Lock      cache.Locker
	Publisher publisher.Publisher
	Failures  helpers.FailureLogger
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices initializes the optional backends. Memcache and Redis
// are only used when configured and reachable; the harvest works without them.
// Memcache only holds the per-source harvest lock so that concurrent runs do
// not harvest the same source twice. Refresh session marks never leave the process.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{
		Lock:     cache.NewMemoryCache(),
		Failures: helpers.NewLogger(cfg.ErrorLogFile),
	}

	if cfg.MemcacheAddr != "" {
		memcache := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := memcache.Ping(); err != nil {
			logger.ForCache().Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache unavailable, harvest lock is process-local")
		} else {
			services.Lock = memcache
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(); err != nil {
			logger.ForPublisher().Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, harvest events will not be published")
			redisPublisher.Close()
		} else {
			services.Publisher = redisPublisher
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
				cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	return services
}

// snapshotPath returns the configured snapshot file of a source
func snapshotPath(cfg *config.Config, source string) string {
	switch source {
	case crawler.SourceContestKorea:
		return cfg.ContestKoreaSnapshot
	case crawler.SourceICS:
		return cfg.ICSSnapshot
	}
	return ""
}

// buildRefreshers wires a store and harvester for each source, sharing one
// fetcher, one refresh session and the harvest lock.
func buildRefreshers(cfg *config.Config, services *Services, sources []string) ([]*snapshot.Refresher, error) {
	fetcher := helpers.NewPageFetcher(cfg.RequestTimeout)
	session := snapshot.NewSession()

	refreshers := make([]*snapshot.Refresher, 0, len(sources))
	for _, source := range sources {
		h, err := crawler.CreateHarvester(cfg, fetcher, source)
		if err != nil {
			return nil, err
		}
		store := snapshot.NewStore(source, snapshotPath(cfg, source))
		r := snapshot.NewRefresher(store, h, session, services.Publisher).WithLock(services.Lock)
		refreshers = append(refreshers, r)
	}
	return refreshers, nil
}
