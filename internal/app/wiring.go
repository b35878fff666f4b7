package app

import (
	"context"
	"fmt"
	"net/http"

	"drinks-service/internal/audit"
	"drinks-service/internal/auth"
	"drinks-service/internal/config"
	"drinks-service/internal/infra/cache"
	"drinks-service/internal/repository"
	"drinks-service/internal/repository/memory"
	"drinks-service/internal/repository/postgres"

	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"
)

const (
	errFailedOpenRepositoryFmt = "failed to open drink repository: %w"
	errFailedMigrateFmt        = "failed to migrate database: %w"
	errFailedConnectRedisFmt   = "failed to connect to redis: %w"
	errFailedDiscoverJWKSFmt   = "failed to discover JWKS URL: %w"
	errFailedBuildVerifierFmt  = "failed to build token verifier: %w"
	errFailedBuildAuditFmt     = "failed to build audit logger: %w"
)

// storage is the persistence side shared by every command.
type storage struct {
	drinks repository.DrinkRepository
	db     *postgres.DB
}

func (s *storage) close() {
	if s.db != nil {
		s.db.Close()
	}
}

func openStorage(ctx context.Context, cfg *config.DatabaseConfig, log logr.Logger) (*storage, error) {
	if cfg.Driver == config.DriverMemory {
		log.Info("using in-memory drink repository; data is lost on exit")
		return &storage{drinks: memory.NewDrinkRepository()}, nil
	}

	if cfg.AutoMigrate {
		if err := migrateUp(cfg, log); err != nil {
			return nil, fmt.Errorf(errFailedMigrateFmt, err)
		}
	}

	db, err := postgres.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf(errFailedOpenRepositoryFmt, err)
	}
	log.Info("database connection established", "host", cfg.Host, "database", cfg.Database)

	return &storage{drinks: postgres.NewDrinkRepository(db), db: db}, nil
}

func migrateUp(cfg *config.DatabaseConfig, log logr.Logger) (err error) {
	migrator, err := postgres.NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			log.Error(closeErr, "failed to close migrator cleanly")
		}
	}()

	changed, err := migrator.Up()
	if err != nil {
		return err
	}
	log.Info("schema migrations applied", "changed", changed)
	return nil
}

// openAudit persists menu changes next to the drinks when there is a
// database and writes them to the log otherwise.
func openAudit(store *storage, log logr.Logger) (*audit.Logger, error) {
	var backend audit.Store = audit.NewLogStore(log)
	if store.db != nil {
		backend = audit.NewPostgresStore(store.db.Pool)
	}

	auditLog, err := audit.NewLogger(backend, log)
	if err != nil {
		return nil, fmt.Errorf(errFailedBuildAuditFmt, err)
	}
	return auditLog, nil
}

// openMenuCache returns the Redis cache when configured, otherwise an
// in-process one.
func openMenuCache(ctx context.Context, cfg *config.RedisConfig, log logr.Logger) (cache.MenuCache, *redis.Client, error) {
	if !cfg.Enabled() {
		return cache.NewMemoryMenuCache(cfg.MenuTTL), nil, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf(errFailedConnectRedisFmt, err)
	}
	menu, err := cache.NewRedisMenuCache(client, cfg.MenuTTL)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	log.Info("menu cache backed by redis", "addr", cfg.Addr, "ttl", cfg.MenuTTL.String())
	return menu, client, nil
}

func buildGuard(ctx context.Context, cfg *config.AuthConfig, log logr.Logger) (*auth.Guard, *auth.JWKSResolver, error) {
	client := &http.Client{Timeout: cfg.FetchTimeout}

	jwksURL := cfg.JWKSURL
	if cfg.Discovery {
		discovered, err := auth.DiscoverJWKSURL(ctx, cfg.Issuer, client)
		if err != nil {
			return nil, nil, fmt.Errorf(errFailedDiscoverJWKSFmt, err)
		}
		jwksURL = discovered
	}

	resolver, err := auth.NewJWKSResolver(jwksURL,
		auth.WithHTTPClient(client),
		auth.WithFetchTimeout(cfg.FetchTimeout),
		auth.WithMinRefreshInterval(cfg.MinRefreshInterval),
		auth.WithLogger(log.WithName("jwks")),
	)
	if err != nil {
		return nil, nil, fmt.Errorf(errFailedBuildVerifierFmt, err)
	}

	verifier, err := auth.NewVerifier(resolver, auth.VerifierConfig{
		Issuer:      cfg.Issuer,
		Audience:    cfg.Audience,
		AllowedAlgs: cfg.AllowedAlgs,
		Leeway:      cfg.Leeway,
	})
	if err != nil {
		return nil, nil, fmt.Errorf(errFailedBuildVerifierFmt, err)
	}

	log.Info("token verification configured", "issuer", cfg.Issuer, "audience", cfg.Audience, "jwks_url", jwksURL, "algs", cfg.AllowedAlgs)
	return auth.NewGuard(verifier, log), resolver, nil
}
