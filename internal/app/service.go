package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"

	"drinks-service/internal/audit"
	"drinks-service/internal/auth"
	"drinks-service/internal/config"
	apphttp "drinks-service/internal/http"

	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"
)

const serverAddrPrefix = ":"

// Service is the drinks API with everything it depends on.
type Service struct {
	config   *config.Config
	log      logr.Logger
	storage  *storage
	audit    *audit.Logger
	redis    *redis.Client
	resolver *auth.JWKSResolver
	server   *apphttp.Server
}

// NewService wires up all dependencies. Callers must Close the service.
func NewService(ctx context.Context, cfg *config.Config, log logr.Logger) (*Service, error) {
	svc := &Service{config: cfg, log: log}

	store, err := openStorage(ctx, &cfg.Database, log)
	if err != nil {
		return nil, err
	}
	svc.storage = store

	auditLog, err := openAudit(store, log)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.audit = auditLog

	menu, redisClient, err := openMenuCache(ctx, &cfg.Redis, log)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.redis = redisClient

	guard, resolver, err := buildGuard(ctx, &cfg.Auth, log)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.resolver = resolver

	svc.server = apphttp.NewServer(&apphttp.ServerDependencies{
		Config:    cfg,
		Drinks:    svc.storage.drinks,
		MenuCache: menu,
		Audit:     auditLog,
		Guard:     guard,
		Logger:    log,
	})

	return svc, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	// Keys are fetched on demand if the identity provider is unreachable now.
	if err := s.resolver.Refresh(ctx); err != nil {
		s.log.Error(err, "jwks warm-up failed")
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", "port", s.config.Server.Port)
		errCh <- s.server.Start(serverAddrPrefix + s.config.Server.Port)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.log.Info("server exited gracefully")
	return nil
}

func (s *Service) Close() {
	// Pending audit writes need the database.
	if s.audit != nil {
		s.audit.Wait()
	}
	if s.storage != nil {
		s.storage.close()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.Error(err, "failed to close redis client")
		}
	}
}
