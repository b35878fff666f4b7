package app

import (
	"context"
	"errors"
	"fmt"

	"drinks-service/internal/audit"
	"drinks-service/internal/config"

	"github.com/go-logr/logr"
)

const (
	MaxAuditLimit = 1000

	errAuditNeedsPostgres = "audit history requires DB_DRIVER=postgres"
	errAuditDrinkIDFmt    = "drink id must not be negative, got %d"
	errAuditLimitFmt      = "limit must be between 1 and %d, got %d"
	errFailedReadAuditFmt = "failed to read audit history: %w"
)

// AuditHistory reads recorded menu changes.
type AuditHistory interface {
	Recent(ctx context.Context, drinkID int64, limit int) ([]*audit.Event, error)
}

// RecentAudit returns the latest menu changes, newest first. A drinkID of 0
// covers every drink.
func RecentAudit(ctx context.Context, cfg *config.Config, log logr.Logger, drinkID int64, limit int) ([]*audit.Event, error) {
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, errors.New(errAuditNeedsPostgres)
	}
	if err := validateAuditQuery(drinkID, limit); err != nil {
		return nil, err
	}

	store, err := openStorage(ctx, &cfg.Database, log)
	if err != nil {
		return nil, err
	}
	defer store.close()

	return recentAudit(ctx, audit.NewPostgresStore(store.db.Pool), drinkID, limit)
}

func recentAudit(ctx context.Context, history AuditHistory, drinkID int64, limit int) ([]*audit.Event, error) {
	if err := validateAuditQuery(drinkID, limit); err != nil {
		return nil, err
	}

	events, err := history.Recent(ctx, drinkID, limit)
	if err != nil {
		return nil, fmt.Errorf(errFailedReadAuditFmt, err)
	}
	return events, nil
}

func validateAuditQuery(drinkID int64, limit int) error {
	if drinkID < 0 {
		return fmt.Errorf(errAuditDrinkIDFmt, drinkID)
	}
	if limit < 1 || limit > MaxAuditLimit {
		return fmt.Errorf(errAuditLimitFmt, MaxAuditLimit, limit)
	}
	return nil
}
