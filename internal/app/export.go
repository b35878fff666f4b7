package app

import (
	"context"
	"fmt"
	"time"

	"drinks-service/internal/config"
	"drinks-service/internal/domain/drink"
	"drinks-service/internal/repository"
	"drinks-service/internal/storage/s3"

	"github.com/go-logr/logr"
)

const (
	defaultPresignExpiry   = 15 * time.Minute
	errFailedListMenuFmt   = "failed to list drinks: %w"
	errFailedExportMenuFmt = "failed to export menu: %w"
	errFailedPresignFmt    = "failed to presign menu export: %w"
)

// MenuExporter uploads menu snapshots.
type MenuExporter interface {
	ExportMenu(ctx context.Context, bucket string, drinks []*drink.Drink, now time.Time) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, bucket, key string) (string, error)
}

type ExportResult struct {
	Bucket string
	Key    string
	Drinks int
	URL    string
}

// ExportMenu writes the full menu to the configured bucket. A positive
// presign duration also returns a time-limited download URL.
func ExportMenu(ctx context.Context, cfg *config.Config, log logr.Logger, presign time.Duration) (*ExportResult, error) {
	if err := cfg.AWS.ValidateExport(); err != nil {
		return nil, err
	}

	store, err := openStorage(ctx, &cfg.Database, log)
	if err != nil {
		return nil, err
	}
	defer store.close()

	expiry := presign
	if expiry <= 0 {
		expiry = defaultPresignExpiry
	}
	client, err := s3.NewClient(&cfg.AWS, expiry)
	if err != nil {
		return nil, err
	}

	return exportMenu(ctx, store.drinks, client, cfg.AWS.ExportBucket, presign > 0, time.Now())
}

func exportMenu(
	ctx context.Context,
	drinks repository.DrinkRepository,
	exporter MenuExporter,
	bucket string,
	presign bool,
	now time.Time,
) (*ExportResult, error) {
	menu, err := drinks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf(errFailedListMenuFmt, err)
	}

	key, err := exporter.ExportMenu(ctx, bucket, menu, now)
	if err != nil {
		return nil, fmt.Errorf(errFailedExportMenuFmt, err)
	}

	result := &ExportResult{Bucket: bucket, Key: key, Drinks: len(menu)}
	if presign {
		result.URL, err = exporter.GeneratePresignedDownloadURL(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf(errFailedPresignFmt, err)
		}
	}

	return result, nil
}
