package postgres

import (
	"embed"
	"errors"

	"drinks-service/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator applies the embedded schema migrations.
type Migrator struct {
	m *migrate.Migrate
}

func NewMigrator(cfg *config.DatabaseConfig) (*Migrator, error) {
	src, err := iofs.New(migrationFiles, migrationsDir)
	if err != nil {
		return nil, errFailedOpenMigrations(err)
	}

	m, err := migrate.NewWithSourceInstance(migrationsSourceName, src, cfg.MigrationURL())
	if err != nil {
		return nil, errFailedCreateMigrator(err)
	}

	return &Migrator{m: m}, nil
}

// Up applies all pending migrations. It reports whether anything changed.
func (m *Migrator) Up() (bool, error) {
	if err := m.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, errFailedRunMigrations(err)
	}
	return true, nil
}

// Down rolls back steps migrations. It reports whether anything changed.
func (m *Migrator) Down(steps int) (bool, error) {
	err := m.m.Steps(-steps)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, migrate.ErrNoChange) || errors.Is(err, migrate.ErrNilVersion) {
		return false, nil
	}
	// Rolled back fewer steps than requested because the first migration was reached.
	var shortLimit migrate.ErrShortLimit
	if errors.As(err, &shortLimit) {
		return int(shortLimit.Short) < steps, nil
	}
	return false, errFailedRunMigrations(err)
}

// Version returns the applied schema version; ok is false on a fresh database.
func (m *Migrator) Version() (version uint, dirty bool, ok bool, err error) {
	version, dirty, err = m.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, false, nil
		}
		return 0, false, false, errFailedReadMigrationVersion(err)
	}
	return version, dirty, true, nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}
