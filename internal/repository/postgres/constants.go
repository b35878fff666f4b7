package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	migrationsDir        = "migrations"
	migrationsSourceName = "iofs"

	errDrinkNotFound    = "drink not found"
	errDrinkTitleExists = "a drink with this title already exists"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"

	errFailedOpenMigrationsFmt   = "failed to open embedded migrations: %w"
	errFailedCreateMigratorFmt   = "failed to create migrator: %w"
	errFailedRunMigrationsFmt    = "failed to run migrations: %w"
	errFailedReadMigrationVerFmt = "failed to read migration version: %w"

	errFailedCreateDrinkFmt  = "failed to create drink: %w"
	errFailedGetDrinkFmt     = "failed to get drink: %w"
	errFailedListDrinksFmt   = "failed to list drinks: %w"
	errFailedScanDrinkFmt    = "failed to scan drink: %w"
	errIterateDrinksFmt      = "error iterating drinks: %w"
	errFailedUpdateDrinkFmt  = "failed to update drink: %w"
	errFailedDeleteDrinkFmt  = "failed to delete drink: %w"
	errFailedEncodeRecipeFmt = "failed to encode recipe: %w"
	errFailedDecodeRecipeFmt = "failed to decode recipe for drink %d: %w"
)

var (
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedCreateDrink          = func(err error) error { return fmt.Errorf(errFailedCreateDrinkFmt, err) }
	errFailedCreateMigrator       = func(err error) error { return fmt.Errorf(errFailedCreateMigratorFmt, err) }
	errFailedDecodeRecipe         = func(id int64, err error) error { return fmt.Errorf(errFailedDecodeRecipeFmt, id, err) }
	errFailedDeleteDrink          = func(err error) error { return fmt.Errorf(errFailedDeleteDrinkFmt, err) }
	errFailedEncodeRecipe         = func(err error) error { return fmt.Errorf(errFailedEncodeRecipeFmt, err) }
	errFailedGetDrink             = func(err error) error { return fmt.Errorf(errFailedGetDrinkFmt, err) }
	errFailedListDrinks           = func(err error) error { return fmt.Errorf(errFailedListDrinksFmt, err) }
	errFailedOpenMigrations       = func(err error) error { return fmt.Errorf(errFailedOpenMigrationsFmt, err) }
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedReadMigrationVersion = func(err error) error { return fmt.Errorf(errFailedReadMigrationVerFmt, err) }
	errFailedRunMigrations        = func(err error) error { return fmt.Errorf(errFailedRunMigrationsFmt, err) }
	errFailedScanDrink            = func(err error) error { return fmt.Errorf(errFailedScanDrinkFmt, err) }
	errFailedUpdateDrink          = func(err error) error { return fmt.Errorf(errFailedUpdateDrinkFmt, err) }
	errIterateDrinks              = func(err error) error { return fmt.Errorf(errIterateDrinksFmt, err) }
)
