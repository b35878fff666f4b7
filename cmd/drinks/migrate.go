package main

import (
	"errors"
	"fmt"
	"strconv"

	"drinks-service/internal/config"
	"drinks-service/internal/repository/postgres"

	"github.com/spf13/cobra"
)

var errMigrateNeedsPostgres = errors.New("migrations require DB_DRIVER=postgres")

func init() {
	rootCmd.AddCommand(newMigrateCommand())
}

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the drinks database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				changed, err := m.Up()
				if err != nil {
					return err
				}
				if !changed {
					cmd.Println("No schema changes to apply.")
					return nil
				}
				cmd.Println("Applied all pending migrations.")
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down <steps>",
		Short: "Roll back schema migrations by step count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseMigrationSteps(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				changed, err := m.Down(steps)
				if err != nil {
					return err
				}
				if !changed {
					cmd.Println("No schema changes to rollback.")
					return nil
				}
				cmd.Printf("Rolled back up to %d migration step(s).\n", steps)
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				version, dirty, ok, err := m.Version()
				if err != nil {
					return err
				}
				if !ok {
					cmd.Println("No migrations applied.")
					return nil
				}
				cmd.Printf("version=%d dirty=%t\n", version, dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

func withMigrator(cmd *cobra.Command, fn func(*postgres.Migrator) error) error {
	cfg, err := config.LoadStorage()
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return errMigrateNeedsPostgres
	}

	migrator, err := postgres.NewMigrator(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrf("warning: failed to close migration runner cleanly: %v\n", closeErr)
		}
	}()

	return fn(migrator)
}

func parseMigrationSteps(arg string) (int, error) {
	steps, err := strconv.Atoi(arg)
	if err != nil || steps <= 0 {
		return 0, fmt.Errorf("invalid steps %q: must be a positive integer", arg)
	}
	return steps, nil
}
