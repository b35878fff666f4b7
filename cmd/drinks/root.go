package main

import (
	"errors"
	"io/fs"
	"os"

	"drinks-service/internal/config"
	"drinks-service/pkg/logger"

	"github.com/go-logr/logr"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultEnvFile = ".env"

var BuildVersion = "dev"

var envFile string

var rootCmd = &cobra.Command{
	Use:          "drinks",
	Short:        "Coffee shop drinks API",
	Long:         "Drinks menu API protected by bearer tokens from an OAuth2 identity provider.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(cmd, envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "Path of a dotenv file to load before reading the environment.")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of the drinks CLI",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s\n", BuildVersion)
		},
	})
}

func Execute() error {
	return rootCmd.Execute()
}

// loadEnvFile never overrides variables that are already set. A missing
// default file is fine; a missing explicit one is an error.
func loadEnvFile(cmd *cobra.Command, path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
			return nil
		}
		return err
	}
	return nil
}

func newLogger(cfg *config.Config) logr.Logger {
	return logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr).WithName("drinks")
}
