package main

import (
	"os/signal"
	"syscall"

	"drinks-service/internal/app"
	"drinks-service/internal/config"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the drinks HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := app.NewService(ctx, cfg, log)
			if err != nil {
				log.Error(err, "failed to initialize service")
				return err
			}
			defer svc.Close()

			return svc.Run(ctx)
		},
	})
}
