package main

import (
	"time"

	"drinks-service/internal/app"
	"drinks-service/internal/config"

	"github.com/spf13/cobra"
)

func init() {
	var presign time.Duration

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Upload the full drinks menu as JSON to S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadStorage()
			if err != nil {
				return err
			}

			result, err := app.ExportMenu(cmd.Context(), cfg, newLogger(cfg), presign)
			if err != nil {
				return err
			}

			cmd.Printf("Exported %d drink(s) to s3://%s/%s\n", result.Drinks, result.Bucket, result.Key)
			if result.URL != "" {
				cmd.Printf("Download URL (valid for %s): %s\n", presign, result.URL)
			}
			return nil
		},
	}
	exportCmd.Flags().DurationVar(&presign, "presign", 0, "Also print a presigned download URL valid for this long (0 disables).")

	rootCmd.AddCommand(exportCmd)
}
