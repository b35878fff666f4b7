package main

import (
	"time"

	"drinks-service/internal/app"
	"drinks-service/internal/audit"
	"drinks-service/internal/config"

	"github.com/spf13/cobra"
)

const defaultAuditLimit = 50

func init() {
	rootCmd.AddCommand(newAuditCommand())
}

func newAuditCommand() *cobra.Command {
	var (
		drinkID int64
		limit   int
	)

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent changes to the drinks menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadStorage()
			if err != nil {
				return err
			}

			events, err := app.RecentAudit(cmd.Context(), cfg, newLogger(cfg), drinkID, limit)
			if err != nil {
				return err
			}

			printAuditEvents(cmd, events)
			return nil
		},
	}
	auditCmd.Flags().Int64Var(&drinkID, "drink-id", 0, "Only show changes to this drink (0 shows all).")
	auditCmd.Flags().IntVar(&limit, "limit", defaultAuditLimit, "Maximum number of events to show.")

	return auditCmd
}

func printAuditEvents(cmd *cobra.Command, events []*audit.Event) {
	if len(events) == 0 {
		cmd.Println("No menu changes recorded.")
		return
	}
	for _, e := range events {
		cmd.Printf("%s  %-6s  drink=%d  subject=%s  request=%s\n",
			e.CreatedAt.UTC().Format(time.RFC3339), e.Action, e.DrinkID, e.Subject, e.RequestID)
	}
}
