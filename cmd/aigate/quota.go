package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jobdeck-ai/aigate/pkg/config"
	"github.com/jobdeck-ai/aigate/pkg/ledger"
	"github.com/jobdeck-ai/aigate/pkg/models"
	"github.com/jobdeck-ai/aigate/pkg/quota"
)

func newQuotaCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Inspect tier quota usage",
	}

	var (
		userID string
		tier   string
	)
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's usage against tier limits for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			lg, err := ledger.New(cfg.LedgerDBPath)
			if err != nil {
				return err
			}
			defer func() { _ = lg.Close() }()

			enforcer := quota.New(cfg.TierLimits, lg)
			status, err := enforcer.Status(context.Background(), userID, models.Tier(tier))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIER\tUSED\tLIMIT\tHIGH USED\tHIGH LIMIT")
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n",
				status.Tier, status.UsedTotal, status.Limits.Total,
				status.UsedHigh, status.Limits.High)
			return w.Flush()
		},
	}
	statusCmd.Flags().StringVar(&userID, "user", "", "user ID to inspect")
	statusCmd.Flags().StringVar(&tier, "tier", "free", "user's tier")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "aigate.yaml", "path to config file")
	cmd.AddCommand(statusCmd)
	return cmd
}
