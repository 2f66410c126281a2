package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jobdeck-ai/aigate/pkg/config"
	"github.com/jobdeck-ai/aigate/pkg/ledger"
)

func newStatsCmd() *cobra.Command {
	var (
		configPath string
		userID     string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show invocation statistics by task and provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			lg, err := ledger.New(cfg.LedgerDBPath)
			if err != nil {
				return err
			}
			defer func() { _ = lg.Close() }()

			summaries, err := lg.Summary(context.Background(), userID)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No usage data found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TASK\tPROVIDER\tREQUESTS\tSUCCEEDED\tEST. COST")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t$%.4f\n",
					s.TaskName, s.Provider, s.RequestCount, s.SuccessCount, s.TotalCost)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "aigate.yaml", "path to config file")
	cmd.Flags().StringVar(&userID, "user", "", "filter by user ID")
	return cmd
}
