package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	cachepkg "github.com/jobdeck-ai/aigate/pkg/cache"
	"github.com/jobdeck-ai/aigate/pkg/config"
)

func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the durable result cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry count",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			d, err := cachepkg.OpenDurable(cfg.CacheDBPath)
			if err != nil {
				return err
			}
			defer func() { _ = d.Close() }()

			entries, err := d.Entries(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Entries: %d\n", entries)
			return nil
		},
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			d, err := cachepkg.OpenDurable(cfg.CacheDBPath)
			if err != nil {
				return err
			}
			defer func() { _ = d.Close() }()

			entries, err := d.List(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("Cache is empty.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tTASK\tTIER\tQUALITY\tEXPIRES")
			for _, e := range entries {
				fmt.Fprintf(w, "%.12s\t%s\t%s\t%s\t%s\n",
					e.Key, e.TaskName, e.Tier, e.Quality,
					e.ExpiresAt.Local().Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to show")

	var expiredOnly bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			d, err := cachepkg.OpenDurable(cfg.CacheDBPath)
			if err != nil {
				return err
			}
			defer func() { _ = d.Close() }()

			removed, err := d.Clear(context.Background(), expiredOnly)
			if err != nil {
				return err
			}
			if expiredOnly {
				fmt.Printf("Removed %d expired cache entries.\n", removed)
			} else {
				fmt.Printf("Removed %d cache entries.\n", removed)
			}
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&expiredOnly, "expired", false, "only clear expired entries")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "aigate.yaml", "path to config file")
	cmd.AddCommand(statsCmd, listCmd, clearCmd)
	return cmd
}
