package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "aigate",
		Short:   "AI task routing and governance layer",
		Version: version,
	}

	root.AddCommand(
		newStatsCmd(),
		newCacheCmd(),
		newQuotaCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
