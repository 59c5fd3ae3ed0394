package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cemigrate",
	Short: "Migrate a Clientexec installation into Blesta",
	Long: `cemigrate copies clients, billing, the product catalog, services,
support tickets, the knowledge base, coupons and settings from a Clientexec
database into one Blesta company.

The source database is only ever read. Settings come from cemigrate.yaml,
a .env file and CEMIGRATE_* environment variables.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configFlag      string
	debugFlag       bool
	mappingsFlag    string
	metricsFileFlag string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to the configuration file (default ./cemigrate.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Stop at the first failed step and print every captured failure")
	rootCmd.PersistentFlags().StringVar(&mappingsFlag, "mappings", "", "Path to a field mapping file replacing the built-in tables")
	rootCmd.PersistentFlags().StringVar(&metricsFileFlag, "metrics-file", "", "Write Prometheus metrics of the run to this file")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cemigrate %s\n", rootCmd.Version)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		stop()
		os.Exit(1)
	}
}
