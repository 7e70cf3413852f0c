package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xtopay/checkout-backend/simulation"
)

var Version = "dev"

func main() {
	var apiBase string

	rootCmd := &cobra.Command{
		Use:     "checkout-demo",
		Short:   "Drive the Xtopay checkout demo flows against a running backend",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", envOr("API_BASE", simulation.DefaultAPIBase), "checkout API base URL")

	client := func() *simulation.APIClient {
		return simulation.NewAPIClient(apiBase, simulation.DemoCredentials)
	}

	rootCmd.AddCommand(initiateCmd(client))
	rootCmd.AddCommand(payCmd(client))
	rootCmd.AddCommand(statusCmd(client))
	rootCmd.AddCommand(cancelCmd(client))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
