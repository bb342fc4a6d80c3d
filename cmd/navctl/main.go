// Package main is navctl, a command-line client for one-off fund estimates.
package main

import (
	"fmt"
	"os"

	"github.com/aristath/fundnav/internal/config"
	"github.com/aristath/fundnav/internal/di"
	"github.com/aristath/fundnav/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	outputFormat string
	logLevel     string
)

// rootCmd is the base command for the navctl CLI
var rootCmd = &cobra.Command{
	Use:   "navctl",
	Short: "Intraday NAV estimates for Chinese open-end funds",
	Long: `navctl estimates fund NAVs from the command line using the same tiered
engine as the fundnav server: official feed, proxy instrument, then holdings.

Example usage:
  navctl estimate 161725 110011
  navctl estimate 161725 --format=json
  navctl search 白酒
  navctl phase`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format: table, json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	return logger.New(logger.Config{
		Level:  logLevel,
		Pretty: true,
		Output: os.Stderr,
	})
}

// wire loads configuration and builds the container. The caller closes it.
func wire() (*di.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	container, _, err := di.Wire(cfg, newLogger())
	if err != nil {
		return nil, err
	}
	return container, nil
}

func validateFormat() error {
	switch outputFormat {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (want table or json)", outputFormat)
	}
}
