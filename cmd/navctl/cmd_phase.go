package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aristath/fundnav/internal/config"
	"github.com/aristath/fundnav/internal/modules/market_hours"
	"github.com/spf13/cobra"
)

// phaseCmd implements 'navctl phase'
var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Show the current Shanghai session phase",
	Args:  cobra.NoArgs,
	RunE:  runPhase,
}

func init() {
	rootCmd.AddCommand(phaseCmd)
}

func runPhase(cmd *cobra.Command, args []string) error {
	if err := validateFormat(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	clock, err := market_hours.NewMarketClock(market_hours.XSHG, cfg.MarketHolidays...)
	if err != nil {
		return err
	}
	return writePhase(cmd.OutOrStdout(), clock.Status(time.Now()), outputFormat)
}

func writePhase(w io.Writer, status market_hours.SessionStatus, format string) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(status)
	}
	_, err := fmt.Fprintf(w, "%s %s %s (%s)\n", status.Exchange, status.Date, status.Phase, status.LocalTime)
	return err
}
