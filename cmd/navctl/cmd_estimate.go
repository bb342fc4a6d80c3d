package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aristath/fundnav/internal/domain"
	"github.com/spf13/cobra"
)

var estimateTimeout time.Duration

// estimateCmd implements 'navctl estimate CODE...'
var estimateCmd = &cobra.Command{
	Use:   "estimate CODE...",
	Short: "Estimate the current NAV of one or more funds",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	estimateCmd.Flags().DurationVar(&estimateTimeout, "timeout", 30*time.Second, "Overall timeout for the batch")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	if err := validateFormat(); err != nil {
		return err
	}

	container, err := wire()
	if err != nil {
		return err
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), estimateTimeout)
	defer cancel()

	ids := make([]domain.FundID, 0, len(args))
	for _, arg := range args {
		if code := strings.TrimSpace(arg); code != "" {
			ids = append(ids, domain.FundID(code))
		}
	}

	snapshots := container.BatchScheduler.Run(ctx, ids)
	return writeEstimates(cmd.OutOrStdout(), snapshots, outputFormat)
}

func writeEstimates(w io.Writer, snapshots []domain.EstimateSnapshot, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshots)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tNAV\tDATE\tESTIMATE\tCHANGE\tTIER\tSOURCE")
	for _, s := range snapshots {
		source := s.ProxyInstrument
		if s.SourceTier == domain.TierHoldings {
			source = fmt.Sprintf("%.0f%% covered", s.Coverage)
		}
		estimate := s.EstimatedValue.StringFixed(4)
		change := fmt.Sprintf("%+.2f%%", s.EstimatedChangePercent)
		if s.NoEstimate {
			change = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.FundID, s.Name, s.OfficialNAV.StringFixed(4), s.NAVDate, estimate, change, s.SourceTier, source)
	}
	return tw.Flush()
}
