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

// searchCmd implements 'navctl search KEY'
var searchCmd = &cobra.Command{
	Use:   "search KEY",
	Short: "Search the fund directory by code, name or pinyin initials",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validateFormat(); err != nil {
		return err
	}
	key := strings.TrimSpace(args[0])
	if key == "" {
		return fmt.Errorf("search key is required")
	}

	container, err := wire()
	if err != nil {
		return err
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	funds, err := container.DirectoryService.Search(ctx, key)
	if err != nil {
		return err
	}
	return writeFunds(cmd.OutOrStdout(), funds, outputFormat)
}

func writeFunds(w io.Writer, funds []domain.FundInfo, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(funds)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tTYPE")
	for _, f := range funds {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Code, f.Name, f.Type)
	}
	return tw.Flush()
}
