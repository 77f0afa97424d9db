package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/yourusername/kaggle-sync/internal/domain"
	"github.com/yourusername/kaggle-sync/internal/infrastructure"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent download attempts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		runID, _ := cmd.Flags().GetString("run")

		repo := openHistory(cmd)
		defer repo.Close()

		attempts, err := repo.ListAttempts(domain.AttemptFilter{
			RunID:  runID,
			Status: domain.AttemptStatus(status),
			Limit:  limit,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(attempts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No download attempts recorded")
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatAttempts(attempts))
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download attempt statistics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo := openHistory(cmd)
		defer repo.Close()

		stats, err := repo.GetStats()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printStats(cmd.OutOrStdout(), stats)
	},
}

var loggedCmd = &cobra.Command{
	Use:   "logged",
	Short: "List datasets recorded in the download log",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		known, err := infrastructure.NewFileDownloadLog(config.Log.Path).Read()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		for _, ref := range sortedRefs(known) {
			fmt.Fprintln(cmd.OutOrStdout(), ref)
		}
	},
}

func init() {
	historyCmd.Flags().StringP("status", "s", "", "Filter by status (succeeded, failed, skipped)")
	historyCmd.Flags().IntP("limit", "l", 20, "Maximum number of attempts to show")
	historyCmd.Flags().String("run", "", "Only show attempts of this run ID")
}

// openHistory opens the history database or exits
func openHistory(cmd *cobra.Command) *infrastructure.SQLiteHistoryRepository {
	config, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !config.History.Enabled {
		fmt.Fprintln(os.Stderr, "Error: run history is disabled (history.enabled: false)")
		os.Exit(1)
	}

	repo, err := infrastructure.NewSQLiteHistoryRepository(config.History.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return repo
}

func formatAttempts(attempts []*domain.Attempt) string {
	tbl := uitable.New()
	tbl.MaxColWidth = 50
	tbl.AddRow("DATASET", "STATUS", "REASON", "STARTED", "RUN")
	for _, a := range attempts {
		reason := string(a.Reason)
		if reason == "" {
			reason = "-"
		}
		tbl.AddRow(a.Ref, a.Status, reason, a.StartedAt.Format(time.DateTime), truncate(a.RunID, 8))
	}
	return tbl.String()
}

func printStats(out io.Writer, stats *domain.HistoryStats) {
	fmt.Fprintln(out, "Download Statistics:")
	fmt.Fprintf(out, "  Runs:      %d\n", stats.Runs)
	fmt.Fprintf(out, "  Attempts:  %d\n", stats.Attempts)
	fmt.Fprintf(out, "  Succeeded: %d\n", stats.Succeeded)
	fmt.Fprintf(out, "  Failed:    %d\n", stats.Failed)
	fmt.Fprintf(out, "  Skipped:   %d\n", stats.Skipped)
}

func sortedRefs(set domain.DatasetSet) []string {
	refs := make([]string, 0, set.Len())
	for ref := range set {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
