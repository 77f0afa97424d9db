package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/kaggle-sync/pkg/logger"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Show raw kaggle CLI output recorded during runs",
	Long: `Show the kaggle commands and their raw output recorded in the daily
transcript. Transcripts are only written when logging.transcript_dir is set.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dateStr, _ := cmd.Flags().GetString("date")
		tail, _ := cmd.Flags().GetInt("tail")
		grep, _ := cmd.Flags().GetString("grep")

		config, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if config.Logging.TranscriptDir == "" {
			fmt.Fprintln(os.Stderr, "Error: transcripts are disabled (logging.transcript_dir is empty)")
			os.Exit(1)
		}

		date := time.Now()
		if dateStr != "" {
			date, err = time.ParseInLocation("2006-01-02", dateStr, time.Local)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid date %q, expected YYYY-MM-DD\n", dateStr)
				os.Exit(1)
			}
		}

		reader := logger.NewTranscriptReader(config.Logging.TranscriptDir)
		var entries []logger.TranscriptEntry
		if grep != "" {
			entries, err = reader.Search(date, grep, tail)
		} else {
			entries, err = reader.Read(date, tail)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(entries) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No commands recorded in %s\n", reader.Path(date))
			return
		}
		printTranscript(cmd.OutOrStdout(), entries)
	},
}

func init() {
	transcriptCmd.Flags().String("date", "", "Day to show as YYYY-MM-DD (default today)")
	transcriptCmd.Flags().IntP("tail", "t", 10, "Show only the last N commands (0 for all)")
	transcriptCmd.Flags().StringP("grep", "g", "", "Only show commands whose command line or output contains this text")
	rootCmd.AddCommand(transcriptCmd)
}

func printTranscript(out io.Writer, entries []logger.TranscriptEntry) {
	for i, entry := range entries {
		if i > 0 {
			fmt.Fprintln(out)
		}
		status := entry.Status
		if status == "" {
			status = "INCOMPLETE"
		}
		fmt.Fprintf(out, "[%s] %s $ %s\n", entry.StartedAt, status, entry.Command)
		for _, line := range entry.Output {
			fmt.Fprintf(out, "    %s\n", line)
		}
		if entry.Message != "" && !entry.Succeeded() {
			fmt.Fprintf(out, "    (%s)\n", strings.TrimSpace(entry.Message))
		}
	}
}
