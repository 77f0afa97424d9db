package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yourusername/kaggle-sync/internal/app"
	"github.com/yourusername/kaggle-sync/internal/domain"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "kaggle-sync",
		Short: "Incrementally download Kaggle datasets matching a search",
		Long: `kaggle-sync searches Kaggle for datasets matching a query and downloads
the top-ranked ones that are not yet listed in the local download log.
Every successful download is appended to the log, so repeated runs only
fetch datasets that are new.

Requires the kaggle CLI on PATH and API credentials in ~/.kaggle/kaggle.json.`,
		Example: `  kaggle-sync
  kaggle-sync -s "heart disease" -n 3 -o data/raw
  kaggle-sync history --status failed
  kaggle-sync transcript --grep 403`,
		Args: cobra.NoArgs,
		Run:  runSync,
	}
)

func init() {
	defaults := domain.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./config.yaml or $HOME/.kaggle-sync/config.yaml)")
	rootCmd.PersistentFlags().String("log-file", defaults.Log.Path, "Download log listing already downloaded datasets")

	rootCmd.Flags().StringP("search", "s", defaults.Search.Query, "Search query for Kaggle datasets")
	rootCmd.Flags().StringP("output", "o", defaults.Download.OutputDir, "Base directory for downloaded datasets")
	rootCmd.Flags().IntP("number", "n", defaults.Download.Number, "Number of new datasets to download")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(loggedCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig reads the config file and environment, then applies flags the
// user set explicitly on the command line
func loadConfig(cmd *cobra.Command) (*domain.Config, error) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("search") {
		config.Search.Query, _ = flags.GetString("search")
	}
	if flags.Changed("output") {
		config.Download.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("number") {
		config.Download.Number, _ = flags.GetInt("number")
	}
	if flags.Changed("log-file") {
		config.Log.Path, _ = flags.GetString("log-file")
	}

	if err := app.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func main() {
	// A missing .env file is fine, the environment may be set directly
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
