package domain

import "time"

// Config represents the application configuration
type Config struct {
	Search       SearchConfig       `mapstructure:"search"`
	Download     DownloadConfig     `mapstructure:"download"`
	Log          LogConfig          `mapstructure:"log"`
	Kaggle       KaggleConfig       `mapstructure:"kaggle"`
	History      HistoryConfig      `mapstructure:"history"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// SearchConfig contains search-related configuration
type SearchConfig struct {
	Query           string `mapstructure:"query"`
	SortBy          string `mapstructure:"sort_by"`
	OverfetchMargin int    `mapstructure:"overfetch_margin"` // Extra candidates requested beyond known + number
	MaxPages        int    `mapstructure:"max_pages"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	Number    int    `mapstructure:"number"` // Maximum new datasets per run
	Unzip     bool   `mapstructure:"unzip"`
}

// LogConfig contains download log configuration
type LogConfig struct {
	Path        string        `mapstructure:"path"`
	Lock        bool          `mapstructure:"lock"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// KaggleConfig contains Kaggle CLI configuration
type KaggleConfig struct {
	Binary     string `mapstructure:"binary"`
	ConfigDir  string `mapstructure:"config_dir"`  // Directory holding kaggle.json, empty = ~/.kaggle
	MinVersion string `mapstructure:"min_version"` // Empty disables the version check
	SearchArgs string `mapstructure:"search_args"` // Extra flags for "datasets list", shell syntax
}

// HistoryConfig contains run history configuration
type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sound   bool   `mapstructure:"sound"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level         string `mapstructure:"level"`          // debug, info, warn, error
	Format        string `mapstructure:"format"`         // json, console
	OutputPath    string `mapstructure:"output_path"`    // stdout, stderr, or file path
	TranscriptDir string `mapstructure:"transcript_dir"` // Raw kaggle output, empty disables
	EventsDir     string `mapstructure:"events_dir"`     // Daily JSON event logs, empty disables
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Query:           "diabetes health",
			SortBy:          "votes",
			OverfetchMargin: 10,
			MaxPages:        1,
		},
		Download: DownloadConfig{
			OutputDir: "datasets/raw",
			Number:    1,
			Unzip:     true,
		},
		Log: LogConfig{
			Path:        "download_log.txt",
			Lock:        true,
			LockTimeout: 5 * time.Second,
		},
		Kaggle: KaggleConfig{
			Binary: "kaggle",
		},
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "download_history.db",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Sound:   false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
