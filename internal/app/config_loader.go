package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/kaggle-sync/internal/domain"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. KAGGLESYNC_DOWNLOAD_NUMBER
const EnvPrefix = "KAGGLESYNC"

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.kaggle-sync")
	}

	// Registering every key lets AutomaticEnv resolve keys absent from the file
	for key, value := range configValues(config) {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// configValues flattens config into viper keys
func configValues(config *domain.Config) map[string]interface{} {
	return map[string]interface{}{
		"search.query":            config.Search.Query,
		"search.sort_by":          config.Search.SortBy,
		"search.overfetch_margin": config.Search.OverfetchMargin,
		"search.max_pages":        config.Search.MaxPages,
		"download.output_dir":     config.Download.OutputDir,
		"download.number":         config.Download.Number,
		"download.unzip":          config.Download.Unzip,
		"log.path":                config.Log.Path,
		"log.lock":                config.Log.Lock,
		"log.lock_timeout":        config.Log.LockTimeout.String(),
		"kaggle.binary":           config.Kaggle.Binary,
		"kaggle.config_dir":       config.Kaggle.ConfigDir,
		"kaggle.min_version":      config.Kaggle.MinVersion,
		"kaggle.search_args":      config.Kaggle.SearchArgs,
		"history.enabled":         config.History.Enabled,
		"history.database_path":   config.History.DatabasePath,
		"notification.enabled":    config.Notification.Enabled,
		"notification.sound":      config.Notification.Sound,
		"notification.method":     config.Notification.Method,
		"logging.level":           config.Logging.Level,
		"logging.format":          config.Logging.Format,
		"logging.output_path":     config.Logging.OutputPath,
		"logging.transcript_dir":  config.Logging.TranscriptDir,
		"logging.events_dir":      config.Logging.EventsDir,
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.OutputDir = expandPath(config.Download.OutputDir)
	config.Log.Path = expandPath(config.Log.Path)
	config.History.DatabasePath = expandPath(config.History.DatabasePath)
	config.Kaggle.ConfigDir = expandPath(config.Kaggle.ConfigDir)
	config.Logging.TranscriptDir = expandPath(config.Logging.TranscriptDir)
	config.Logging.EventsDir = expandPath(config.Logging.EventsDir)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	path = os.ExpandEnv(path)

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	return path
}

// ValidateConfig validates the configuration. It is exported so the CLI can
// re-check after applying flag overrides.
func ValidateConfig(config *domain.Config) error {
	if strings.TrimSpace(config.Search.Query) == "" {
		return fmt.Errorf("search query cannot be empty")
	}

	if config.Search.OverfetchMargin < 0 {
		return fmt.Errorf("overfetch margin cannot be negative")
	}

	if config.Search.MaxPages < 1 {
		return fmt.Errorf("max pages must be at least 1")
	}

	if config.Download.OutputDir == "" {
		return fmt.Errorf("download output directory not configured")
	}

	if config.Download.Number < 1 {
		return fmt.Errorf("number of datasets must be at least 1, got %d", config.Download.Number)
	}

	if config.Log.Path == "" {
		return fmt.Errorf("download log path not configured")
	}

	if config.Log.LockTimeout < 0 {
		return fmt.Errorf("lock timeout cannot be negative")
	}

	if config.Kaggle.Binary == "" {
		return fmt.Errorf("kaggle binary not configured")
	}

	if config.History.Enabled && config.History.DatabasePath == "" {
		return fmt.Errorf("history database path not configured")
	}

	switch config.Notification.Method {
	case "osascript", "notify-send":
	default:
		return fmt.Errorf("unsupported notification method: %s", config.Notification.Method)
	}

	switch config.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported logging format: %s", config.Logging.Format)
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range configValues(config) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
