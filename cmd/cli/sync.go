package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/kaggle-sync/internal/app"
	"github.com/yourusername/kaggle-sync/internal/domain"
	"github.com/yourusername/kaggle-sync/internal/infrastructure"
	"github.com/yourusername/kaggle-sync/pkg/logger"
)

func runSync(cmd *cobra.Command, args []string) {
	config, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	harvester, closers, err := buildHarvester(config, log)
	if err != nil {
		log.Error("Failed to initialize", zap.Error(err))
		os.Exit(1)
	}

	exitCode := 0
	if _, err := harvester.Run(context.Background()); err != nil {
		exitCode = 1
	}

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		closers = append(closers, log.Sync)
	}
	if err := closeAll(closers); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	os.Exit(exitCode)
}

func newLogger(config *domain.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
		EventsDir:  config.Logging.EventsDir,
	})
}

// buildHarvester wires the harvester and returns the cleanups to run after it
func buildHarvester(config *domain.Config, log *zap.Logger) (*app.Harvester, []func() error, error) {
	var closers []func() error

	runner := infrastructure.NewExecRunner(config.Logging.TranscriptDir)
	kaggle, err := infrastructure.NewKaggleCLI(runner, &config.Kaggle, &config.Search, &config.Download, log)
	if err != nil {
		return nil, nil, err
	}

	credentials, err := infrastructure.NewCredentialsChecker(config.Kaggle.ConfigDir)
	if err != nil {
		return nil, nil, err
	}

	preflight := app.NewPreflight(credentials, kaggle, log)
	downloadLog := infrastructure.NewFileDownloadLog(config.Log.Path)

	harvester := app.NewHarvester(preflight, downloadLog, kaggle, kaggle, app.OptionsFromConfig(config), log)

	if config.Log.Lock {
		harvester.SetLocker(downloadLog)
	}

	if config.History.Enabled {
		history, err := infrastructure.NewSQLiteHistoryRepository(config.History.DatabasePath)
		if err != nil {
			log.Warn("Run history unavailable, continuing without it",
				zap.String("path", config.History.DatabasePath),
				zap.Error(err))
		} else {
			harvester.SetHistory(history)
			closers = append(closers, history.Close)
		}
	}

	if config.Notification.Enabled {
		harvester.SetNotifier(infrastructure.NewNotificationService(&config.Notification, log))
	}

	return harvester, closers, nil
}

// closeAll runs every cleanup and reports all failures together
func closeAll(closers []func() error) error {
	var result *multierror.Error
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
