package infrastructure

import (
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/kaggle-sync/internal/domain"
)

// NotificationService sends desktop notifications at the end of a run
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var name string
	var args []string
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification %s with title %s`, appleScriptString(message), appleScriptString(title))
		if n.config.Sound {
			script += ` sound name "default"`
		}
		name, args = "osascript", []string{"-e", script}
	case "notify-send":
		name, args = "notify-send", []string{title, message}
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err := n.run(name, args...); err != nil {
		n.logger.Warn("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// NotifyRunCompleted sends notification with the run summary
func (n *NotificationService) NotifyRunCompleted(query string, succeeded, selected int) {
	title := "Kaggle Sync Completed"
	message := fmt.Sprintf("%d of %d new dataset(s) downloaded for \"%s\"", succeeded, selected, truncateString(query, 30))
	n.Send(title, message)
}

// NotifyUpToDate sends notification when there was nothing new to download
func (n *NotificationService) NotifyUpToDate(query string) {
	title := "Kaggle Sync Up To Date"
	message := fmt.Sprintf(`No new datasets for "%s"`, truncateString(query, 30))
	n.Send(title, message)
}

// NotifyNothingFound sends notification when the search returned no datasets
func (n *NotificationService) NotifyNothingFound(query string) {
	title := "Kaggle Sync Found Nothing"
	message := fmt.Sprintf(`No datasets match "%s"`, truncateString(query, 30))
	n.Send(title, message)
}

// NotifyRunFailed sends notification when a run aborted
func (n *NotificationService) NotifyRunFailed(query string, err error) {
	title := "Kaggle Sync Failed"
	message := fmt.Sprintf(`"%s": %v`, truncateString(query, 30), err)
	n.Send(title, message)
}

// appleScriptString quotes s as an AppleScript string literal
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
