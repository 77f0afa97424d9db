package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventsPath returns the daily JSON event log in dir
func EventsPath(dir string, date time.Time) string {
	filename := fmt.Sprintf("events-%s.log", date.Format("20060102"))
	return filepath.Join(dir, filename)
}

// newEventsCore creates a JSON core appending to today's event log in dir.
// Events keep every field of the console output in machine-readable form.
func newEventsCore(dir string, level zapcore.Level) (zapcore.Core, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create events directory: %w", err)
	}

	file, err := os.OpenFile(EventsPath(dir, time.Now()), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open events log: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.CallerKey = ""

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level), nil
}
