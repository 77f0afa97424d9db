package infrastructure

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/yourusername/kaggle-sync/internal/domain"
)

// ErrLogLocked is returned when another run holds the download log lock
var ErrLogLocked = errors.New("download log is locked by another run")

const lockRetryDelay = 200 * time.Millisecond

// FileDownloadLog implements DownloadLog as a plain text file with one
// identifier per line. The file is only ever appended to.
type FileDownloadLog struct {
	path     string
	fileLock *flock.Flock
}

// NewFileDownloadLog creates a download log backed by path
func NewFileDownloadLog(path string) *FileDownloadLog {
	return &FileDownloadLog{
		path:     path,
		fileLock: flock.New(path + ".lock"),
	}
}

// Path returns the log file location
func (l *FileDownloadLog) Path() string {
	return l.path
}

// Read loads every non-empty line of the log. A missing file yields an empty set.
func (l *FileDownloadLog) Read() (domain.DatasetSet, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewDatasetSet(), nil
		}
		return nil, fmt.Errorf("failed to open download log: %w", err)
	}
	defer file.Close()

	refs := domain.NewDatasetSet()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			refs.Add(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read download log: %w", err)
	}

	return refs, nil
}

// Append records ref at the end of the log, creating the file if needed
func (l *FileDownloadLog) Append(ref string) error {
	if err := l.ensureDir(); err != nil {
		return err
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open download log: %w", err)
	}

	if _, err := file.WriteString(ref + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("failed to append to download log: %w", err)
	}
	return file.Close()
}

// Lock takes an advisory lock on <log>.lock, waiting up to timeout.
// Returns ErrLogLocked when another process keeps holding it.
func (l *FileDownloadLog) Lock(ctx context.Context, timeout time.Duration) error {
	if err := l.ensureDir(); err != nil {
		return err
	}

	var locked bool
	var err error
	if timeout <= 0 {
		locked, err = l.fileLock.TryLock()
	} else {
		lockCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		locked, err = l.fileLock.TryLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrLogLocked, l.fileLock.Path())
		}
		return fmt.Errorf("failed to lock download log: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLogLocked, l.fileLock.Path())
	}
	return nil
}

// Unlock releases the advisory lock
func (l *FileDownloadLog) Unlock() error {
	return l.fileLock.Unlock()
}

func (l *FileDownloadLog) ensureDir() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create download log directory: %w", err)
	}
	return nil
}
