package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/yourusername/kaggle-sync/pkg/logger"
)

// CommandResult holds the captured output of a finished command
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandError is returned when a command cannot start or exits non-zero
type CommandError struct {
	Command  string
	ExitCode int // -1 when the process never started
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the binary could not be located
func (e *CommandError) NotFound() bool {
	return errors.Is(e.Err, exec.ErrNotFound) || errors.Is(e.Err, os.ErrNotExist)
}

// CommandRunner runs an external command to completion
type CommandRunner interface {
	Run(ctx context.Context, binary string, args ...string) (*CommandResult, error)
}

// ExecRunner runs commands with os/exec and captures stdout and stderr.
// When transcriptDir is set, every invocation is also appended to a daily
// transcript file.
type ExecRunner struct {
	transcriptDir string
}

// NewExecRunner creates a new runner; an empty transcriptDir disables transcripts
func NewExecRunner(transcriptDir string) *ExecRunner {
	return &ExecRunner{transcriptDir: transcriptDir}
}

// Run executes binary with args and waits for it to finish.
// Note: exec.CommandContext passes args directly to the process, no shell quoting needed
func (r *ExecRunner) Run(ctx context.Context, binary string, args ...string) (*CommandResult, error) {
	cmdLine := ShellEscapeCommand(binary, args...)

	var transcript io.Writer = io.Discard
	if r.transcriptDir != "" {
		file, err := r.openTranscript()
		if err != nil {
			return nil, fmt.Errorf("failed to open transcript: %w", err)
		}
		defer file.Close()
		transcript = file
		writeTranscriptHeader(file, cmdLine)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = io.MultiWriter(&stdout, transcript)
	cmd.Stderr = io.MultiWriter(&stderr, transcript)

	err := cmd.Run()
	result := &CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		cmdErr := &CommandError{
			Command:  cmdLine,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		result.ExitCode = cmdErr.ExitCode
		writeTranscriptFooter(transcript, false, err.Error())
		return result, cmdErr
	}

	writeTranscriptFooter(transcript, true, "exit status 0")
	return result, nil
}

// openTranscript opens the transcript file for today
func (r *ExecRunner) openTranscript() (*os.File, error) {
	if err := os.MkdirAll(r.transcriptDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	path := logger.TranscriptPath(r.transcriptDir, time.Now())
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// writeTranscriptHeader writes the command start marker
func writeTranscriptHeader(w io.Writer, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "\n=== [%s] ===\n", timestamp)
	fmt.Fprintf(w, "$ %s\n", cmdLine)
}

// writeTranscriptFooter writes the command end marker
func writeTranscriptFooter(w io.Writer, success bool, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, status, message)
	fmt.Fprint(w, "=== END ===\n\n")
}
