package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	transcriptPrefix = "kaggle"
	transcriptEnd    = "=== END ==="
)

var (
	transcriptStartPattern  = regexp.MustCompile(`^=== \[(.+)\] ===$`)
	transcriptStatusPattern = regexp.MustCompile(`^\[(.+)\] (SUCCESS|FAILED): (.*)$`)
)

// TranscriptPath returns the daily transcript file of raw tool output in dir
func TranscriptPath(dir string, date time.Time) string {
	filename := fmt.Sprintf("%s-%s.log", transcriptPrefix, date.Format("20060102"))
	return filepath.Join(dir, filename)
}

// TranscriptEntry is one command invocation recorded in a transcript
type TranscriptEntry struct {
	StartedAt string
	Command   string
	Output    []string
	Status    string // SUCCESS, FAILED, or empty when the process never finished
	Message   string
}

// Succeeded reports whether the command exited with status zero
func (e TranscriptEntry) Succeeded() bool {
	return e.Status == "SUCCESS"
}

// TranscriptReader reads the transcripts written by the command runner
type TranscriptReader struct {
	dir string
}

// NewTranscriptReader creates a new transcript reader
func NewTranscriptReader(dir string) *TranscriptReader {
	return &TranscriptReader{dir: dir}
}

// Path returns the transcript file for date
func (tr *TranscriptReader) Path(date time.Time) string {
	return TranscriptPath(tr.dir, date)
}

// Read returns the last limit entries of the transcript for date (all when limit <= 0)
func (tr *TranscriptReader) Read(date time.Time, limit int) ([]TranscriptEntry, error) {
	file, err := os.Open(tr.Path(date))
	if err != nil {
		if os.IsNotExist(err) {
			return []TranscriptEntry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []TranscriptEntry
	var current *TranscriptEntry

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if m := transcriptStartPattern.FindStringSubmatch(line); m != nil {
			if current != nil {
				entries = append(entries, *current)
			}
			current = &TranscriptEntry{StartedAt: m[1]}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case line == transcriptEnd:
			entries = append(entries, *current)
			current = nil
		case current.Command == "" && strings.HasPrefix(line, "$ "):
			current.Command = strings.TrimPrefix(line, "$ ")
		default:
			if m := transcriptStatusPattern.FindStringSubmatch(line); m != nil {
				current.Status = m[2]
				current.Message = m[3]
			} else if strings.TrimSpace(line) != "" {
				current.Output = append(current.Output, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		entries = append(entries, *current)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Search returns entries whose command or output contains query, case-insensitively
func (tr *TranscriptReader) Search(date time.Time, query string, limit int) ([]TranscriptEntry, error) {
	entries, err := tr.Read(date, 0)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var filtered []TranscriptEntry
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Command), query) ||
			strings.Contains(strings.ToLower(strings.Join(entry.Output, "\n")), query) {
			filtered = append(filtered, entry)
		}
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered, nil
}
