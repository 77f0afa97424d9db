package domain

import (
	"context"
	"fmt"
)

// Searcher lists candidate datasets for a query
type Searcher interface {
	// Search returns up to limit identifiers ranked by popularity, most popular first
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// Downloader fetches and unpacks a single dataset
type Downloader interface {
	// Download fetches ref under baseDir and returns the destination directory
	Download(ctx context.Context, ref DatasetRef, baseDir string) (string, error)
}

// DownloadLog is the append-only record of datasets already downloaded
type DownloadLog interface {
	// Read returns every identifier logged so far; a missing log is an empty set
	Read() (DatasetSet, error)

	// Append records a successfully downloaded identifier
	Append(ref string) error
}

// FailureReason classifies why a download failed
type FailureReason string

const (
	ReasonNotFound     FailureReason = "not_found"
	ReasonAccessDenied FailureReason = "access_denied"
	ReasonOther        FailureReason = "other"
)

// DownloadError describes a failed download
type DownloadError struct {
	Ref    string
	Reason FailureReason
	Detail string // Trimmed error text reported by the tool
	Err    error
}

func (e *DownloadError) Error() string {
	switch e.Reason {
	case ReasonNotFound:
		return fmt.Sprintf("dataset %s not found (404)", e.Ref)
	case ReasonAccessDenied:
		return fmt.Sprintf("access denied to dataset %s (403)", e.Ref)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("download of %s failed: %s", e.Ref, e.Detail)
		}
		return fmt.Sprintf("download of %s failed: %v", e.Ref, e.Err)
	}
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
