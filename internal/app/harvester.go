package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/kaggle-sync/internal/domain"
)

// Options is the immutable configuration of one sync run
type Options struct {
	Query           string
	OutputDir       string
	Number          int // Maximum new datasets to download
	OverfetchMargin int
	LockTimeout     time.Duration
}

// OptionsFromConfig extracts run options from the application configuration
func OptionsFromConfig(config *domain.Config) Options {
	return Options{
		Query:           config.Search.Query,
		OutputDir:       config.Download.OutputDir,
		Number:          config.Download.Number,
		OverfetchMargin: config.Search.OverfetchMargin,
		LockTimeout:     config.Log.LockTimeout,
	}
}

// PreflightRunner gates a run on external prerequisites
type PreflightRunner interface {
	Run(ctx context.Context) error
}

// LogLocker guards the download log against concurrent runs
type LogLocker interface {
	Lock(ctx context.Context, timeout time.Duration) error
	Unlock() error
}

// Notifier is told how a run ended
type Notifier interface {
	NotifyRunCompleted(query string, succeeded, selected int)
	NotifyUpToDate(query string)
	NotifyNothingFound(query string)
	NotifyRunFailed(query string, err error)
}

// FailedDataset is a selected dataset whose download did not succeed
type FailedDataset struct {
	Ref    string
	Reason domain.FailureReason
	Err    error
}

// RunResult summarizes a sync run
type RunResult struct {
	RunID      string
	Outcome    domain.RunOutcome
	Known      int
	Candidates []string
	Selected   []string
	Succeeded  []string
	Failed     []FailedDataset
	Skipped    []string
}

// Harvester downloads datasets that are new relative to the download log
type Harvester struct {
	preflight  PreflightRunner
	log        domain.DownloadLog
	searcher   domain.Searcher
	downloader domain.Downloader
	options    Options
	logger     *zap.Logger

	locker   LogLocker
	history  domain.HistoryRepository
	notifier Notifier
}

// NewHarvester creates a new harvester
func NewHarvester(
	preflight PreflightRunner,
	downloadLog domain.DownloadLog,
	searcher domain.Searcher,
	downloader domain.Downloader,
	options Options,
	logger *zap.Logger,
) *Harvester {
	return &Harvester{
		preflight:  preflight,
		log:        downloadLog,
		searcher:   searcher,
		downloader: downloader,
		options:    options,
		logger:     logger,
	}
}

// SetLocker enables locking of the download log for the duration of a run
func (h *Harvester) SetLocker(locker LogLocker) {
	h.locker = locker
}

// SetHistory enables recording of runs and attempts
func (h *Harvester) SetHistory(history domain.HistoryRepository) {
	h.history = history
}

// SetNotifier enables end-of-run notifications
func (h *Harvester) SetNotifier(notifier Notifier) {
	h.notifier = notifier
}

// Run performs one sync. Only fatal conditions (preflight, lock, unreadable
// log) return an error; every per-dataset failure is reported and skipped.
func (h *Harvester) Run(ctx context.Context) (*RunResult, error) {
	run := domain.NewRun(h.options.Query, h.options.Number)
	result := &RunResult{RunID: run.ID}

	h.logger.Info("Starting dataset sync",
		zap.String("run_id", run.ID),
		zap.String("query", h.options.Query),
		zap.Int("number", h.options.Number),
		zap.String("output", h.options.OutputDir))

	h.createRun(run)

	if err := h.preflight.Run(ctx); err != nil {
		return result, h.abort(run, result, err)
	}

	if h.locker != nil {
		if err := h.locker.Lock(ctx, h.options.LockTimeout); err != nil {
			return result, h.abort(run, result, err)
		}
		defer func() {
			if err := h.locker.Unlock(); err != nil {
				h.logger.Warn("Failed to release download log lock", zap.Error(err))
			}
		}()
	}

	known, err := h.log.Read()
	if err != nil {
		return result, h.abort(run, result, fmt.Errorf("failed to read download log: %w", err))
	}
	result.Known = known.Len()
	run.Known = known.Len()
	h.logger.Info("Loaded download log", zap.Int("known", known.Len()))

	limit := SearchLimit(known.Len(), h.options.Number, h.options.OverfetchMargin)
	h.logger.Info("Searching datasets",
		zap.String("query", h.options.Query),
		zap.Int("limit", limit))

	candidates, err := h.searcher.Search(ctx, h.options.Query, limit)
	if err != nil {
		h.logger.Error("Dataset search failed", zap.Error(err))
		candidates = nil
	}
	result.Candidates = candidates
	run.Candidates = len(candidates)

	if len(candidates) == 0 {
		h.logger.Warn("Nothing found: the search returned no datasets", zap.String("query", h.options.Query))
		h.finish(run, result, domain.OutcomeNothingFound)
		if h.notifier != nil {
			h.notifier.NotifyNothingFound(h.options.Query)
		}
		return result, nil
	}
	h.logger.Info("Search returned candidates", zap.Int("candidates", len(candidates)))

	selected := SelectNew(candidates, known, h.options.Number)
	result.Selected = selected
	run.Selected = len(selected)

	if len(selected) == 0 {
		h.logger.Info("Up to date: no new datasets for this search", zap.String("query", h.options.Query))
		h.finish(run, result, domain.OutcomeUpToDate)
		if h.notifier != nil {
			h.notifier.NotifyUpToDate(h.options.Query)
		}
		return result, nil
	}

	if len(selected) < h.options.Number {
		h.logger.Warn("Fewer new datasets available than requested",
			zap.Int("requested", h.options.Number),
			zap.Int("available", len(selected)),
			zap.String("hint", "raise search.overfetch_margin or search.max_pages"))
	}

	h.logger.Info("Found new datasets, starting downloads", zap.Int("count", len(selected)))

	for i, ref := range selected {
		h.processDataset(ctx, run, result, i, len(selected), ref)
	}

	run.Succeeded = len(result.Succeeded)
	if len(result.Succeeded) > 0 {
		h.logger.Info("Sync finished",
			zap.Int("downloaded", len(result.Succeeded)),
			zap.Int("failed", len(result.Failed)),
			zap.Int("skipped", len(result.Skipped)))
	} else {
		h.logger.Warn("Sync finished without downloading any new dataset",
			zap.Int("failed", len(result.Failed)),
			zap.Int("skipped", len(result.Skipped)))
	}

	h.finish(run, result, domain.OutcomeCompleted)
	if h.notifier != nil {
		h.notifier.NotifyRunCompleted(h.options.Query, len(result.Succeeded), len(selected))
	}
	return result, nil
}

// processDataset validates, downloads and logs a single selected identifier
func (h *Harvester) processDataset(ctx context.Context, run *domain.Run, result *RunResult, index, total int, raw string) {
	log := h.logger.With(zap.String("dataset", raw))
	log.Info("Processing new dataset", zap.Int("position", index+1), zap.Int("total", total))

	attempt := domain.NewAttempt(run.ID, raw)
	defer h.recordAttempt(attempt)

	ref, err := domain.ParseDatasetRef(raw)
	if err != nil {
		log.Warn("Skipping invalid dataset identifier", zap.Error(err))
		attempt.MarkSkipped(err)
		result.Skipped = append(result.Skipped, raw)
		return
	}

	dest, err := h.downloader.Download(ctx, ref, h.options.OutputDir)
	if err != nil {
		reason := h.reportDownloadFailure(log, err)
		attempt.MarkFailed(reason, err)
		result.Failed = append(result.Failed, FailedDataset{Ref: raw, Reason: reason, Err: err})
		return
	}
	log.Info("Download completed", zap.String("destination", dest))

	if err := h.log.Append(raw); err != nil {
		log.Error("Failed to record dataset in download log, it will be downloaded again next run", zap.Error(err))
		attempt.MarkFailed(domain.ReasonOther, err)
		result.Failed = append(result.Failed, FailedDataset{Ref: raw, Reason: domain.ReasonOther, Err: err})
		return
	}
	log.Info("Recorded in download log")

	attempt.MarkSucceeded(dest)
	result.Succeeded = append(result.Succeeded, raw)
}

// reportDownloadFailure prints a diagnostic matching the failure reason
func (h *Harvester) reportDownloadFailure(log *zap.Logger, err error) domain.FailureReason {
	var dlErr *domain.DownloadError
	if !errors.As(err, &dlErr) {
		log.Error("Download failed", zap.Error(err))
		return domain.ReasonOther
	}

	switch dlErr.Reason {
	case domain.ReasonNotFound:
		log.Error("Download failed: dataset not found (404), check the identifier")
	case domain.ReasonAccessDenied:
		log.Error("Download failed: access denied (403), check your credentials or accept the dataset rules on the Kaggle website")
	default:
		if dlErr.Detail != "" {
			log.Error("Download failed", zap.String("details", dlErr.Detail))
		} else {
			log.Error("Download failed", zap.Error(dlErr.Err))
		}
	}
	return dlErr.Reason
}

// abort ends a run on a fatal error
func (h *Harvester) abort(run *domain.Run, result *RunResult, err error) error {
	h.logger.Error("Sync aborted", zap.Error(err))
	h.finish(run, result, domain.OutcomeAborted)
	if h.notifier != nil {
		h.notifier.NotifyRunFailed(h.options.Query, err)
	}
	return err
}

func (h *Harvester) finish(run *domain.Run, result *RunResult, outcome domain.RunOutcome) {
	result.Outcome = outcome
	run.Finish(outcome)
	if h.history == nil {
		return
	}
	if err := h.history.UpdateRun(run); err != nil {
		h.logger.Warn("Failed to update run history", zap.Error(err))
	}
}

func (h *Harvester) createRun(run *domain.Run) {
	if h.history == nil {
		return
	}
	if err := h.history.CreateRun(run); err != nil {
		h.logger.Warn("Failed to record run history", zap.Error(err))
	}
}

func (h *Harvester) recordAttempt(attempt *domain.Attempt) {
	if h.history == nil {
		return
	}
	if err := h.history.RecordAttempt(attempt); err != nil {
		h.logger.Warn("Failed to record attempt history", zap.Error(err))
	}
}
