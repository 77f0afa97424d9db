package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus represents the outcome of one dataset attempt
type AttemptStatus string

const (
	AttemptSucceeded AttemptStatus = "succeeded"
	AttemptFailed    AttemptStatus = "failed"
	AttemptSkipped   AttemptStatus = "skipped" // Identifier failed validation
)

// RunOutcome represents how a sync run ended
type RunOutcome string

const (
	OutcomeRunning      RunOutcome = "running"
	OutcomeNothingFound RunOutcome = "nothing_found"
	OutcomeUpToDate     RunOutcome = "up_to_date"
	OutcomeCompleted    RunOutcome = "completed"
	OutcomeAborted      RunOutcome = "aborted"
)

// Run is the history record of one sync run
type Run struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	Query      string     `json:"query" gorm:"not null"`
	Requested  int        `json:"requested"`
	Known      int        `json:"known"`      // Identifiers already in the download log
	Candidates int        `json:"candidates"` // Identifiers returned by the search
	Selected   int        `json:"selected"`
	Succeeded  int        `json:"succeeded"`
	Outcome    RunOutcome `json:"outcome" gorm:"not null;index"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewRun creates a run record for query
func NewRun(query string, requested int) *Run {
	return &Run{
		ID:        uuid.New().String(),
		Query:     query,
		Requested: requested,
		Outcome:   OutcomeRunning,
		StartedAt: time.Now(),
	}
}

// Finish marks the run as ended with the given outcome
func (r *Run) Finish(outcome RunOutcome) {
	r.Outcome = outcome
	now := time.Now()
	r.FinishedAt = &now
}

// Attempt is the history record of one dataset processed during a run
type Attempt struct {
	ID           string        `json:"id" gorm:"primaryKey"`
	RunID        string        `json:"run_id" gorm:"not null;index"`
	Ref          string        `json:"ref" gorm:"not null;index"`
	Status       AttemptStatus `json:"status" gorm:"not null;index"`
	Reason       FailureReason `json:"reason,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Destination  string        `json:"destination,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// NewAttempt creates an attempt record for ref within run
func NewAttempt(runID, ref string) *Attempt {
	return &Attempt{
		ID:        uuid.New().String(),
		RunID:     runID,
		Ref:       ref,
		StartedAt: time.Now(),
	}
}

// MarkSucceeded marks the attempt as downloaded and logged
func (a *Attempt) MarkSucceeded(destination string) {
	a.Status = AttemptSucceeded
	a.Destination = destination
	a.complete()
}

// MarkFailed marks the attempt as failed with a reason
func (a *Attempt) MarkFailed(reason FailureReason, err error) {
	a.Status = AttemptFailed
	a.Reason = reason
	if err != nil {
		a.ErrorMessage = err.Error()
	}
	a.complete()
}

// MarkSkipped marks the attempt as skipped before any download
func (a *Attempt) MarkSkipped(err error) {
	a.Status = AttemptSkipped
	if err != nil {
		a.ErrorMessage = err.Error()
	}
	a.complete()
}

func (a *Attempt) complete() {
	now := time.Now()
	a.CompletedAt = &now
}
