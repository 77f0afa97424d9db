package domain

// HistoryRepository defines the interface for run history persistence.
// History is an audit trail; the download log stays the only source of
// which datasets were already fetched.
type HistoryRepository interface {
	// CreateRun stores a new run
	CreateRun(run *Run) error

	// UpdateRun updates an existing run
	UpdateRun(run *Run) error

	// RecordAttempt stores the outcome of one dataset attempt
	RecordAttempt(attempt *Attempt) error

	// ListAttempts finds attempts, newest first
	ListAttempts(filter AttemptFilter) ([]*Attempt, error)

	// GetStats returns attempt statistics
	GetStats() (*HistoryStats, error)

	// Close releases the underlying storage
	Close() error
}

// AttemptFilter narrows ListAttempts
type AttemptFilter struct {
	RunID  string
	Status AttemptStatus
	Limit  int
}

// HistoryStats represents attempt statistics
type HistoryStats struct {
	Runs      int64 `json:"runs"`
	Attempts  int64 `json:"attempts"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Skipped   int64 `json:"skipped"`
}
