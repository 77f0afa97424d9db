package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/kaggle-sync/internal/domain"
)

// SQLiteHistoryRepository implements HistoryRepository using SQLite
type SQLiteHistoryRepository struct {
	db *gorm.DB
}

// NewSQLiteHistoryRepository creates a new SQLite history repository
func NewSQLiteHistoryRepository(dbPath string) (*SQLiteHistoryRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Run{}, &domain.Attempt{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteHistoryRepository{db: db}, nil
}

// CreateRun stores a new run
func (r *SQLiteHistoryRepository) CreateRun(run *domain.Run) error {
	return r.db.Create(run).Error
}

// UpdateRun updates an existing run
func (r *SQLiteHistoryRepository) UpdateRun(run *domain.Run) error {
	return r.db.Save(run).Error
}

// RecordAttempt stores the outcome of one dataset attempt
func (r *SQLiteHistoryRepository) RecordAttempt(attempt *domain.Attempt) error {
	return r.db.Create(attempt).Error
}

// ListAttempts finds attempts matching filter, newest first
func (r *SQLiteHistoryRepository) ListAttempts(filter domain.AttemptFilter) ([]*domain.Attempt, error) {
	var attempts []*domain.Attempt
	query := r.db.Model(&domain.Attempt{})

	if filter.RunID != "" {
		query = query.Where("run_id = ?", filter.RunID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	err := query.Order("started_at DESC").Find(&attempts).Error
	return attempts, err
}

// GetStats returns attempt statistics
func (r *SQLiteHistoryRepository) GetStats() (*domain.HistoryStats, error) {
	stats := &domain.HistoryStats{}

	if err := r.db.Model(&domain.Run{}).Count(&stats.Runs).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&domain.Attempt{}).Count(&stats.Attempts).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.AttemptStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.Attempt{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.AttemptSucceeded:
			stats.Succeeded = sc.Count
		case domain.AttemptFailed:
			stats.Failed = sc.Count
		case domain.AttemptSkipped:
			stats.Skipped = sc.Count
		}
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteHistoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
