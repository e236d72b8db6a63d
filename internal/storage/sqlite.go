// Package storage persists extraction history in SQLite.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yt-extract-api/pkg/models"
)

// SQLite implements the Storage interface using SQLite
type SQLite struct {
	db *gorm.DB
}

// NewSQLite opens (and migrates) the history database at path
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := db.AutoMigrate(&models.ExtractionRecord{}); err != nil {
		return nil, fmt.Errorf("error migrating database: %w", err)
	}

	return &SQLite{db: db}, nil
}

// SaveRecord saves one extraction outcome
func (s *SQLite) SaveRecord(record *models.ExtractionRecord) error {
	return s.db.Create(record).Error
}

// RecentRecords returns the most recent extraction outcomes
func (s *SQLite) RecentRecords(limit int) ([]*models.ExtractionRecord, error) {
	return s.list(s.db.Order("created_at DESC").Limit(limit))
}

// ListRecords lists extraction outcomes with pagination
func (s *SQLite) ListRecords(limit, offset int) ([]*models.ExtractionRecord, error) {
	query := s.db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return s.list(query)
}

func (s *SQLite) list(query *gorm.DB) ([]*models.ExtractionRecord, error) {
	var records []*models.ExtractionRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetStats returns aggregate extraction statistics
func (s *SQLite) GetStats() (*models.Stats, error) {
	stats := &models.Stats{ByOutcome: make(map[string]int64)}

	if err := s.db.Model(&models.ExtractionRecord{}).Count(&stats.TotalExtractions).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.ExtractionRecord{}).
		Where("cached = ?", true).
		Count(&stats.CacheHits).Error; err != nil {
		return nil, err
	}

	type outcomeCount struct {
		Outcome string
		Count   int64
	}
	var counts []outcomeCount
	if err := s.db.Model(&models.ExtractionRecord{}).
		Select("outcome, COUNT(*) as count").
		Group("outcome").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	for _, c := range counts {
		stats.ByOutcome[c.Outcome] = c.Count
		if c.Outcome == "success" {
			stats.Successes = c.Count
		} else {
			stats.Failures += c.Count
		}
	}

	if stats.TotalExtractions > 0 {
		stats.SuccessRate = float64(stats.Successes) / float64(stats.TotalExtractions) * 100
	}

	return stats, nil
}

// Cleanup removes records older than the retention window
func (s *SQLite) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return s.db.Where("created_at < ?", cutoff).
		Delete(&models.ExtractionRecord{}).Error
}

// Close closes the storage connection
func (s *SQLite) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
