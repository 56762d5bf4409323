// Package storage persists completed analyses in SQLite through GORM.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "wavescribe.sqlite3"
const errDBClientNil = "db client is nil"

// ErrNotFound is returned when no analysis exists for a requested ID.
var ErrNotFound = errors.New("analysis not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Analysis is one stored analysis run: summary columns for listing plus the
// full serialized result.
type Analysis struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Filename     string  `gorm:"index:idx_filename" json:"filename"`
	Source       string  `json:"source"` // "upload" or "youtube"
	DurationSec  float64 `json:"duration_sec"`
	BPM          float64 `json:"bpm"`
	Key          string  `json:"key"`
	Scale        string  `json:"scale"`
	SectionCount int     `json:"section_count"`
	Result       string  `gorm:"type:text" json:"-"`
	CreatedAt    time.Time
}

// NewDBClient opens the database at WAVESCRIBE_DB_PATH, or the default file
// in the working directory.
func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("WAVESCRIBE_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !os.IsExist(err) {
		if filepath.Dir(dbPath) != "." {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Analysis{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveAnalysis stores a completed analysis and returns its generated ID.
func (c *DBClient) SaveAnalysis(record *Analysis) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := c.DB.Create(record).Error; err != nil {
		return "", fmt.Errorf("creating analysis record: %w", err)
	}
	return record.ID, nil
}

// GetAnalysis fetches one stored analysis, including the serialized result.
func (c *DBClient) GetAnalysis(id string) (*Analysis, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var record Analysis
	err := c.DB.Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying analysis: %w", err)
	}
	return &record, nil
}

// ListAnalyses returns stored analyses newest first, capped at limit
// (or all when limit <= 0).
func (c *DBClient) ListAnalyses(limit int) ([]Analysis, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	query := c.DB.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []Analysis
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	return records, nil
}

// DeleteAnalysis removes one stored analysis.
func (c *DBClient) DeleteAnalysis(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	result := c.DB.Where("id = ?", id).Delete(&Analysis{})
	if result.Error != nil {
		return fmt.Errorf("deleting analysis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
