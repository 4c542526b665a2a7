// Package store persists the server-side log of answered questions.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Entry struct {
	ID              string    `gorm:"primaryKey;column:id"`
	Timestamp       time.Time `gorm:"column:timestamp;not null;index:idx_query_log_timestamp"`
	Question        string    `gorm:"column:question;not null"`
	Answer          string    `gorm:"column:answer;not null;default:''"`
	Confidence      float64   `gorm:"column:confidence;not null;default:0"`
	Category        string    `gorm:"column:category;not null;default:'';index:idx_query_log_category"`
	MatchedQuestion string    `gorm:"column:matched_question;not null;default:''"`
	Matched         bool      `gorm:"column:matched;not null;default:false"`
	Transport       string    `gorm:"column:transport;not null;default:''"`
}

func (Entry) TableName() string {
	return "query_log"
}

type Filter struct {
	Category  string
	Unmatched bool
	Since     time.Time
	Until     time.Time
	Limit     int
}

type Stats struct {
	Total         int64
	Matched       int64
	AvgConfidence float64
}

type QueryLog struct {
	db *gorm.DB
}

// Open opens a SQLite database at dsn with gorm's logger silenced.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		Close(db)
		return nil, fmt.Errorf("store: enabling WAL mode: %w", err)
	}
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func New(db *gorm.DB) (*QueryLog, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("store: running migrations: %w", err)
	}
	return &QueryLog{db: db}, nil
}

// Record stores e, filling ID and Timestamp when unset.
func (l *QueryLog) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return l.db.WithContext(ctx).Create(&e).Error
}

func (l *QueryLog) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := l.db.WithContext(ctx).Model(&Entry{})

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Unmatched {
		q = q.Where("matched = ?", false)
	}
	if !f.Since.IsZero() {
		q = q.Where("timestamp >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		q = q.Where("timestamp <= ?", f.Until)
	}
	return q
}

// Query returns matching entries, newest first.
func (l *QueryLog) Query(ctx context.Context, f Filter) ([]Entry, error) {
	q := l.filtered(ctx, f).Order("timestamp DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var entries []Entry
	err := q.Find(&entries).Error
	return entries, err
}

func (l *QueryLog) Stats(ctx context.Context, f Filter) (Stats, error) {
	var row struct {
		Total         int64
		Matched       int64
		AvgConfidence float64
	}
	err := l.filtered(ctx, f).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN matched THEN 1 ELSE 0 END), 0) AS matched, COALESCE(AVG(confidence), 0) AS avg_confidence").
		Scan(&row).Error
	if err != nil {
		return Stats{}, fmt.Errorf("store: computing stats: %w", err)
	}
	return Stats{Total: row.Total, Matched: row.Matched, AvgConfidence: row.AvgConfidence}, nil
}

// Prune deletes entries recorded before cutoff and returns how many went.
func (l *QueryLog) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res := l.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&Entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("store: pruning entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}
