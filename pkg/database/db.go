package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
	// RevokedAt is set once the key is revoked. The row stays so the still
	// valid signature cannot register the key again.
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// APIUsage represents the api_usage table, one row per key and day
type APIUsage struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	KeyID          uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date           string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount   int    `gorm:"default:0" json:"request_count"`
	TotalPositions int    `gorm:"default:0" json:"total_positions"`
	TotalPeople    int    `gorm:"default:0" json:"total_people"`
	HoursPlanned   int    `gorm:"default:0" json:"hours_planned"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunLog represents the run_logs table, one row per scheduling run
type RunLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RunID         string    `gorm:"uniqueIndex;not null" json:"run_id"`
	KeyID         uint      `gorm:"index" json:"key_id"`
	Seed          int64     `json:"seed"`
	Days          int       `json:"days"`
	People        int       `json:"people"`
	Positions     int       `json:"positions"`
	Fingerprint   string    `json:"fingerprint"`
	FairnessScore float64   `json:"fairness_score"`
	StdDev        float64   `json:"std_dev"`
	Status        string    `gorm:"index;not null" json:"status"`
	ErrorKind     string    `json:"error_kind,omitempty"`
	Error         string    `json:"error,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// UsageDelta is what one request adds to a key's daily usage row
type UsageDelta struct {
	Positions    int
	People       int
	HoursPlanned int
}

// InitDB opens postgres when dsn is set and a sqlite file at dataPath
// otherwise, then migrates the schema
func InitDB(dsn, dataPath string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		if dataPath == "" {
			dataPath = "rota.db"
		}
		db, err = gorm.Open(sqlite.Open(dataPath), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}, &RunLog{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

// UpsertUsage adds one request to today's usage row for the key in a single
// query (supported by both Postgres and SQLite)
func UpsertUsage(db *gorm.DB, keyID uint, day string, d UsageDelta) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":   gorm.Expr("request_count + ?", 1),
			"total_positions": gorm.Expr("total_positions + ?", d.Positions),
			"total_people":    gorm.Expr("total_people + ?", d.People),
			"hours_planned":   gorm.Expr("hours_planned + ?", d.HoursPlanned),
		}),
	}).Create(&APIUsage{
		KeyID:          keyID,
		Date:           day,
		RequestCount:   1,
		TotalPositions: d.Positions,
		TotalPeople:    d.People,
		HoursPlanned:   d.HoursPlanned,
	}).Error
}

// UsageHistory returns the last 30 days of usage for a key, newest first
func UsageHistory(db *gorm.DB, keyID uint) ([]APIUsage, error) {
	var usage []APIUsage
	err := db.Where("key_id = ?", keyID).Order("date desc").Limit(30).Find(&usage).Error
	return usage, err
}

// RevokeKey marks a key revoked. It reports false when no live key has that id.
func RevokeKey(db *gorm.DB, id uint) (bool, error) {
	res := db.Model(&APIKey{}).Where("id = ? AND revoked_at IS NULL", id).Update("revoked_at", time.Now())
	return res.RowsAffected > 0, res.Error
}

// RecordRun stores a run log row
func RecordRun(db *gorm.DB, run *RunLog) error {
	return db.Create(run).Error
}

// RecentRuns returns up to limit runs, newest first
func RecentRuns(db *gorm.DB, limit int) ([]RunLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var runs []RunLog
	err := db.Order("created_at desc").Order("id desc").Limit(limit).Find(&runs).Error
	return runs, err
}
