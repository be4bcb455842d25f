// File: internal/platform/database/gorm.go
package database

import (
	"fmt"
	"log" // Standard log for the gorm logger writer
	"os"
	"path/filepath"
	"time"

	"authportal/internal/config"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewGORM opens the local sqlite database that backs the persisted session.
func NewGORM(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	if dir := filepath.Dir(cfg.SessionDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create session database directory %s: %w", dir, err)
		}
	}

	var gormLogLevel gormlogger.LogLevel
	switch cfg.LogLevel {
	case "silent", "fatal", "panic":
		gormLogLevel = gormlogger.Silent
	case "error":
		gormLogLevel = gormlogger.Error
	case "debug": // Only debug logs every statement, the session table is tiny
		gormLogLevel = gormlogger.Info
	default:
		gormLogLevel = gormlogger.Warn
	}

	newLogger := gormlogger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel,
			IgnoreRecordNotFoundError: true, // A missing session is the normal first start
			Colorful:                  cfg.AppMode != "release",
		},
	)

	db, err := gorm.Open(sqlite.Open(cfg.SessionDBPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// sqlite serialises writers; one connection avoids SQLITE_BUSY between the host and the cron job.
	sqlDB.SetMaxOpenConns(1)

	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping session database: %w", err)
	}

	logger.Debug("Session database opened", zap.String("path", cfg.SessionDBPath))
	return db, nil
}

// CloseGORMDB closes the GORM database connection.
// This is useful for the cleanup function in main.
func CloseGORMDB(db *gorm.DB, logger *zap.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Error getting underlying SQL DB for closing", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing session database", zap.Error(err))
		return
	}
	logger.Debug("Session database closed")
}
