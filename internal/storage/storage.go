// Package storage keeps command and playback history in sqlite.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	commandHistoryLimit int = 20
	tracksHistoryLimit  int = 12
)

var errNilStorage = errors.New("storage is nil")

type Storage struct {
	db *gorm.DB
}

// New opens (creating if needed) the sqlite database at path.
func New(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating storage dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	// sqlite serializes writers anyway.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&CommandRecord{}, &PlaybackRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// prune keeps only the newest limit rows of model for guildID.
func prune(tx *gorm.DB, model any, guildID string, limit int) error {
	keep := tx.Model(model).Select("id").Where("guild_id = ?", guildID).Order("id DESC").Limit(limit)
	return tx.Where("guild_id = ? AND id NOT IN (?)", guildID, keep).Delete(model).Error
}
