package storage

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// CommandRecord is one slash command invocation.
type CommandRecord struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	GuildID     string    `gorm:"index:idx_command_guild" json:"guild_id"`
	GuildName   string    `json:"guild_name"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

func (s *Storage) AddCommand(rec CommandRecord) error {
	if s == nil || s.db == nil {
		return errNilStorage
	}
	if rec.Datetime.IsZero() {
		rec.Datetime = time.Now()
	}
	rec.ID = 0

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("creating command record: %w", err)
		}
		return prune(tx, &CommandRecord{}, rec.GuildID, commandHistoryLimit)
	})
}

// CommandsHistory returns the guild's recent commands, newest first.
func (s *Storage) CommandsHistory(guildID string) ([]CommandRecord, error) {
	if s == nil || s.db == nil {
		return nil, errNilStorage
	}
	var recs []CommandRecord
	err := s.db.Where("guild_id = ?", guildID).Order("id DESC").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("querying command history: %w", err)
	}
	return recs, nil
}
