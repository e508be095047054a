package storage

import (
	"fmt"
	"time"

	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PlaybackRecord is one track that started playing.
type PlaybackRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	GuildID   string    `gorm:"index:idx_playback_guild" json:"guild_id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	StartedAt time.Time `json:"started_at"`
}

func (s *Storage) AddPlayback(guildID string, t library.Track, at time.Time) error {
	if s == nil || s.db == nil {
		return errNilStorage
	}
	rec := PlaybackRecord{GuildID: guildID, Title: t.Title, Location: t.Location, StartedAt: at}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("creating playback record: %w", err)
		}
		return prune(tx, &PlaybackRecord{}, guildID, tracksHistoryLimit)
	})
}

// TrackStarted records playback history for the player.
func (s *Storage) TrackStarted(guildID string, t library.Track) {
	if err := s.AddPlayback(guildID, t, time.Now()); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("[Storage] Failed to record playback")
	}
}

// PlaybackHistory returns the guild's recently started tracks, newest first.
func (s *Storage) PlaybackHistory(guildID string) ([]PlaybackRecord, error) {
	if s == nil || s.db == nil {
		return nil, errNilStorage
	}
	var recs []PlaybackRecord
	err := s.db.Where("guild_id = ?", guildID).Order("id DESC").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("querying playback history: %w", err)
	}
	return recs, nil
}
