// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DiscordToken          string   `env:"DISCORD_TOKEN,required,notEmpty"`
	DiscordGuildID        string   `env:"DISCORD_GUILD_ID"`
	DiscordGuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`

	MusicPath  string `env:"DISCORD_MUSIC_PATH" envDefault:"music"`
	MediaExt   string `env:"DISCORD_MEDIA_EXT" envDefault:".mp3"`
	FFmpegPath string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`

	StoragePath string `env:"STORAGE_PATH" envDefault:"data/bot.sqlite3"`
	StatusAddr  string `env:"STATUS_ADDR"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	LogFile   string `env:"LOG_FILE"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
		log.Debug().Msg("No .env file found, falling back to system environment variables")
	}
	return FromEnv()
}

// FromEnv parses the configuration from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.MusicPath = expandHome(cfg.MusicPath)
	if cfg.DiscordGuildID == "0" {
		cfg.DiscordGuildID = ""
	}

	blacklist := cfg.DiscordGuildBlacklist[:0]
	for _, id := range cfg.DiscordGuildBlacklist {
		if id = strings.TrimSpace(id); id != "" {
			blacklist = append(blacklist, id)
		}
	}
	cfg.DiscordGuildBlacklist = blacklist

	return &cfg, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
