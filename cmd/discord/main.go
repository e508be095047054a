// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chaezuha/Discord-MP3-Bot/internal/command"
	"github.com/chaezuha/Discord-MP3-Bot/internal/command/music"
	"github.com/chaezuha/Discord-MP3-Bot/internal/config"
	"github.com/chaezuha/Discord-MP3-Bot/internal/discord"
	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
	"github.com/chaezuha/Discord-MP3-Bot/internal/logger"
	"github.com/chaezuha/Discord-MP3-Bot/internal/middleware"
	"github.com/chaezuha/Discord-MP3-Bot/internal/music/player"
	"github.com/chaezuha/Discord-MP3-Bot/internal/music/stream"
	"github.com/chaezuha/Discord-MP3-Bot/internal/status"
	"github.com/chaezuha/Discord-MP3-Bot/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const appName = "Discord MP3 Bot"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Setup(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	log.Info().Str("music", cfg.MusicPath).Str("ext", cfg.MediaExt).Msgf("Starting %s...", appName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.Close()

	searcher := library.NewSearcher(library.NewCatalog(cfg.MusicPath, cfg.MediaExt))

	bot, err := discord.New(cfg, filepath.Join(filepath.Dir(cfg.StoragePath), "commands"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord bot")
	}

	engine := player.New(bot.Voice(), stream.NewFactory(cfg.FFmpegPath), bot.Notifier(), player.WithRecorder(store))
	bot.OnShutdown(engine.Shutdown)

	m := &music.Music{
		Player:   engine,
		Library:  searcher,
		Voice:    bot,
		History:  store,
		MediaExt: cfg.MediaExt,
		Details:  library.ReadDetails,
	}
	for _, c := range m.Commands() {
		command.RegisterCommand(bot.Commands, c,
			middleware.WithCommandLogger(store),
			middleware.WithGuildOnly(),
		)
	}

	if cfg.StatusAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		go func() {
			if err := status.Serve(ctx, cfg.StatusAddr, status.NewRouter(engine, searcher)); err != nil {
				log.Error().Err(err).Msg("Status server stopped")
			}
		}()
	}

	if err := bot.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Discord bot error")
		return
	}
	log.Info().Msg("Discord bot exited cleanly")
}
