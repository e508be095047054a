// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects level, format and an optional rotating log file.
type Options struct {
	Level  string
	Format string // "console" or "json"
	File   string
}

// Setup builds the logger from opts, installs it as the global zerolog
// logger and routes discordgo's own logging into it.
func Setup(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stderr
	if !strings.EqualFold(opts.Format, "json") {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	}

	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, rotating)
	}

	l := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = l

	discordgo.Logger = discordLogger(l.With().Str("component", "discordgo").Logger())

	return l
}

// discordLogger adapts discordgo's printf-style logging hook.
func discordLogger(l zerolog.Logger) func(msgL, caller int, format string, a ...interface{}) {
	return func(msgL, caller int, format string, a ...interface{}) {
		var ev *zerolog.Event
		switch msgL {
		case discordgo.LogError:
			ev = l.Error()
		case discordgo.LogWarning:
			ev = l.Warn()
		case discordgo.LogInformational:
			ev = l.Info()
		default:
			ev = l.Debug()
		}
		ev.Msgf(format, a...)
	}
}
