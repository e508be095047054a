// Package music implements the slash commands that search the local
// library and drive the guild players.
package music

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/internal/bot"
	"github.com/chaezuha/Discord-MP3-Bot/internal/command"
	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
	"github.com/chaezuha/Discord-MP3-Bot/internal/music/player"
	"github.com/chaezuha/Discord-MP3-Bot/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	playCandidates   = 5
	searchLimit      = 10
	maxChoices       = 25
	maxChoiceLen     = 100
	listLimit        = 50
	historyShownSize = 10
)

const (
	textNoMatches      = "No matching songs found."
	textAmbiguous      = "Search is ambiguous. Try a more specific title."
	textNotInVoice     = "You need to be in a voice channel to use this command."
	textCouldNotStart  = "Could not start playback."
	textQueueEmpty     = "The queue is currently empty."
	textNothingPlaying = "No song is currently playing."
	textNothingPaused  = "No song is currently paused."
	textNotConnected   = "The bot is not connected to a voice channel."
	textLibraryError   = "Could not read the music library."
)

// Player is the part of the playback engine the commands use.
type Player interface {
	SetNotificationTarget(guildID, channelID string)
	EnsureVoice(ctx context.Context, guildID, channelID string) error
	EnqueueOrStart(guildID string, track library.Track) (player.Outcome, error)
	Skip(guildID string) error
	Pause(guildID string) error
	Resume(guildID string) error
	Stop(guildID string) error
	Snapshot(guildID string) player.Snapshot
}

type History interface {
	PlaybackHistory(guildID string) ([]storage.PlaybackRecord, error)
}

// Music holds what the music commands share.
type Music struct {
	Player   Player
	Library  *library.Searcher
	Voice    bot.BotVoice
	History  History
	MediaExt string
	// Details reads tags for /nowplaying; nil disables them.
	Details func(library.Track) (*library.Details, error)
}

// Commands returns every music command.
func (m *Music) Commands() []command.DiscordCommand {
	return []command.DiscordCommand{
		&PlayCommand{m},
		&SearchCommand{m},
		&QueueCommand{m},
		&SkipCommand{m},
		&PauseCommand{m},
		&ResumeCommand{m},
		&StopCommand{m},
		&ListCommand{m},
		&NowPlayingCommand{m},
		&HistoryCommand{m},
	}
}

func slash(ctx any) (*command.SlashInteractionContext, bool) {
	c, ok := ctx.(*command.SlashInteractionContext)
	return c, ok && c.Event != nil && c.Reply != nil
}

func say(c *command.SlashInteractionContext, text string) error {
	return c.Reply.Respond(command.Reply{Content: text})
}

func whisper(c *command.SlashInteractionContext, text string) error {
	return c.Reply.Respond(command.Reply{Content: text, Ephemeral: true})
}

// errorText maps engine errors to what the user is told.
func errorText(err error) string {
	switch {
	case errors.Is(err, library.ErrNoMatches):
		return textNoMatches
	case errors.Is(err, player.ErrNotInChannel):
		return textNotInVoice
	case errors.Is(err, player.ErrNothingPlaying):
		return textNothingPlaying
	case errors.Is(err, player.ErrNothingPaused):
		return textNothingPaused
	case errors.Is(err, player.ErrNotConnected):
		return textNotConnected
	case errors.Is(err, player.ErrSessionStart), errors.Is(err, player.ErrNoVoiceConnection):
		return textCouldNotStart
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}

func formatMatches(results []library.ScoredTrack) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = fmt.Sprintf("%d. %s (%d%%)", i+1, r.Track.Title, r.Score)
	}
	return strings.Join(lines, "\n")
}

func ambiguousText(results []library.ScoredTrack) string {
	return textAmbiguous + "\nTop matches:\n" + formatMatches(results)
}

func queueText(snap player.Snapshot) string {
	var lines []string
	if snap.Current != nil {
		lines = append(lines, fmt.Sprintf("Now playing: **%s**", snap.Current.Title))
	}
	for i, t := range snap.Queue {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, t.Title))
	}
	if len(lines) == 0 {
		return textQueueEmpty
	}
	return strings.Join(lines, "\n")
}

func libraryText(tracks []library.Track) string {
	shown := tracks[:min(listLimit, len(tracks))]
	lines := make([]string, len(shown))
	for i, t := range shown {
		lines[i] = fmt.Sprintf("%d. %s", i+1, t.Title)
	}
	msg := "Library:\n" + strings.Join(lines, "\n")
	if rest := len(tracks) - len(shown); rest > 0 {
		msg += fmt.Sprintf("\n...and %d more.", rest)
	}
	return msg
}

func choices(results []library.ScoredTrack) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, min(maxChoices, len(results)))
	for _, r := range results[:min(maxChoices, len(results))] {
		name := truncate(r.Track.Title, maxChoiceLen)
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}
	return out
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func noFilesText(ext string) string {
	ext = strings.ToUpper(strings.TrimPrefix(ext, "."))
	if ext == "" {
		ext = "MP3"
	}
	return fmt.Sprintf("No %s files found.", ext)
}

func logFailure(c *command.SlashInteractionContext, name string, err error) {
	log.Warn().Err(err).Str("guild", c.Event.GuildID).Str("command", name).Msg("[Music] Command failed")
}
