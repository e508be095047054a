package music

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/internal/bot"
	"github.com/chaezuha/Discord-MP3-Bot/internal/command"
	"github.com/chaezuha/Discord-MP3-Bot/internal/storage"
)

type HistoryCommand struct{ *Music }

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Description() string { return "Show recently played songs." }
func (c *HistoryCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c.Name(), c.Description())
}

func (c *HistoryCommand) Run(ctx any) error {
	sc, ok := slash(ctx)
	if !ok {
		return nil
	}
	if c.History == nil {
		return whisper(sc, "Playback history is not available.")
	}

	recs, err := c.History.PlaybackHistory(sc.Event.GuildID)
	if err != nil {
		logFailure(sc, c.Name(), err)
		return whisper(sc, "Could not read playback history.")
	}
	if len(recs) == 0 {
		return say(sc, "No songs have been played yet.")
	}
	return sc.Reply.Respond(command.Reply{Embed: historyEmbed(recs)})
}

func historyEmbed(recs []storage.PlaybackRecord) *discordgo.MessageEmbed {
	shown := recs[:min(historyShownSize, len(recs))]
	lines := make([]string, len(shown))
	for i, r := range shown {
		lines[i] = fmt.Sprintf("%d. %s · <t:%d:R>", i+1, r.Title, r.StartedAt.Unix())
	}
	return &discordgo.MessageEmbed{
		Title:       "🕘 Recently Played",
		Description: strings.Join(lines, "\n"),
		Color:       bot.EmbedColor,
	}
}

func yearText(y int) string {
	if y <= 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
