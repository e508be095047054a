package music

import (
	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/internal/bot"
	"github.com/chaezuha/Discord-MP3-Bot/internal/command"
	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
	"github.com/rs/zerolog/log"
)

type NowPlayingCommand struct{ *Music }

func (c *NowPlayingCommand) Name() string        { return "nowplaying" }
func (c *NowPlayingCommand) Description() string { return "Show details of the current song." }
func (c *NowPlayingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c.Name(), c.Description())
}

func (c *NowPlayingCommand) Run(ctx any) error {
	sc, ok := slash(ctx)
	if !ok {
		return nil
	}

	snap := c.Player.Snapshot(sc.Event.GuildID)
	if snap.Current == nil {
		return say(sc, textNothingPlaying)
	}

	var details *library.Details
	if c.Details != nil {
		d, err := c.Details(*snap.Current)
		if err != nil {
			log.Debug().Err(err).Str("track", snap.Current.Location).Msg("[Music] No tags for current track")
		}
		details = d
	}
	return sc.Reply.Respond(command.Reply{Embed: nowPlayingEmbed(*snap.Current, details, snap.Paused, len(snap.Queue))})
}

func nowPlayingEmbed(t library.Track, d *library.Details, paused bool, queued int) *discordgo.MessageEmbed {
	title := "▶️ Now Playing"
	if paused {
		title = "⏸ Paused"
	}
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: "🎶 " + t.Title,
		Color:       bot.EmbedColor,
	}

	if d != nil {
		for _, f := range []struct{ name, value string }{
			{"Artist", d.Artist},
			{"Album", d.Album},
			{"Year", yearText(d.Year)},
			{"Genre", d.Genre},
			{"Format", d.Format},
		} {
			if f.value != "" {
				embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.name, Value: f.value, Inline: true})
			}
		}
	}

	if queued > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: pluralize(queued, "song", "songs") + " in queue"}
	}
	return embed
}
