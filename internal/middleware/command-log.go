// Package middleware holds cross-cutting wrappers for slash commands.
package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/internal/command"
	"github.com/chaezuha/Discord-MP3-Bot/internal/storage"
	"github.com/chaezuha/Discord-MP3-Bot/pkg/cmd"
	"github.com/rs/zerolog/log"
)

// CommandStore persists command invocations.
type CommandStore interface {
	AddCommand(storage.CommandRecord) error
}

// WithCommandLogger logs every slash command run and records it in store.
// store may be nil.
func WithCommandLogger(store CommandStore) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			v, ok := inv.Data.(*command.SlashInteractionContext)
			if !ok {
				return err
			}

			e := v.Event
			user := command.InvokingUser(e)
			param := optionsText(e)

			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			ev.Str("guild", e.GuildID).
				Str("channel", e.ChannelID).
				Str("user", user.Username).
				Str("command", c.Name()).
				Str("param", param).
				Dur("took", time.Since(start)).
				Msg("[Command] Executed")

			if store != nil && e.GuildID != "" {
				rec := storage.CommandRecord{
					GuildID:   e.GuildID,
					ChannelID: e.ChannelID,
					UserID:    user.ID,
					Username:  user.Username,
					Command:   c.Name(),
					Param:     param,
					Datetime:  start,
				}
				if v.Session != nil && v.Session.State != nil {
					if g, gerr := v.Session.State.Guild(e.GuildID); gerr == nil {
						rec.GuildName = g.Name
					}
					if ch, cerr := v.Session.State.Channel(e.ChannelID); cerr == nil {
						rec.ChannelName = ch.Name
					}
				}
				if serr := store.AddCommand(rec); serr != nil {
					log.Warn().Err(serr).Str("command", c.Name()).Msg("[Command] Failed to record command")
				}
			}
			return err
		})
	}
}

// optionsText renders the string options of a slash command as name=value.
func optionsText(e *discordgo.InteractionCreate) string {
	if e.Type != discordgo.InteractionApplicationCommand {
		return ""
	}
	var parts []string
	for _, opt := range e.ApplicationCommandData().Options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			parts = append(parts, opt.Name+"="+opt.StringValue())
		}
	}
	return strings.Join(parts, " ")
}
