package middleware

import (
	"context"

	"github.com/chaezuha/Discord-MP3-Bot/internal/command"
	"github.com/chaezuha/Discord-MP3-Bot/pkg/cmd"
	"github.com/rs/zerolog/log"
)

const textGuildOnly = "This command must be used in a server."

// WithGuildOnly refuses slash commands sent outside a guild.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if v, ok := inv.Data.(*command.SlashInteractionContext); ok && v.Event.GuildID == "" {
				log.Debug().Str("command", c.Name()).Msg("[Middleware] Rejected command outside a guild")
				return v.Reply.Respond(command.Reply{Content: textGuildOnly, Ephemeral: true})
			}
			return c.Run(ctx, inv)
		})
	}
}
