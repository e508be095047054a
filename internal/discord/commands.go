package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/internal/command"
	"github.com/rs/zerolog/log"
)

// commandOverwriter is the part of the Discord session used to publish
// slash commands.
type commandOverwriter interface {
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// registerCommands publishes the registry's slash commands for guildID, or
// globally when guildID is empty. Nothing is sent when the set is unchanged
// since the last successful registration.
func (b *Bot) registerCommands(s commandOverwriter, appID, guildID string) error {
	return syncCommands(s, commandCache{dir: b.cacheDir}, appID, guildID, command.Definitions(b.Commands))
}

func syncCommands(s commandOverwriter, cache commandCache, appID, guildID string, defs []*discordgo.ApplicationCommand) error {
	scope := guildID
	if scope == "" {
		scope = globalScope
	}

	hashes := hashSet(defs)
	if sameHashes(hashes, cache.load(guildID)) {
		log.Info().Str("scope", scope).Int("commands", len(defs)).Msg("[Bot] Slash commands unchanged")
		return nil
	}

	for _, d := range defs {
		if d.Type == 0 {
			d.Type = discordgo.ChatApplicationCommand
		}
	}
	if defs == nil {
		defs = []*discordgo.ApplicationCommand{}
	}

	if _, err := s.ApplicationCommandBulkOverwrite(appID, guildID, defs); err != nil {
		return fmt.Errorf("bulk overwrite of %d command(s) for %s: %w", len(defs), scope, err)
	}
	log.Info().Str("scope", scope).Int("commands", len(defs)).Msg("[Bot] Slash commands registered")

	if err := cache.save(guildID, hashes); err != nil {
		log.Warn().Err(err).Str("scope", scope).Msg("[Bot] Failed to save command cache")
	}
	return nil
}
