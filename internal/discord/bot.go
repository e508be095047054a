package discord

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/internal/command"
	"github.com/chaezuha/Discord-MP3-Bot/internal/config"
	"github.com/chaezuha/Discord-MP3-Bot/pkg/cmd"
	"github.com/rs/zerolog/log"
)

// Bot is a Discord bot
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	cacheDir string

	// Commands holds every command the bot serves.
	Commands *cmd.Registry

	notifier *Notifier

	mu         sync.Mutex
	onShutdown []func()
}

// New creates the Discord session without connecting it.
func New(cfg *config.Config, cacheDir string) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	b := &Bot{
		dg:       dg,
		cfg:      cfg,
		cacheDir: cacheDir,
		Commands: cmd.NewRegistry(),
	}
	b.notifier = NewNotifier(func(channelID, text string) error {
		_, err := dg.ChannelMessageSend(channelID, text)
		return err
	})
	return b, nil
}

// Voice returns the voice provider for the playback engine.
func (b *Bot) Voice() *VoiceProvider { return &VoiceProvider{dg: b.dg} }

// Notifier returns the channel notifier for the playback engine.
func (b *Bot) Notifier() *Notifier { return b.notifier }

// OnShutdown registers fn to run after the context is cancelled, while the
// gateway connection is still open.
func (b *Bot) OnShutdown(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onShutdown = append(b.onShutdown, fn)
}

// Run connects to Discord and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	log.Info().Msg("[Bot] Shutdown signal received, cleaning up")

	b.mu.Lock()
	hooks := slices.Clone(b.onShutdown)
	b.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}

	b.notifier.Close()
	if err := b.dg.Close(); err != nil {
		return fmt.Errorf("failed to close Discord session: %w", err)
	}
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		b.leaveIfBlacklisted(s, g.ID)
	}

	if err := b.registerCommands(s, r.User.ID, b.cfg.DiscordGuildID); err != nil {
		log.Error().Err(err).Msg("[Bot] Failed to register slash commands")
	}

	log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("[Bot] Discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("[Bot] Guild available")
	b.leaveIfBlacklisted(s, g.ID)
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) {
	if !b.isGuildBlacklisted(guildID) {
		return
	}
	log.Info().Str("guild", guildID).Msg("[Bot] Leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("[Bot] Failed to leave guild")
	}
}

func (b *Bot) isGuildBlacklisted(guildID string) bool {
	return slices.Contains(b.cfg.DiscordGuildBlacklist, guildID)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatchSlash(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.dispatchAutocomplete(s, i)
	}
}

func (b *Bot) dispatchSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	c := b.Commands.Get(name)
	if c == nil {
		log.Warn().Str("command", name).Msg("[Bot] Unknown command")
		return
	}

	reply := command.InteractionResponder{Session: s, Event: i}
	inv := &cmd.Invocation{Data: &command.SlashInteractionContext{
		Context: context.Background(),
		Session: s,
		Event:   i,
		Reply:   reply,
	}}
	if err := c.Run(context.Background(), inv); err != nil {
		log.Error().Err(err).Str("command", name).Msg("[Bot] Error running slash command")
	}
}

func (b *Bot) dispatchAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	c := b.Commands.Get(name)
	if c == nil {
		return
	}
	ap, ok := cmd.Root(c).(command.AutocompleteProvider)
	if !ok {
		return
	}

	ctx := &command.AutocompleteContext{
		Session: s,
		Event:   i,
		Reply:   command.InteractionResponder{Session: s, Event: i},
	}
	if err := ap.Autocomplete(ctx); err != nil {
		log.Debug().Err(err).Str("command", name).Msg("[Bot] Autocomplete failed")
	}
}
