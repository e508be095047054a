package command

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/pkg/cmd"
)

// Discord-specific contexts (what the runtime passes when executing).

type SlashInteractionContext struct {
	Context context.Context
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Reply   Responder
}

type AutocompleteContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Reply   Responder
}

// SlashProvider is implemented by commands that register a slash command.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// AutocompleteProvider is implemented by commands with autocompleted options.
type AutocompleteProvider interface {
	Autocomplete(*AutocompleteContext) error
}

// DiscordCommand is what individual Discord commands implement. Run gets
// one of the contexts above.
type DiscordCommand interface {
	Name() string
	Description() string
	Run(ctx any) error
}

// DiscordAdapter lets a DiscordCommand live in the cmd registry.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string        { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string { return a.Cmd.Description() }

func (a *DiscordAdapter) Run(_ context.Context, inv *cmd.Invocation) error {
	return a.Cmd.Run(inv.Data)
}

func (a *DiscordAdapter) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := a.Cmd.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// Autocomplete bypasses middleware; suggestions are not command runs.
func (a *DiscordAdapter) Autocomplete(ctx *AutocompleteContext) error {
	if ap, ok := a.Cmd.(AutocompleteProvider); ok {
		return ap.Autocomplete(ctx)
	}
	return nil
}

// RegisterCommand wraps discordCmd with mws and adds it to reg.
func RegisterCommand(reg *cmd.Registry, discordCmd DiscordCommand, mws ...cmd.Middleware) {
	reg.Register(cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...))
}

// Definitions collects the slash definitions of every command in reg.
func Definitions(reg *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range reg.GetAll() {
		if sp, ok := cmd.Root(c).(SlashProvider); ok {
			if def := sp.SlashDefinition(); def != nil {
				defs = append(defs, def)
			}
		}
	}
	return defs
}

// StringOption returns the named string option of a slash command.
func StringOption(e *discordgo.InteractionCreate, name string) (string, bool) {
	for _, opt := range e.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue(), true
		}
	}
	return "", false
}

// FocusedOption returns the option being autocompleted.
func FocusedOption(e *discordgo.InteractionCreate) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range e.ApplicationCommandData().Options {
		if opt.Focused {
			return opt
		}
	}
	return nil
}

// InvokingUser returns the member's user in guilds and the user in DMs.
func InvokingUser(e *discordgo.InteractionCreate) *discordgo.User {
	if e.Member != nil && e.Member.User != nil {
		return e.Member.User
	}
	if e.User != nil {
		return e.User
	}
	return &discordgo.User{ID: "unknown", Username: "Unknown"}
}
