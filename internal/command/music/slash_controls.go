package music

import (
	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/internal/command"
	"github.com/chaezuha/Discord-MP3-Bot/internal/music/player"
)

// control runs a player action and answers with done on success. The
// engine's precondition errors are answered publicly, as plain status.
func control(sc *command.SlashInteractionContext, name string, action func(guildID string) error, done string) error {
	err := action(sc.Event.GuildID)
	switch {
	case err == nil:
		return say(sc, done)
	case player.KindOf(err) == player.KindPrecondition:
		return say(sc, errorText(err))
	default:
		logFailure(sc, name, err)
		return whisper(sc, errorText(err))
	}
}

func simpleDefinition(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: name, Description: description}
}

type SkipCommand struct{ *Music }

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip the current song." }
func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c.Name(), c.Description())
}

func (c *SkipCommand) Run(ctx any) error {
	sc, ok := slash(ctx)
	if !ok {
		return nil
	}
	return control(sc, c.Name(), c.Player.Skip, "Skipped current song.")
}

type PauseCommand struct{ *Music }

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause the current song." }
func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c.Name(), c.Description())
}

func (c *PauseCommand) Run(ctx any) error {
	sc, ok := slash(ctx)
	if !ok {
		return nil
	}
	return control(sc, c.Name(), c.Player.Pause, "Paused the current song.")
}

type ResumeCommand struct{ *Music }

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return "Resume the paused song." }
func (c *ResumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c.Name(), c.Description())
}

func (c *ResumeCommand) Run(ctx any) error {
	sc, ok := slash(ctx)
	if !ok {
		return nil
	}
	return control(sc, c.Name(), c.Player.Resume, "Resumed the current song.")
}

type StopCommand struct{ *Music }

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop playback, clear queue, and disconnect." }
func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return simpleDefinition(c.Name(), c.Description())
}

func (c *StopCommand) Run(ctx any) error {
	sc, ok := slash(ctx)
	if !ok {
		return nil
	}
	return control(sc, c.Name(), c.Player.Stop, "Stopped playback and left the voice channel.")
}

