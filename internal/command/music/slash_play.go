package music

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/internal/command"
	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
	"github.com/chaezuha/Discord-MP3-Bot/internal/music/player"
)

type PlayCommand struct{ *Music }

func (c *PlayCommand) Name() string { return "play" }
func (c *PlayCommand) Description() string {
	return "Play the best matching MP3 from your local library."
}

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "query",
				Description:  "Song title, partial title, or keywords",
				Required:     true,
				Autocomplete: true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx any) error {
	sc, ok := slash(ctx)
	if !ok {
		return nil
	}
	e := sc.Event
	query, _ := command.StringOption(e, "query")

	c.Player.SetNotificationTarget(e.GuildID, e.ChannelID)

	track, results, err := c.Library.Best(query, playCandidates)
	switch {
	case errors.Is(err, library.ErrAmbiguous):
		return whisper(sc, ambiguousText(results))
	case errors.Is(err, library.ErrNoMatches):
		return whisper(sc, textNoMatches)
	case err != nil:
		logFailure(sc, c.Name(), err)
		return whisper(sc, textLibraryError)
	}

	user := command.InvokingUser(e)
	vs, err := c.Voice.FindUserVoiceState(e.GuildID, user.ID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return whisper(sc, textNotInVoice)
	}

	// Joining voice can take longer than the interaction deadline.
	if err := sc.Reply.Defer(); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	runCtx := sc.Context
	if runCtx == nil {
		runCtx = context.Background()
	}
	if err := c.Player.EnsureVoice(runCtx, e.GuildID, vs.ChannelID); err != nil {
		logFailure(sc, c.Name(), err)
		if errors.Is(err, player.ErrNotInChannel) {
			return sc.Reply.Followup(command.Reply{Content: textNotInVoice, Ephemeral: true})
		}
		return sc.Reply.Followup(command.Reply{Content: fmt.Sprintf("Could not join your voice channel: %v", err), Ephemeral: true})
	}

	outcome, err := c.Player.EnqueueOrStart(e.GuildID, track)
	if err != nil {
		logFailure(sc, c.Name(), err)
		return sc.Reply.Followup(command.Reply{Content: textCouldNotStart, Ephemeral: true})
	}

	text := fmt.Sprintf("Added **%s** to the queue.", track.Title)
	if outcome == player.OutcomeStarted {
		text = fmt.Sprintf("Now playing: **%s**", track.Title)
	}
	return sc.Reply.Followup(command.Reply{Content: text})
}

// Autocomplete suggests library titles for the query being typed.
func (c *PlayCommand) Autocomplete(ctx *command.AutocompleteContext) error {
	var current string
	if opt := command.FocusedOption(ctx.Event); opt != nil && opt.Type == discordgo.ApplicationCommandOptionString {
		current = opt.StringValue()
	}

	results, err := c.Library.Search(current, maxChoices)
	if err != nil {
		return ctx.Reply.Choices(nil)
	}
	return ctx.Reply.Choices(choices(results))
}

