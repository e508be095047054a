package command

import (
	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/internal/bot"
)

// Reply is a message for the user who ran a command.
type Reply struct {
	Content   string
	Embed     *discordgo.MessageEmbed
	Ephemeral bool
}

// Responder answers one interaction. Commands talk to it instead of the
// Discord session so they can be exercised without a gateway.
type Responder interface {
	Respond(Reply) error
	Defer() error
	Followup(Reply) error
	Choices([]*discordgo.ApplicationCommandOptionChoice) error
}

// InteractionResponder answers through the Discord REST API.
type InteractionResponder struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
}

func (r InteractionResponder) Respond(rep Reply) error {
	if rep.Embed != nil {
		return bot.RespondEmbed(r.Session, r.Event, rep.Embed, rep.Ephemeral)
	}
	return bot.Respond(r.Session, r.Event, rep.Content, rep.Ephemeral)
}

func (r InteractionResponder) Defer() error {
	return bot.RespondDeferred(r.Session, r.Event)
}

func (r InteractionResponder) Followup(rep Reply) error {
	if rep.Embed != nil {
		return bot.FollowupEmbed(r.Session, r.Event, rep.Embed, rep.Ephemeral)
	}
	return bot.Followup(r.Session, r.Event, rep.Content, rep.Ephemeral)
}

func (r InteractionResponder) Choices(choices []*discordgo.ApplicationCommandOptionChoice) error {
	return bot.RespondChoices(r.Session, r.Event, choices)
}
