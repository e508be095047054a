package music

import "github.com/bwmarrin/discordgo"

type QueueCommand struct{ *Music }

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show the current and upcoming songs." }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *QueueCommand) Run(ctx any) error {
	sc, ok := slash(ctx)
	if !ok {
		return nil
	}
	return say(sc, queueText(c.Player.Snapshot(sc.Event.GuildID)))
}
