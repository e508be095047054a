package music

import (
	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/internal/command"
)

type SearchCommand struct{ *Music }

func (c *SearchCommand) Name() string { return "search" }
func (c *SearchCommand) Description() string {
	return "Search your local MP3 library with fuzzy ranking."
}

func (c *SearchCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Song title, partial title, or keywords",
				Required:    true,
			},
		},
	}
}

func (c *SearchCommand) Run(ctx any) error {
	sc, ok := slash(ctx)
	if !ok {
		return nil
	}
	query, _ := command.StringOption(sc.Event, "query")

	results, err := c.Library.Search(query, searchLimit)
	if err != nil {
		logFailure(sc, c.Name(), err)
		return whisper(sc, textLibraryError)
	}
	if len(results) == 0 {
		return whisper(sc, textNoMatches)
	}
	return say(sc, "Top matches:\n"+formatMatches(results))
}
