package music

import (
	"github.com/bwmarrin/discordgo"
	"github.com/chaezuha/Discord-MP3-Bot/internal/command"
	"github.com/chaezuha/Discord-MP3-Bot/internal/library"
)

type ListCommand struct{ *Music }

func (c *ListCommand) Name() string        { return "list" }
func (c *ListCommand) Description() string { return "List songs in the local MP3 library." }

func (c *ListCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Optional filter for song names",
			},
		},
	}
}

func (c *ListCommand) Run(ctx any) error {
	sc, ok := slash(ctx)
	if !ok {
		return nil
	}

	tracks, err := c.tracks(sc)
	if err != nil {
		logFailure(sc, c.Name(), err)
		return whisper(sc, textLibraryError)
	}
	if len(tracks) == 0 {
		return say(sc, noFilesText(c.MediaExt))
	}
	return say(sc, libraryText(tracks))
}

func (c *ListCommand) tracks(sc *command.SlashInteractionContext) ([]library.Track, error) {
	query, _ := command.StringOption(sc.Event, "query")
	if query == "" {
		return c.Library.Catalog()
	}

	results, err := c.Library.Search(query, listLimit)
	if err != nil {
		return nil, err
	}
	tracks := make([]library.Track, len(results))
	for i, r := range results {
		tracks[i] = r.Track
	}
	return tracks, nil
}
