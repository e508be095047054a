package library

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// Details holds the embedded tags of a track file, when it has any.
type Details struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Year   int    `json:"year,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Format string `json:"format,omitempty"`
}

// ReadDetails reads the tags stored in the track's file.
func ReadDetails(t Track) (*Details, error) {
	f, err := os.Open(t.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to open track: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	return &Details{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
		Year:   m.Year(),
		Genre:  m.Genre(),
		Format: string(m.Format()),
	}, nil
}
