// Package library lists the local media directory and ranks it against
// free-text queries.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExt is the media extension listed when none is configured.
const DefaultExt = ".mp3"

// Track is one playable file with the title derived from its name.
type Track struct {
	Location string `json:"location"`
	Title    string `json:"title"`
}

// Catalog lists tracks from a single directory. It keeps no state between
// calls; the directory is re-read every time.
type Catalog struct {
	Dir string
	Ext string
}

// NewCatalog returns a catalog over dir for files ending in ext.
func NewCatalog(dir, ext string) *Catalog {
	if ext == "" {
		ext = DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Catalog{Dir: dir, Ext: ext}
}

// List returns the tracks in the directory sorted by case-insensitive title.
// A missing directory is an empty library, not an error.
func (c *Catalog) List() ([]Track, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Track{}, nil
		}
		return nil, fmt.Errorf("failed to read music directory: %w", err)
	}

	tracks := make([]Track, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, c.Ext) {
			continue
		}
		if !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
			continue
		}
		tracks = append(tracks, Track{
			Location: filepath.Join(c.Dir, name),
			Title:    strings.TrimSuffix(name, ext),
		})
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		ti, tj := strings.ToLower(tracks[i].Title), strings.ToLower(tracks[j].Title)
		if ti != tj {
			return ti < tj
		}
		return tracks[i].Location < tracks[j].Location
	})
	return tracks, nil
}
