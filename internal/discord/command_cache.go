package discord

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const globalScope = "global"

// commandCache remembers the hashes of the last registered command set per
// scope, so restarts do not overwrite unchanged commands.
type commandCache struct {
	dir string
}

func (c commandCache) path(guildID string) string {
	if guildID == "" {
		guildID = globalScope
	}
	return filepath.Join(c.dir, guildID+".json")
}

func (c commandCache) load(guildID string) map[string]string {
	out := make(map[string]string)
	if c.dir == "" {
		return out
	}
	if data, err := os.ReadFile(c.path(guildID)); err == nil {
		_ = json.Unmarshal(data, &out)
	}
	return out
}

func (c commandCache) save(guildID string, hashes map[string]string) error {
	if c.dir == "" {
		return nil
	}
	path := c.path(guildID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
