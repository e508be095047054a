package discord

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// hashCommand returns a deterministic hash of the fields Discord stores
// for a slash command. IDs and versions are left out.
func hashCommand(c *discordgo.ApplicationCommand) string {
	typ := c.Type
	if typ == 0 {
		typ = discordgo.ChatApplicationCommand
	}
	obj := map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"type":        typ,
	}
	if c.DMPermission != nil {
		obj["dm"] = *c.DMPermission
	}
	if len(c.Options) > 0 {
		obj["options"] = normalizeOptions(c.Options)
	}

	data, _ := json.Marshal(obj)
	return fmt.Sprintf("%x", sha1.Sum(data))
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, o := range opts {
		entry := map[string]any{
			"name":         o.Name,
			"description":  o.Description,
			"type":         o.Type,
			"required":     o.Required,
			"autocomplete": o.Autocomplete,
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]any, len(o.Choices))
			for j, ch := range o.Choices {
				choices[j] = map[string]any{"name": ch.Name, "value": ch.Value}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out
}

// hashSet hashes every definition by name.
func hashSet(defs []*discordgo.ApplicationCommand) map[string]string {
	hashes := make(map[string]string, len(defs))
	for _, d := range defs {
		hashes[d.Name] = hashCommand(d)
	}
	return hashes
}

// sameHashes reports whether two hash sets describe the same commands.
func sameHashes(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for name, h := range a {
		if b[name] != h {
			return false
		}
	}
	return true
}
