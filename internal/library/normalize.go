package library

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize returns the canonical comparison form of text: lower-cased,
// every run of non [a-z0-9] characters collapsed to one space, trimmed.
func Normalize(text string) string {
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

// tokenSet splits a normalized string into its distinct words.
func tokenSet(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
