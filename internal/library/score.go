package library

import (
	"math"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	scoreExact     = 100
	scorePrefix    = 95
	scoreSubstring = 88

	similarityWeight = 75
	overlapWeight    = 70
	subsetBonus      = 15
	subsetCap        = 99
)

// Score rates how well track matches query on a 0-100 scale. query is
// normalized again, so raw input is accepted.
func Score(track Track, query string) int {
	q := Normalize(query)
	title := Normalize(track.Title)

	switch {
	case q == title:
		return scoreExact
	case strings.HasPrefix(title, q):
		return scorePrefix
	case strings.Contains(title, q):
		return scoreSubstring
	}

	qTokens := tokenSet(q)
	tTokens := tokenSet(title)

	similarity := difflib.NewMatcher(strings.Split(q, ""), strings.Split(title, "")).Ratio()

	var overlap float64
	common := 0
	for tok := range qTokens {
		if _, ok := tTokens[tok]; ok {
			common++
		}
	}
	if len(qTokens) > 0 {
		overlap = float64(common) / float64(len(qTokens))
	}

	score := int(math.Max(similarity*similarityWeight, overlap*overlapWeight))
	if len(qTokens) > 0 && common == len(qTokens) {
		score = min(subsetCap, score+subsetBonus)
	}
	return score
}
