package library

import (
	"errors"
	"sort"
	"strings"
)

const (
	// MinScore is the lowest score a ranked result may have.
	MinScore = 35

	ambiguityCeiling = 90
	ambiguityGap     = 10
)

var (
	ErrNoMatches = errors.New("no matching songs found")
	ErrAmbiguous = errors.New("search is ambiguous")
)

// ScoredTrack pairs a track with its match score.
type ScoredTrack struct {
	Track Track `json:"track"`
	Score int   `json:"score"`
}

// Lister is the source of tracks for a Searcher.
type Lister interface {
	List() ([]Track, error)
}

// Searcher ranks the current catalog against queries.
type Searcher struct {
	catalog Lister
}

func NewSearcher(catalog Lister) *Searcher {
	return &Searcher{catalog: catalog}
}

// Catalog lists the underlying tracks.
func (s *Searcher) Catalog() ([]Track, error) {
	return s.catalog.List()
}

// Search returns up to limit tracks ordered by descending score, ties by
// title. An empty normalized query browses the catalog in listing order.
func (s *Searcher) Search(query string, limit int) ([]ScoredTrack, error) {
	tracks, err := s.catalog.List()
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 || limit <= 0 {
		return []ScoredTrack{}, nil
	}

	q := Normalize(query)
	if q == "" {
		n := min(limit, len(tracks))
		out := make([]ScoredTrack, n)
		for i := range n {
			out[i] = ScoredTrack{Track: tracks[i]}
		}
		return out, nil
	}

	ranked := make([]ScoredTrack, 0, len(tracks))
	for _, t := range tracks {
		if score := Score(t, q); score >= MinScore {
			ranked = append(ranked, ScoredTrack{Track: t, Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return strings.ToLower(ranked[i].Track.Title) < strings.ToLower(ranked[j].Track.Title)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Ambiguous reports whether the top result is not clearly ahead of the
// runner-up: at least two results, top below 90 and a gap under 10.
func Ambiguous(results []ScoredTrack) bool {
	if len(results) < 2 {
		return false
	}
	top, second := results[0].Score, results[1].Score
	return top < ambiguityCeiling && top-second < ambiguityGap
}

// Best resolves a query to a single track, refusing empty and ambiguous
// result sets. The results are returned in both cases so callers can list
// suggestions.
func (s *Searcher) Best(query string, limit int) (Track, []ScoredTrack, error) {
	results, err := s.Search(query, limit)
	if err != nil {
		return Track{}, nil, err
	}
	if len(results) == 0 {
		return Track{}, results, ErrNoMatches
	}
	if Ambiguous(results) {
		return Track{}, results, ErrAmbiguous
	}
	return results[0].Track, results, nil
}
