package library

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLibrary(t *testing.T, names ...string) *Searcher {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
	return NewSearcher(NewCatalog(dir, ".mp3"))
}

func titles(results []ScoredTrack) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Track.Title
	}
	return out
}

const alphabet = "abcXYZ019 !'-_.,éß\t"

func randomString(r *rand.Rand, n int) string {
	runes := []rune(alphabet)
	b := make([]rune, n)
	for i := range b {
		b[i] = runes[r.Intn(len(runes))]
	}
	return string(b)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Rock N'  Roll!!", "rock n roll"},
		{"", ""},
		{"   ", ""},
		{"___", ""},
		{"  Hello   World  ", "hello world"},
		{"AC/DC - Back In Black (Live)", "ac dc back in black live"},
		{"Café del Mar", "caf del mar"},
		{"track01", "track01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for range 500 {
		s := randomString(r, r.Intn(30))
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		title string
		query string
		want  int
	}{
		{"exact after normalization", "Blue Moon", "blue   moon!", 100},
		{"strict prefix", "Blue Moon", "Blue", 95},
		{"substring", "Blue Moon", "moon", 88},
		{"token subset bonus", "Blue Moon", "moon blue", 85},
		{"subset with gap", "Paint It Black", "paint black", 85},
		{"similarity only", "Yesterday", "yesterdy", 70},
		{"unrelated", "Blue Moon", "zzz", 0},
		{"weak similarity", "Yesterday", "blue", 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(Track{Title: tt.title}, tt.query))
		})
	}
}

func TestScoreIdenticalAlwaysHundred(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for range 200 {
		s := randomString(r, 1+r.Intn(20))
		assert.Equal(t, 100, Score(Track{Title: s}, s), "title %q", s)
	}
}

func TestScoreRange(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for range 2000 {
		title := randomString(r, r.Intn(40))
		query := randomString(r, r.Intn(40))
		got := Score(Track{Title: title}, query)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
	}
}

func TestCatalogList(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.mp3", "A.mp3", "c.MP3", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Folder.mp3"), 0o755))

	tracks, err := NewCatalog(dir, "mp3").List()
	require.NoError(t, err)

	require.Len(t, tracks, 3)
	assert.Equal(t, Track{Location: filepath.Join(dir, "A.mp3"), Title: "A"}, tracks[0])
	assert.Equal(t, "b", tracks[1].Title)
	assert.Equal(t, "c", tracks[2].Title)
}

func TestCatalogMissingDirectory(t *testing.T) {
	tracks, err := NewCatalog(filepath.Join(t.TempDir(), "missing"), "").List()
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestCatalogNotCached(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(dir, ".mp3")

	tracks, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, tracks)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "New.mp3"), []byte("x"), 0o644))
	tracks, err = c.List()
	require.NoError(t, err)
	assert.Len(t, tracks, 1)
}

func TestSearchBlueScenario(t *testing.T) {
	s := newTestLibrary(t, "Blue Moon.mp3", "Blue Suede Shoes.mp3", "Yesterday.mp3")

	results, err := s.Search("blue", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"Blue Moon", "Blue Suede Shoes"}, titles(results))
	assert.Equal(t, 95, results[0].Score)
	assert.Equal(t, 95, results[1].Score)
	assert.False(t, Ambiguous(results), "top score of 95 is never ambiguous")

	best, _, err := s.Best("blue", 5)
	require.NoError(t, err)
	assert.Equal(t, "Blue Moon", best.Title)
}

func TestSearchBrowse(t *testing.T) {
	s := newTestLibrary(t, "Blue Moon.mp3", "Blue Suede Shoes.mp3", "Yesterday.mp3")
	catalog, err := s.Catalog()
	require.NoError(t, err)

	for _, q := range []string{"", "   ", "!!!"} {
		for _, limit := range []int{1, 2, 3, 10} {
			results, err := s.Search(q, limit)
			require.NoError(t, err)
			require.Len(t, results, min(limit, len(catalog)))
			for i, r := range results {
				assert.Equal(t, catalog[i], r.Track)
				assert.Zero(t, r.Score)
			}
		}
	}
}

func TestSearchEmptyCatalog(t *testing.T) {
	s := newTestLibrary(t)
	results, err := s.Search("anything", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, _, err = s.Best("anything", 5)
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestSearchTieBreakAndLimit(t *testing.T) {
	s := newTestLibrary(t, "beta song.mp3", "Alpha Song.mp3", "Gamma Song.mp3", "Song.mp3")

	results, err := s.Search("song", 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"Song", "Alpha Song", "beta song"}, titles(results))
	assert.Equal(t, []int{100, 88, 88}, []int{results[0].Score, results[1].Score, results[2].Score})
}

func TestSearchOrderingProperty(t *testing.T) {
	s := newTestLibrary(t,
		"Blue Moon.mp3", "Blue Suede Shoes.mp3", "Yesterday.mp3", "Rollin.mp3",
		"Rolling.mp3", "Paint It Black.mp3", "Back In Black.mp3", "Moonlight Sonata.mp3",
	)
	r := rand.New(rand.NewSource(4))
	queries := []string{"blue", "moon", "black", "roll", "son", "yesterdy", "b"}
	for range 50 {
		queries = append(queries, randomString(r, 1+r.Intn(8)))
	}

	for _, q := range queries {
		results, err := s.Search(q, 10)
		require.NoError(t, err)
		if Normalize(q) == "" {
			continue
		}
		for i, res := range results {
			assert.GreaterOrEqual(t, res.Score, MinScore, "query %q", q)
			if i == 0 {
				continue
			}
			prev := results[i-1]
			assert.True(t,
				prev.Score > res.Score || (prev.Score == res.Score && Normalize(prev.Track.Title) <= Normalize(res.Track.Title)),
				"query %q: %v before %v", q, prev, res)
		}
	}
}

func TestAmbiguity(t *testing.T) {
	t.Run("prefix matches score 95 and are not ambiguous", func(t *testing.T) {
		s := newTestLibrary(t, "Rollin.mp3", "Rolling.mp3")
		results, err := s.Search("Roll", 5)
		require.NoError(t, err)
		require.Equal(t, []string{"Rollin", "Rolling"}, titles(results))
		assert.Equal(t, 95, results[0].Score)
		assert.False(t, Ambiguous(results))
	})

	t.Run("close scores below 90 are ambiguous", func(t *testing.T) {
		s := newTestLibrary(t, "Paint It Black.mp3", "Paint In Black.mp3")
		results, err := s.Search("paint black", 5)
		require.NoError(t, err)
		require.Equal(t, []string{"Paint In Black", "Paint It Black"}, titles(results))
		assert.True(t, Ambiguous(results))

		_, suggestions, err := s.Best("paint black", 5)
		assert.ErrorIs(t, err, ErrAmbiguous)
		assert.Len(t, suggestions, 2)
	})

	t.Run("exact match against weak runner-up", func(t *testing.T) {
		results := []ScoredTrack{{Score: 100}, {Score: 60}}
		assert.False(t, Ambiguous(results))
	})

	t.Run("single result", func(t *testing.T) {
		assert.False(t, Ambiguous([]ScoredTrack{{Score: 40}}))
		assert.False(t, Ambiguous(nil))
	})

	t.Run("gap of ten is decisive", func(t *testing.T) {
		assert.False(t, Ambiguous([]ScoredTrack{{Score: 80}, {Score: 70}}))
		assert.True(t, Ambiguous([]ScoredTrack{{Score: 80}, {Score: 71}}))
		assert.False(t, Ambiguous([]ScoredTrack{{Score: 90}, {Score: 89}}))
	})
}

func TestReadDetailsMissingFile(t *testing.T) {
	_, err := ReadDetails(Track{Location: filepath.Join(t.TempDir(), "nope.mp3")})
	assert.Error(t, err)
}
