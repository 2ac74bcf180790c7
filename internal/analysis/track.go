// Package analysis partitions a playlist's tracks into thematically coherent
// clusters using only track and artist metadata. The upstream audio-feature
// endpoint is unavailable, so perceptual characteristics are approximated
// from indirect signals: popularity, genre tags, release dates, explicit
// flags, durations and the playlist's own name and description.
package analysis

import (
	"sort"
	"time"
)

// PlaylistItem is one entry of a playlist as delivered by the track source:
// the track itself plus the timestamp it was added.
type PlaylistItem struct {
	Track   *RawTrack
	AddedAt time.Time
}

// RawTrack carries the track metadata the collaborator supplies. Fields may
// be empty or zero; validation happens in BuildFeatures.
type RawTrack struct {
	ID          string
	Name        string
	Artists     []RawArtistRef
	AlbumName   string
	ReleaseDate string // ISO prefix, "YYYY..." parseable
	TrackNumber int
	TotalTracks int
	ImageURL    string
	Popularity  int // 0-100
	DurationMs  int
	Explicit    bool
}

// RawArtistRef is a name/id pair on a raw track.
type RawArtistRef struct {
	ID   string
	Name string
}

// Track is the cleaned, immutable record the pipeline works with. Built once
// by BuildFeatures and consumed read-only by every downstream component.
type Track struct {
	ID            string
	Name          string
	Artists       []string
	PrimaryArtist string
	ArtistID      string
	Album         string
	Popularity    int
	AddedAt       time.Time // zero value when unknown
	ReleaseDate   string
	ImageURL      string
	Explicit      bool
	DurationMs    int
}

// ReleaseYear parses the leading four characters of the release date.
// ok is false when no year can be parsed.
func (t Track) ReleaseYear() (int, bool) {
	return parseYear(t.ReleaseDate)
}

func parseYear(releaseDate string) (int, bool) {
	if len(releaseDate) < 4 {
		return 0, false
	}
	year := 0
	for _, r := range releaseDate[:4] {
		if r < '0' || r > '9' {
			return 0, false
		}
		year = year*10 + int(r-'0')
	}
	if year == 0 {
		return 0, false
	}
	return year, true
}

// ArtistInfo is the per-artist side table entry supplied by the artist
// lookup source.
type ArtistInfo struct {
	ID         string
	Name       string
	Genres     []string
	Popularity int // 0-100
	Followers  int
}

// ArtistLookup maps artist ids to their metadata. Absent entries degrade to
// neutral defaults rather than failing.
type ArtistLookup map[string]ArtistInfo

// Popularity returns the artist's popularity on a 0-1 scale, defaulting to
// 0.5 when the artist is unknown.
func (l ArtistLookup) Popularity(artistID string) float64 {
	if a, ok := l[artistID]; ok {
		return float64(a.Popularity) / 100.0
	}
	return 0.5
}

// Genres returns the artist's genre tags, or nil when the artist is unknown.
func (l ArtistLookup) Genres(artistID string) []string {
	if a, ok := l[artistID]; ok {
		return a.Genres
	}
	return nil
}

// Followers returns the artist's follower count, zero when unknown.
func (l ArtistLookup) Followers(artistID string) int {
	if a, ok := l[artistID]; ok {
		return a.Followers
	}
	return 0
}

// GenreDistribution counts genre tags across a group of tracks.
type GenreDistribution map[string]int

// NewGenreDistribution tallies the primary artists' genre tags for a set of
// tracks against the lookup table.
func NewGenreDistribution(tracks []Track, lookup ArtistLookup) GenreDistribution {
	dist := make(GenreDistribution)
	for _, t := range tracks {
		for _, g := range lookup.Genres(t.ArtistID) {
			dist[g]++
		}
	}
	return dist
}

// Top returns the n most common genres, ties broken alphabetically so the
// ordering is stable across runs.
func (d GenreDistribution) Top(n int) []GenreCount {
	out := make([]GenreCount, 0, len(d))
	for g, c := range d {
		out = append(out, GenreCount{Genre: g, Count: c})
	}
	sortGenreCounts(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// GenreCount pairs a genre tag with its occurrence count.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// sortGenreCounts orders by count descending, then name ascending for a
// stable ordering across runs.
func sortGenreCounts(gc []GenreCount) {
	sort.Slice(gc, func(i, j int) bool {
		if gc[i].Count != gc[j].Count {
			return gc[i].Count > gc[j].Count
		}
		return gc[i].Genre < gc[j].Genre
	})
}
