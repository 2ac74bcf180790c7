package analysis

import (
	"math"
	"sort"
)

const sampleTrackLimit = 10

// Result is the full analysis payload for one playlist. The field names are
// part of the external contract consumed by API clients.
type Result struct {
	Clusters           []Cluster      `json:"clusters"`
	TotalTracks        int            `json:"total_tracks"`
	AnalyzedTracks     int            `json:"analyzed_tracks"`
	OptimalClusters    int            `json:"optimal_clusters"`
	Method             string         `json:"method"`
	Visualization      *Visualization `json:"visualization,omitempty"`
	AdditionalInsights *Insights      `json:"additional_insights,omitempty"`
}

// Cluster is one named group of tracks with its synthesized profile.
type Cluster struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Count        int            `json:"count"`
	Percentage   float64        `json:"percentage"`
	Tracks       []TrackSummary `json:"tracks"`
	TotalTracks  int            `json:"total_tracks"`
	AudioProfile AudioProfile   `json:"audio_profile"`
}

// TrackSummary is the sample-track record embedded in a cluster.
type TrackSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	Popularity  int    `json:"popularity"`
	ReleaseDate string `json:"release_date,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Visualization carries one 2D coordinate per analyzed track.
type Visualization struct {
	Type        string       `json:"type"`
	Coordinates []Coordinate `json:"coordinates"`
}

// Coordinate ties an embedded point back to its track and cluster.
type Coordinate struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	TrackID   string  `json:"track_id"`
	TrackName string  `json:"track_name"`
	Artist    string  `json:"artist"`
	Cluster   int     `json:"cluster"`
}

// Insights holds playlist-level observations alongside the clusters.
type Insights struct {
	ContextThemes            ContextThemes        `json:"context_themes"`
	ClusterGenreDistribution map[int][]GenreCount `json:"cluster_genre_distributions"`
	PlaylistYearSpan         *YearSpan            `json:"playlist_year_span"`
}

// YearSpan summarizes the release-year range of a playlist.
type YearSpan struct {
	Earliest int `json:"earliest"`
	Latest   int `json:"latest"`
	Span     int `json:"span"`
}

// roundPercentage converts a count/total share to a one-decimal percent.
func roundPercentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// summarizeTracks returns up to limit sample tracks ordered by descending
// popularity.
func summarizeTracks(tracks []Track, limit int) []TrackSummary {
	sorted := append([]Track(nil), tracks...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Popularity > sorted[b].Popularity
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	summaries := make([]TrackSummary, len(sorted))
	for i, t := range sorted {
		summaries[i] = TrackSummary{
			ID:          t.ID,
			Name:        t.Name,
			Artist:      t.PrimaryArtist,
			Album:       t.Album,
			Popularity:  t.Popularity,
			ReleaseDate: t.ReleaseDate,
			ImageURL:    t.ImageURL,
		}
	}
	return summaries
}

// playlistYearSpan returns nil when no release year parses.
func playlistYearSpan(tracks []Track) *YearSpan {
	years := releaseYears(tracks)
	if len(years) == 0 {
		return nil
	}
	minY, maxY := yearBounds(years)
	return &YearSpan{Earliest: minY, Latest: maxY, Span: maxY - minY}
}
