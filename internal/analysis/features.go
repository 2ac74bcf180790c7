package analysis

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ErrNoUsableTracks is returned when an item list is empty or every item
// fails validation.
var ErrNoUsableTracks = errors.New("no usable tracks for analysis")

// Feature column names, in matrix column order.
var featureColumns = []string{
	"popularity",
	"release_year",
	"explicit",
	"track_position",
	"artist_popularity",
	"genre_rock",
	"genre_pop",
	"genre_electronic",
	"genre_hip_hop",
	"genre_jazz",
	"genre_classical",
	"genre_folk",
	"genre_country",
	"added_recency",
	"album_popularity",
	"artist_followers",
	"track_duration",
}

// Columns that are z-scored across the batch after imputation. Everything
// else is already on a 0-1 scale.
var standardizedColumns = map[string]bool{
	"release_year":     true,
	"artist_followers": true,
	"added_recency":    true,
	"track_duration":   true,
}

// genreFamilies maps each genre-family feature to the substrings that place
// a raw genre tag in that family. A tag can fall into several families.
var genreFamilies = []struct {
	column string
	terms  []string
}{
	{"genre_rock", []string{"rock"}},
	{"genre_pop", []string{"pop"}},
	{"genre_electronic", []string{"electronic", "techno", "house", "edm"}},
	{"genre_hip_hop", []string{"hip hop", "rap", "trap"}},
	{"genre_jazz", []string{"jazz"}},
	{"genre_classical", []string{"classical", "orchestra", "piano"}},
	{"genre_folk", []string{"folk", "indie", "acoustic"}},
	{"genre_country", []string{"country"}},
}

// FeatureMatrix is one row per valid track, one column per named feature.
// Row i corresponds to Tracks[i] of the parallel track list returned by
// BuildFeatures. All imputation and normalization state is local to one
// analysis call.
type FeatureMatrix struct {
	Rows    [][]float64
	Columns []string
}

// Len returns the number of rows (valid tracks).
func (m *FeatureMatrix) Len() int { return len(m.Rows) }

// BuildFeatures converts raw playlist items into a feature matrix and the
// parallel cleaned track list. Items without a track, track id, artist list
// or name are dropped, not errors. Returns ErrNoUsableTracks when nothing
// survives.
func BuildFeatures(items []PlaylistItem, lookup ArtistLookup, now time.Time) (*FeatureMatrix, []Track, error) {
	if len(items) == 0 {
		return nil, nil, ErrNoUsableTracks
	}

	var tracks []Track
	var rows [][]float64
	var missing [][]int // per appended row, column indexes needing imputation

	for _, item := range items {
		raw := item.Track
		if raw == nil || raw.ID == "" || len(raw.Artists) == 0 || raw.Name == "" {
			continue
		}

		track := cleanTrack(raw, item.AddedAt)
		row := make([]float64, len(featureColumns))
		var miss []int

		// Popularity, already 0-1.
		row[colIndex("popularity")] = float64(raw.Popularity) / 100.0

		// Release year, z-scored later; missing values imputed with the
		// column median.
		if year, ok := parseYear(raw.ReleaseDate); ok {
			row[colIndex("release_year")] = float64(year)
		} else {
			miss = append(miss, colIndex("release_year"))
		}

		if raw.Explicit {
			row[colIndex("explicit")] = 1.0
		}

		// Position within the album, 0-1, neutral 0.5 for incomplete albums.
		position := 0.5
		if raw.TrackNumber > 0 && raw.TotalTracks > 0 {
			position = clamp01(float64(raw.TrackNumber) / float64(raw.TotalTracks))
		}
		row[colIndex("track_position")] = position

		row[colIndex("artist_popularity")] = lookup.Popularity(track.ArtistID)
		row[colIndex("artist_followers")] = float64(lookup.Followers(track.ArtistID))

		applyGenreFeatures(row, lookup.Genres(track.ArtistID))

		// Days since the track was added; z-scored later.
		if !item.AddedAt.IsZero() {
			row[colIndex("added_recency")] = now.Sub(item.AddedAt).Hours() / 24.0
		} else {
			miss = append(miss, colIndex("added_recency"))
		}

		row[colIndex("track_duration")] = float64(raw.DurationMs)

		tracks = append(tracks, track)
		rows = append(rows, row)
		missing = append(missing, miss)
	}

	if len(tracks) == 0 {
		return nil, nil, ErrNoUsableTracks
	}

	fillAlbumPopularity(rows, tracks)
	imputeMedians(rows, missing)
	standardize(rows)

	return &FeatureMatrix{Rows: rows, Columns: featureColumns}, tracks, nil
}

func cleanTrack(raw *RawTrack, addedAt time.Time) Track {
	artists := make([]string, len(raw.Artists))
	for i, a := range raw.Artists {
		artists[i] = a.Name
	}
	album := raw.AlbumName
	if album == "" {
		album = "Unknown"
	}
	return Track{
		ID:            raw.ID,
		Name:          raw.Name,
		Artists:       artists,
		PrimaryArtist: raw.Artists[0].Name,
		ArtistID:      raw.Artists[0].ID,
		Album:         album,
		Popularity:    raw.Popularity,
		AddedAt:       addedAt,
		ReleaseDate:   raw.ReleaseDate,
		ImageURL:      raw.ImageURL,
		Explicit:      raw.Explicit,
		DurationMs:    raw.DurationMs,
	}
}

// applyGenreFeatures counts the primary artist's genre tags per family,
// capped and scaled to 0-1 by dividing by 3.
func applyGenreFeatures(row []float64, genres []string) {
	for _, family := range genreFamilies {
		count := 0
		for _, genre := range genres {
			lower := strings.ToLower(genre)
			for _, term := range family.terms {
				if strings.Contains(lower, term) {
					count++
					break
				}
			}
		}
		row[colIndex(family.column)] = math.Min(1.0, float64(count)/3.0)
	}
}

// fillAlbumPopularity sets each row's album_popularity to the mean
// popularity of all playlist tracks sharing the album name, itself included.
func fillAlbumPopularity(rows [][]float64, tracks []Track) {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, t := range tracks {
		sums[t.Album] += t.Popularity
		counts[t.Album]++
	}
	col := colIndex("album_popularity")
	for i, t := range tracks {
		if counts[t.Album] > 0 {
			rows[i][col] = float64(sums[t.Album]) / (float64(counts[t.Album]) * 100.0)
		} else {
			rows[i][col] = 0.5
		}
	}
}

// imputeMedians replaces each missing cell with the median of the observed
// values in its column. A column with no observed values at all becomes 0.
func imputeMedians(rows [][]float64, missing [][]int) {
	missingByCol := make(map[int][]int)
	for rowIdx, cols := range missing {
		for _, col := range cols {
			missingByCol[col] = append(missingByCol[col], rowIdx)
		}
	}

	for col, rowIdxs := range missingByCol {
		isMissing := make(map[int]bool, len(rowIdxs))
		for _, r := range rowIdxs {
			isMissing[r] = true
		}
		var observed []float64
		for i, row := range rows {
			if !isMissing[i] {
				observed = append(observed, row[col])
			}
		}
		fill := median(observed)
		for _, r := range rowIdxs {
			rows[r][col] = fill
		}
	}
}

// standardize z-scores the designated columns across the batch. Columns with
// zero variance become a constant 0 instead of dividing by zero.
func standardize(rows [][]float64) {
	values := make([]float64, len(rows))
	for colName := range standardizedColumns {
		col := colIndex(colName)
		for i, row := range rows {
			values[i] = row[col]
		}
		mean, std := stat.PopMeanStdDev(values, nil)

		if std == 0 {
			for _, row := range rows {
				row[col] = 0
			}
			continue
		}
		for _, row := range rows {
			row[col] = (row[col] - mean) / std
		}
	}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

func colIndex(name string) int {
	for i, c := range featureColumns {
		if c == name {
			return i
		}
	}
	panic("unknown feature column: " + name)
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
