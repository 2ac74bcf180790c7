package analysis

import (
	"errors"
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func makeItem(id, name, artist, artistID string) PlaylistItem {
	return PlaylistItem{
		Track: &RawTrack{
			ID:          id,
			Name:        name,
			Artists:     []RawArtistRef{{ID: artistID, Name: artist}},
			AlbumName:   "Album",
			ReleaseDate: "2020-01-01",
			TrackNumber: 1,
			TotalTracks: 10,
			Popularity:  50,
			DurationMs:  200000,
		},
		AddedAt: testNow.AddDate(0, -1, 0),
	}
}

func TestBuildFeatures_EmptyInput(t *testing.T) {
	_, _, err := BuildFeatures(nil, nil, testNow)
	if !errors.Is(err, ErrNoUsableTracks) {
		t.Errorf("err = %v, want ErrNoUsableTracks", err)
	}
}

func TestBuildFeatures_AllInvalid(t *testing.T) {
	items := []PlaylistItem{
		{Track: nil},
		{Track: &RawTrack{Name: "no id", Artists: []RawArtistRef{{Name: "A"}}}},
		{Track: &RawTrack{ID: "1", Artists: []RawArtistRef{{Name: "A"}}}}, // no name
		{Track: &RawTrack{ID: "2", Name: "no artists"}},
	}
	_, _, err := BuildFeatures(items, nil, testNow)
	if !errors.Is(err, ErrNoUsableTracks) {
		t.Errorf("err = %v, want ErrNoUsableTracks", err)
	}
}

func TestBuildFeatures_DropsInvalidKeepsValid(t *testing.T) {
	items := []PlaylistItem{
		makeItem("1", "Valid", "Artist", "a1"),
		{Track: nil},
		makeItem("2", "Also Valid", "Artist", "a1"),
	}
	m, tracks, err := BuildFeatures(items, nil, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Len() != 2 || len(tracks) != 2 {
		t.Fatalf("got %d rows, %d tracks, want 2 and 2", m.Len(), len(tracks))
	}
	if len(m.Columns) != 17 {
		t.Errorf("got %d columns, want 17", len(m.Columns))
	}
	for i, row := range m.Rows {
		if len(row) != len(m.Columns) {
			t.Errorf("row %d has %d values, want %d", i, len(row), len(m.Columns))
		}
	}
}

func TestBuildFeatures_DefaultsForMissingMetadata(t *testing.T) {
	item := makeItem("1", "Sparse", "Artist", "a1")
	item.Track.TrackNumber = 0
	item.Track.TotalTracks = 0
	m, _, err := BuildFeatures([]PlaylistItem{item}, nil, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Rows[0][colIndex("track_position")]; got != 0.5 {
		t.Errorf("track_position = %v, want default 0.5", got)
	}
	// No lookup: artist popularity defaults to the neutral midpoint.
	if got := m.Rows[0][colIndex("artist_popularity")]; got != 0.5 {
		t.Errorf("artist_popularity = %v, want default 0.5", got)
	}
}

func TestBuildFeatures_GenreFamilies(t *testing.T) {
	lookup := ArtistLookup{
		"a1": {ID: "a1", Name: "Artist", Genres: []string{"indie rock", "garage rock", "punk rock"}, Popularity: 70},
	}
	m, _, err := BuildFeatures([]PlaylistItem{makeItem("1", "T", "Artist", "a1")}, lookup, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Three rock tags, capped at count/3 = 1.0.
	if got := m.Rows[0][colIndex("genre_rock")]; got != 1.0 {
		t.Errorf("genre_rock = %v, want 1.0", got)
	}
	// "indie rock" also lands in the folk family via "indie".
	if got := m.Rows[0][colIndex("genre_folk")]; math.Abs(got-1.0/3.0) > 1e-9 {
		t.Errorf("genre_folk = %v, want 1/3", got)
	}
	if got := m.Rows[0][colIndex("genre_jazz")]; got != 0 {
		t.Errorf("genre_jazz = %v, want 0", got)
	}
}

func TestBuildFeatures_AlbumPopularityProxy(t *testing.T) {
	a := makeItem("1", "A", "Artist", "a1")
	b := makeItem("2", "B", "Artist", "a1")
	a.Track.Popularity = 80
	b.Track.Popularity = 40

	m, _, err := BuildFeatures([]PlaylistItem{a, b}, nil, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Both share "Album": mean popularity (80+40)/2 = 60 → 0.6.
	for i := range m.Rows {
		if got := m.Rows[i][colIndex("album_popularity")]; math.Abs(got-0.6) > 1e-9 {
			t.Errorf("row %d album_popularity = %v, want 0.6", i, got)
		}
	}
}

func TestBuildFeatures_StandardizedColumnsZeroVariance(t *testing.T) {
	// Identical release years and added dates: z-scoring a zero-variance
	// column must produce constant zeros, not NaN.
	items := []PlaylistItem{
		makeItem("1", "A", "Artist", "a1"),
		makeItem("2", "B", "Artist", "a1"),
		makeItem("3", "C", "Artist", "a1"),
	}
	m, _, err := BuildFeatures(items, nil, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, row := range m.Rows {
		for name := range standardizedColumns {
			v := row[colIndex(name)]
			if math.IsNaN(v) {
				t.Fatalf("column %s is NaN", name)
			}
			if v != 0 {
				t.Errorf("column %s = %v, want 0 for zero variance", name, v)
			}
		}
	}
}

func TestBuildFeatures_ImputesMissingYear(t *testing.T) {
	a := makeItem("1", "A", "Artist", "a1")
	b := makeItem("2", "B", "Artist", "a1")
	c := makeItem("3", "C", "Artist", "a1")
	d := makeItem("4", "D", "Artist", "a1")
	a.Track.ReleaseDate = "2000-01-01"
	b.Track.ReleaseDate = "2010-01-01"
	c.Track.ReleaseDate = "2020-01-01"
	d.Track.ReleaseDate = "" // imputed with the median of the other three

	m, _, err := BuildFeatures([]PlaylistItem{a, b, c, d}, nil, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col := colIndex("release_year")
	// After imputation the year column is [2000, 2010, 2020, 2010]; z-scored,
	// the imputed row sits exactly on the mean.
	if got := m.Rows[3][col]; math.Abs(got) > 1e-9 {
		t.Errorf("imputed row z-score = %v, want 0", got)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd count", []float64{30, 10, 20}, 20},
		{"even count takes the lower middle", []float64{1, 2, 3, 4}, 2},
		{"single value", []float64{7}, 7},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.values); got != tt.want {
				t.Errorf("median(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		date   string
		year   int
		wantOK bool
	}{
		{"2020-05-01", 2020, true},
		{"1999", 1999, true},
		{"", 0, false},
		{"abc", 0, false},
		{"20", 0, false},
	}
	for _, tt := range tests {
		year, ok := parseYear(tt.date)
		if ok != tt.wantOK || (ok && year != tt.year) {
			t.Errorf("parseYear(%q) = %d, %v; want %d, %v", tt.date, year, ok, tt.year, tt.wantOK)
		}
	}
}
