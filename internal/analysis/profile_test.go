package analysis

import (
	"testing"
	"time"
)

func makeTrack(id string, popularity int, year string) Track {
	return Track{
		ID:            id,
		Name:          "Track " + id,
		PrimaryArtist: "Artist",
		ArtistID:      "a1",
		Album:         "Album",
		Popularity:    popularity,
		ReleaseDate:   year,
		DurationMs:    210000,
		AddedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSynthesizeProfile_Deterministic(t *testing.T) {
	tracks := []Track{
		makeTrack("t1", 70, "2018-03-01"),
		makeTrack("t2", 55, "2019-07-01"),
		makeTrack("t3", 62, "2020-11-01"),
	}
	genres := GenreDistribution{"indie rock": 2, "dream pop": 1}
	themes := ExtractContext("Chill Evening", "")

	first := SynthesizeProfile(tracks, genres, themes)
	second := SynthesizeProfile(tracks, genres, themes)
	if first != second {
		t.Errorf("profiles differ across runs:\n%+v\n%+v", first, second)
	}

	// Order of the track slice must not matter; jitter is seeded from the
	// sorted id set.
	reordered := []Track{tracks[2], tracks[0], tracks[1]}
	third := SynthesizeProfile(reordered, genres, themes)
	if first != third {
		t.Errorf("profile depends on track order:\n%+v\n%+v", first, third)
	}
}

func TestSynthesizeProfile_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		tracks []Track
		genres GenreDistribution
		themes ContextThemes
	}{
		{
			name:   "no metadata",
			tracks: []Track{{ID: "x", Name: "X", PrimaryArtist: "A"}},
			genres: GenreDistribution{},
			themes: ExtractContext("", ""),
		},
		{
			name: "heavy metal workout",
			tracks: []Track{
				makeTrack("m1", 90, "2021-01-01"),
				makeTrack("m2", 88, "2022-01-01"),
			},
			genres: GenreDistribution{"heavy metal": 2, "hard rock": 2},
			themes: ExtractContext("Workout", "gym cardio"),
		},
		{
			name: "old acoustic",
			tracks: []Track{
				makeTrack("o1", 10, "1955-01-01"),
				makeTrack("o2", 15, "1958-01-01"),
			},
			genres: GenreDistribution{"folk": 2, "classical": 1},
			themes: ExtractContext("Sleepy classics", ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SynthesizeProfile(tt.tracks, tt.genres, tt.themes)
			fields := map[string]float64{
				"danceability":     p.Danceability,
				"energy":           p.Energy,
				"acousticness":     p.Acousticness,
				"instrumentalness": p.Instrumentalness,
				"valence":          p.Valence,
				"speechiness":      p.Speechiness,
				"liveness":         p.Liveness,
			}
			for name, v := range fields {
				if v < 0.01 || v > 0.99 {
					t.Errorf("%s = %v outside [0.01, 0.99]", name, v)
				}
			}
			// Tempo is clamped to [60,180] before a +/-3 jitter.
			if p.Tempo < 57 || p.Tempo > 183 {
				t.Errorf("tempo = %v outside [57, 183]", p.Tempo)
			}
		})
	}
}

func TestSynthesizeProfile_EmptyClusterIsNeutral(t *testing.T) {
	p := SynthesizeProfile(nil, GenreDistribution{}, ExtractContext("", ""))
	if p != neutralProfile {
		t.Errorf("empty cluster profile = %+v, want neutral base", p)
	}
}

func TestSynthesizeProfile_ExplicitShareRaisesSpeechiness(t *testing.T) {
	clean := []Track{
		makeTrack("c1", 50, "2020-01-01"),
		makeTrack("c2", 50, "2020-01-01"),
	}
	explicit := []Track{
		makeTrack("c1", 50, "2020-01-01"),
		makeTrack("c2", 50, "2020-01-01"),
	}
	explicit[0].Explicit = true
	explicit[1].Explicit = true

	themes := ExtractContext("", "")
	base := SynthesizeProfile(clean, GenreDistribution{}, themes)
	boosted := SynthesizeProfile(explicit, GenreDistribution{}, themes)

	// Same ids, so jitter is identical; the gap is the explicit boost
	// (min(0.3, 1.0*0.5) = 0.3) minus nothing else.
	if boosted.Speechiness <= base.Speechiness {
		t.Errorf("explicit speechiness %v not above clean %v", boosted.Speechiness, base.Speechiness)
	}
}

func TestSynthesizeStyledProfile_StartsFromStyleBase(t *testing.T) {
	// With no tracks there is nothing to adjust, so the style base comes
	// back untouched.
	if got := SynthesizeStyledProfile("workout", nil, nil, nil); got != BaseProfile("workout") {
		t.Errorf("empty styled profile = %+v, want the workout base", got)
	}
	if got := SynthesizeStyledProfile("nonsense", nil, nil, nil); got != BaseProfile("default") {
		t.Errorf("unknown style = %+v, want the default base", got)
	}

	// Identical inputs through different bases must land on different
	// profiles; the jitter seed is the same for both.
	tracks := []Track{
		makeTrack("s1", 40, "2011-01-01"),
		makeTrack("s2", 45, "2012-01-01"),
	}
	styled := SynthesizeStyledProfile("sleep", tracks, GenreDistribution{}, ExtractContext("", ""))
	neutral := SynthesizeProfile(tracks, GenreDistribution{}, ExtractContext("", ""))
	if styled == neutral {
		t.Error("sleep-styled profile identical to the neutral-based one")
	}
	if styled.Acousticness <= neutral.Acousticness {
		t.Errorf("sleep-styled acousticness %v not above neutral %v",
			styled.Acousticness, neutral.Acousticness)
	}
}

func TestDecadeStyle(t *testing.T) {
	tests := []struct {
		year int
		want string
	}{
		{1940, "decade1950"},
		{1955, "decade1950"},
		{1969, "decade1960"},
		{1987, "decade1980"},
		{2003, "decade2000"},
		{2024, "decade2020"},
		{2035, "decade2020"},
	}

	for _, tt := range tests {
		if got := decadeStyle(tt.year); got != tt.want {
			t.Errorf("decadeStyle(%d) = %q, want %q", tt.year, got, tt.want)
		}
	}
}

func TestBaseProfile(t *testing.T) {
	if got := BaseProfile("workout"); got.Energy != 0.95 {
		t.Errorf("workout energy = %v, want 0.95", got.Energy)
	}
	// Unknown styles fall back to default.
	if got := BaseProfile("nonsense"); got != baseProfiles["default"] {
		t.Errorf("unknown style = %+v, want default", got)
	}
}

func TestPercentiles(t *testing.T) {
	q1, q2, q3 := percentiles([]float64{1, 2, 3, 4, 5})
	if q1 != 2 || q2 != 3 || q3 != 4 {
		t.Errorf("percentiles = %v, %v, %v; want 2, 3, 4", q1, q2, q3)
	}
	q1, q2, q3 = percentiles([]float64{10})
	if q1 != 10 || q2 != 10 || q3 != 10 {
		t.Errorf("single-value percentiles = %v, %v, %v; want all 10", q1, q2, q3)
	}
}
