package analysis

import "strconv"

// AudioProfile describes the estimated sonic character of a cluster. All
// fields except Tempo are in [0,1]; Tempo is in BPM.
type AudioProfile struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Valence          float64 `json:"valence"`
	Speechiness      float64 `json:"speechiness"`
	Liveness         float64 `json:"liveness"`
	Tempo            float64 `json:"tempo"`
}

// neutralProfile is the starting point for metadata-driven synthesis.
var neutralProfile = AudioProfile{
	Danceability:     0.5,
	Energy:           0.5,
	Acousticness:     0.5,
	Instrumentalness: 0.2,
	Valence:          0.5,
	Speechiness:      0.1,
	Liveness:         0.2,
	Tempo:            115.0,
}

// baseProfiles holds per-style starting profiles for clusters whose character
// is known up front, such as single-artist or decade groupings.
var baseProfiles = map[string]AudioProfile{
	"artist":      {Danceability: 0.65, Energy: 0.70, Acousticness: 0.40, Instrumentalness: 0.10, Valence: 0.60, Speechiness: 0.15, Liveness: 0.20, Tempo: 120.0},
	"album":       {Danceability: 0.60, Energy: 0.65, Acousticness: 0.45, Instrumentalness: 0.12, Valence: 0.55, Speechiness: 0.18, Liveness: 0.22, Tempo: 118.0},
	"chill":       {Danceability: 0.45, Energy: 0.30, Acousticness: 0.70, Instrumentalness: 0.25, Valence: 0.50, Speechiness: 0.05, Liveness: 0.08, Tempo: 90.0},
	"focus":       {Danceability: 0.40, Energy: 0.35, Acousticness: 0.60, Instrumentalness: 0.40, Valence: 0.52, Speechiness: 0.04, Liveness: 0.05, Tempo: 100.0},
	"party":       {Danceability: 0.85, Energy: 0.90, Acousticness: 0.15, Instrumentalness: 0.05, Valence: 0.80, Speechiness: 0.12, Liveness: 0.30, Tempo: 125.0},
	"dance":       {Danceability: 0.90, Energy: 0.85, Acousticness: 0.10, Instrumentalness: 0.08, Valence: 0.75, Speechiness: 0.10, Liveness: 0.25, Tempo: 128.0},
	"workout":     {Danceability: 0.80, Energy: 0.95, Acousticness: 0.10, Instrumentalness: 0.05, Valence: 0.85, Speechiness: 0.15, Liveness: 0.20, Tempo: 135.0},
	"sleep":       {Danceability: 0.25, Energy: 0.15, Acousticness: 0.90, Instrumentalness: 0.60, Valence: 0.40, Speechiness: 0.03, Liveness: 0.05, Tempo: 75.0},
	"mood":        {Danceability: 0.60, Energy: 0.55, Acousticness: 0.50, Instrumentalness: 0.20, Valence: 0.70, Speechiness: 0.10, Liveness: 0.15, Tempo: 110.0},
	"upbeat":      {Danceability: 0.75, Energy: 0.80, Acousticness: 0.30, Instrumentalness: 0.10, Valence: 0.90, Speechiness: 0.12, Liveness: 0.20, Tempo: 122.0},
	"melancholic": {Danceability: 0.35, Energy: 0.40, Acousticness: 0.65, Instrumentalness: 0.20, Valence: 0.25, Speechiness: 0.08, Liveness: 0.10, Tempo: 85.0},
	"rock":        {Danceability: 0.55, Energy: 0.85, Acousticness: 0.30, Instrumentalness: 0.15, Valence: 0.65, Speechiness: 0.08, Liveness: 0.30, Tempo: 130.0},
	"pop":         {Danceability: 0.70, Energy: 0.75, Acousticness: 0.25, Instrumentalness: 0.05, Valence: 0.70, Speechiness: 0.10, Liveness: 0.15, Tempo: 118.0},
	"hiphop":      {Danceability: 0.80, Energy: 0.70, Acousticness: 0.15, Instrumentalness: 0.05, Valence: 0.65, Speechiness: 0.25, Liveness: 0.15, Tempo: 95.0},
	"country":     {Danceability: 0.60, Energy: 0.65, Acousticness: 0.60, Instrumentalness: 0.10, Valence: 0.60, Speechiness: 0.07, Liveness: 0.25, Tempo: 115.0},
	"folk":        {Danceability: 0.45, Energy: 0.50, Acousticness: 0.80, Instrumentalness: 0.20, Valence: 0.55, Speechiness: 0.06, Liveness: 0.20, Tempo: 105.0},
	"indie":       {Danceability: 0.55, Energy: 0.60, Acousticness: 0.55, Instrumentalness: 0.25, Valence: 0.60, Speechiness: 0.05, Liveness: 0.18, Tempo: 112.0},
	"popular":     {Danceability: 0.75, Energy: 0.75, Acousticness: 0.30, Instrumentalness: 0.05, Valence: 0.70, Speechiness: 0.10, Liveness: 0.15, Tempo: 120.0},
	"recent":      {Danceability: 0.70, Energy: 0.72, Acousticness: 0.35, Instrumentalness: 0.08, Valence: 0.65, Speechiness: 0.12, Liveness: 0.18, Tempo: 115.0},
	"explicit":    {Danceability: 0.78, Energy: 0.75, Acousticness: 0.20, Instrumentalness: 0.06, Valence: 0.62, Speechiness: 0.30, Liveness: 0.15, Tempo: 98.0},
	"decade1950":  {Danceability: 0.50, Energy: 0.55, Acousticness: 0.70, Instrumentalness: 0.30, Valence: 0.65, Speechiness: 0.05, Liveness: 0.25, Tempo: 105.0},
	"decade1960":  {Danceability: 0.55, Energy: 0.60, Acousticness: 0.65, Instrumentalness: 0.25, Valence: 0.70, Speechiness: 0.06, Liveness: 0.30, Tempo: 110.0},
	"decade1970":  {Danceability: 0.65, Energy: 0.70, Acousticness: 0.50, Instrumentalness: 0.20, Valence: 0.65, Speechiness: 0.07, Liveness: 0.35, Tempo: 115.0},
	"decade1980":  {Danceability: 0.75, Energy: 0.75, Acousticness: 0.35, Instrumentalness: 0.15, Valence: 0.75, Speechiness: 0.08, Liveness: 0.25, Tempo: 120.0},
	"decade1990":  {Danceability: 0.70, Energy: 0.80, Acousticness: 0.30, Instrumentalness: 0.10, Valence: 0.70, Speechiness: 0.10, Liveness: 0.20, Tempo: 125.0},
	"decade2000":  {Danceability: 0.75, Energy: 0.75, Acousticness: 0.25, Instrumentalness: 0.08, Valence: 0.65, Speechiness: 0.12, Liveness: 0.18, Tempo: 118.0},
	"decade2010":  {Danceability: 0.78, Energy: 0.72, Acousticness: 0.30, Instrumentalness: 0.05, Valence: 0.60, Speechiness: 0.15, Liveness: 0.15, Tempo: 115.0},
	"decade2020":  {Danceability: 0.80, Energy: 0.70, Acousticness: 0.35, Instrumentalness: 0.04, Valence: 0.58, Speechiness: 0.18, Liveness: 0.12, Tempo: 110.0},
	"diverse":     {Danceability: 0.60, Energy: 0.60, Acousticness: 0.40, Instrumentalness: 0.15, Valence: 0.55, Speechiness: 0.10, Liveness: 0.18, Tempo: 115.0},
	"default":     {Danceability: 0.65, Energy: 0.65, Acousticness: 0.45, Instrumentalness: 0.15, Valence: 0.60, Speechiness: 0.12, Liveness: 0.20, Tempo: 118.0},
}

// BaseProfile returns the starting profile for a named cluster style,
// falling back to "default" for unknown styles.
func BaseProfile(style string) AudioProfile {
	if p, ok := baseProfiles[style]; ok {
		return p
	}
	return baseProfiles["default"]
}

// decadeStyle maps a year to its decade's style key, clamped to the range
// the table covers.
func decadeStyle(year int) string {
	decade := (year / 10) * 10
	if decade < 1950 {
		decade = 1950
	}
	if decade > 2020 {
		decade = 2020
	}
	return "decade" + strconv.Itoa(decade)
}
