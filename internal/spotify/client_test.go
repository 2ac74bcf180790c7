package spotify

import (
	"testing"
	"time"

	"github.com/zmb3/spotify/v2"
)

func TestConvertItem(t *testing.T) {
	tests := []struct {
		name            string
		item            spotify.PlaylistItem
		expectedID      string
		expectedArtists int
		expectedRelease string
		expectedTime    time.Time
	}{
		{
			name: "full metadata",
			item: spotify.PlaylistItem{
				AddedAt: "2024-01-15T10:30:00Z",
				Track: spotify.PlaylistItemTrack{
					Track: &spotify.FullTrack{
						SimpleTrack: spotify.SimpleTrack{
							ID:   "track123",
							Name: "Test Song",
							Artists: []spotify.SimpleArtist{
								{ID: "artist1", Name: "Artist One"},
								{ID: "artist2", Name: "Artist Two"},
							},
							TrackNumber: 3,
							Explicit:    true,
						},
						Album: spotify.SimpleAlbum{
							Name:        "Test Album",
							ReleaseDate: "2019-06-01",
						},
					},
				},
			},
			expectedID:      "track123",
			expectedArtists: 2,
			expectedRelease: "2019-06-01",
			expectedTime:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "invalid timestamp uses zero value",
			item: spotify.PlaylistItem{
				AddedAt: "not-a-valid-timestamp",
				Track: spotify.PlaylistItemTrack{
					Track: &spotify.FullTrack{
						SimpleTrack: spotify.SimpleTrack{
							ID:   "track456",
							Name: "Old Song",
							Artists: []spotify.SimpleArtist{
								{ID: "artist9", Name: "Mystery Artist"},
							},
						},
					},
				},
			},
			expectedID:      "track456",
			expectedArtists: 1,
			expectedRelease: "",
			expectedTime:    time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertItem(tt.item)

			if got.Track.ID != tt.expectedID {
				t.Errorf("ID = %q, want %q", got.Track.ID, tt.expectedID)
			}
			if len(got.Track.Artists) != tt.expectedArtists {
				t.Errorf("got %d artists, want %d", len(got.Track.Artists), tt.expectedArtists)
			}
			if got.Track.ReleaseDate != tt.expectedRelease {
				t.Errorf("ReleaseDate = %q, want %q", got.Track.ReleaseDate, tt.expectedRelease)
			}
			if !got.AddedAt.Equal(tt.expectedTime) {
				t.Errorf("AddedAt = %v, want %v", got.AddedAt, tt.expectedTime)
			}
			if got.Track.Explicit != tt.item.Track.Track.Explicit {
				t.Errorf("Explicit = %v, want %v", got.Track.Explicit, tt.item.Track.Track.Explicit)
			}
		})
	}
}

func TestConvertArtist(t *testing.T) {
	artist := &spotify.FullArtist{
		SimpleArtist: spotify.SimpleArtist{
			ID:   "artist1",
			Name: "Test Artist",
		},
		Genres: []string{"indie rock", "shoegaze"},
	}

	got := convertArtist(artist)

	if got.ID != "artist1" {
		t.Errorf("ID = %q, want %q", got.ID, "artist1")
	}
	if got.Name != "Test Artist" {
		t.Errorf("Name = %q, want %q", got.Name, "Test Artist")
	}
	if len(got.Genres) != 2 || got.Genres[0] != "indie rock" {
		t.Errorf("Genres = %v, want [indie rock shoegaze]", got.Genres)
	}
}

func TestArtistBatchChunking(t *testing.T) {
	tests := []struct {
		name          string
		totalIDs      int
		expectedBatch []struct{ start, end int }
	}{
		{
			name:     "less than 50",
			totalIDs: 20,
			expectedBatch: []struct{ start, end int }{
				{0, 20},
			},
		},
		{
			name:     "exactly 50",
			totalIDs: 50,
			expectedBatch: []struct{ start, end int }{
				{0, 50},
			},
		},
		{
			name:     "more than 50",
			totalIDs: 120,
			expectedBatch: []struct{ start, end int }{
				{0, 50},
				{50, 100},
				{100, 120},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var batches []struct{ start, end int }

			for i := 0; i < tt.totalIDs; i += maxArtistsPerRequest {
				end := min(i+maxArtistsPerRequest, tt.totalIDs)
				batches = append(batches, struct{ start, end int }{i, end})
			}

			if len(batches) != len(tt.expectedBatch) {
				t.Errorf("got %d batches, want %d", len(batches), len(tt.expectedBatch))
				return
			}

			for i, batch := range batches {
				if batch.start != tt.expectedBatch[i].start || batch.end != tt.expectedBatch[i].end {
					t.Errorf("batch %d = {%d, %d}, want {%d, %d}",
						i, batch.start, batch.end,
						tt.expectedBatch[i].start, tt.expectedBatch[i].end)
				}
			}
		})
	}
}
