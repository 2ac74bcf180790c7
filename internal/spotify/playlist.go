package spotify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/avollmer/go-playlist-insights/internal/analysis"
)

const pageLimit = 100

// PlaylistItems retrieves every item of a playlist, following pagination
// until the API reports no more pages. Episode entries and local files
// without an ID are skipped.
func (c *Client) PlaylistItems(ctx context.Context, playlistID string) ([]analysis.PlaylistItem, error) {
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(pageLimit))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist items: %w", err)
	}

	var items []analysis.PlaylistItem
	for {
		for _, item := range page.Items {
			if item.Track.Track == nil || item.Track.Track.ID == "" {
				continue
			}
			items = append(items, convertItem(item))
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}
	}
	return items, nil
}

// convertItem flattens a playlist entry into the analysis input record.
func convertItem(item spotify.PlaylistItem) analysis.PlaylistItem {
	t := item.Track.Track

	artists := make([]analysis.RawArtistRef, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = analysis.RawArtistRef{ID: a.ID.String(), Name: a.Name}
	}

	var imageURL string
	if len(t.Album.Images) > 0 {
		imageURL = t.Album.Images[0].URL
	}

	// Zero value on parse failure marks the added time as unknown.
	addedAt, _ := time.Parse(time.RFC3339, item.AddedAt)

	return analysis.PlaylistItem{
		Track: &analysis.RawTrack{
			ID:          t.ID.String(),
			Name:        t.Name,
			Artists:     artists,
			AlbumName:   t.Album.Name,
			ReleaseDate: t.Album.ReleaseDate,
			TrackNumber: int(t.TrackNumber),
			TotalTracks: int(t.Album.TotalTracks),
			ImageURL:    imageURL,
			Popularity:  int(t.Popularity),
			DurationMs:  int(t.Duration),
			Explicit:    t.Explicit,
		},
		AddedAt: addedAt,
	}
}
