package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/avollmer/go-playlist-insights/internal/analysis"
)

// maxArtistsPerRequest is the Spotify API limit for the artists endpoint.
const maxArtistsPerRequest = 50

// Artists resolves artist metadata for the given ids. Calls are chunked to
// the API limit; ids the API does not know are absent from the result.
func (c *Client) Artists(ctx context.Context, ids []string) ([]analysis.ArtistInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	spotifyIDs := make([]spotify.ID, len(ids))
	for i, id := range ids {
		spotifyIDs[i] = spotify.ID(id)
	}

	var infos []analysis.ArtistInfo
	for i := 0; i < len(spotifyIDs); i += maxArtistsPerRequest {
		end := min(i+maxArtistsPerRequest, len(spotifyIDs))
		batch := spotifyIDs[i:end]

		artists, err := c.api.GetArtists(ctx, batch...)
		if err != nil {
			return nil, fmt.Errorf("fetching artists (batch %d-%d): %w", i+1, end, err)
		}
		for _, a := range artists {
			if a == nil {
				continue
			}
			infos = append(infos, convertArtist(a))
		}
	}
	return infos, nil
}

func convertArtist(a *spotify.FullArtist) analysis.ArtistInfo {
	return analysis.ArtistInfo{
		ID:         a.ID.String(),
		Name:       a.Name,
		Genres:     a.Genres,
		Popularity: int(a.Popularity),
		Followers:  int(a.Followers.Count),
	}
}
