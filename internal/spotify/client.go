// Package spotify adapts the Spotify Web API to the analysis pipeline's
// collaborator interfaces.
package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/avollmer/go-playlist-insights/internal/analysis"
)

// Client wraps an authenticated Spotify API client.
type Client struct {
	api *spotify.Client
}

// New creates a client wrapper. The underlying client must already carry
// user credentials.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, nil
}

// PlaylistMeta is a playlist's own name and description, mined downstream
// for context themes.
type PlaylistMeta struct {
	ID          string
	Name        string
	Description string
}

// Playlist fetches a playlist's metadata without its tracks.
func (c *Client) Playlist(ctx context.Context, playlistID string) (PlaylistMeta, error) {
	p, err := c.api.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return PlaylistMeta{}, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}
	return PlaylistMeta{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
	}, nil
}

// The analyzer consumes the client through these two interfaces.
var (
	_ analysis.TrackSource  = (*Client)(nil)
	_ analysis.ArtistSource = (*Client)(nil)
)
