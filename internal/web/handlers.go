package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"

	"github.com/avollmer/go-playlist-insights/internal/analysis"
	"github.com/avollmer/go-playlist-insights/internal/spotify"
)

// Handlers contains the HTTP handlers for the service.
type Handlers struct {
	auth     *spotifyauth.Authenticator
	sessions *SessionStore
	cache    analysis.ResultCache
	logger   *zap.Logger
}

// NewHandlers creates a Handlers instance. cache may be nil to disable
// result caching.
func NewHandlers(auth *spotifyauth.Authenticator, sessions *SessionStore, cache analysis.ResultCache, logger *zap.Logger) *Handlers {
	return &Handlers{
		auth:     auth,
		sessions: sessions,
		cache:    cache,
		logger:   logger,
	}
}

// errorResponse is the JSON shape of every error the API returns.
type errorResponse struct {
	Error   string `json:"error"`
	Context string `json:"context"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, context string) {
	writeJSON(w, status, errorResponse{Error: message, Context: context})
}

// Health reports service liveness (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Home reports the caller's session state (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          map[string]string{"id": session.UserID, "name": session.UserName},
	})
}

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate state", "oauth login")
		return
	}

	// State round-trips through a short-lived cookie for CSRF validation.
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing state cookie", "oauth callback")
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		writeError(w, http.StatusBadRequest, "state mismatch", "oauth callback")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		writeError(w, http.StatusBadRequest, "spotify auth error: "+errMsg, "oauth callback")
		return
	}

	token, err := h.auth.Token(r.Context(), state, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to exchange token", "oauth callback")
		return
	}

	client := spotifyapi.New(h.auth.Client(r.Context(), token))
	user, err := client.CurrentUser(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to get user info", "oauth callback")
		return
	}

	session := h.sessions.Create(token, string(user.ID), user.DisplayName)
	h.sessions.SetCookie(w, session)
	h.logger.Info("user logged in", zap.String("user", session.UserID))

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout clears the session (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetFromRequest(r); session != nil {
		h.sessions.Delete(session.ID)
	}

	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// PlaylistAnalysis runs or serves the clustering analysis for one playlist
// (GET /api/playlists/{id}/analysis). refresh=1 bypasses the cache.
func (h *Handlers) PlaylistAnalysis(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated", "playlist analysis")
		return
	}

	playlistID := chi.URLParam(r, "id")
	if playlistID == "" {
		writeError(w, http.StatusBadRequest, "missing playlist id", "playlist analysis")
		return
	}
	skipCache := r.URL.Query().Get("refresh") == "1"

	client := spotify.New(spotifyapi.New(h.auth.Client(r.Context(), session.Token)))

	meta, err := client.Playlist(r.Context(), playlistID)
	if err != nil {
		h.logger.Warn("playlist metadata fetch failed",
			zap.String("playlist", playlistID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to fetch playlist", "playlist analysis")
		return
	}

	analyzer := analysis.NewAnalyzer(client, client, h.cache, h.logger)
	result, err := analyzer.Analyze(r.Context(), playlistID, meta.Name, meta.Description, skipCache)
	if err != nil {
		h.logger.Error("analysis failed",
			zap.String("playlist", playlistID), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "playlist analysis")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
