// Command playlist-insights runs the playlist clustering web service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/avollmer/go-playlist-insights/internal/analysis"
	"github.com/avollmer/go-playlist-insights/internal/cache"
	"github.com/avollmer/go-playlist-insights/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	clientID := os.Getenv("SPOTIFY_ID")
	clientSecret := os.Getenv("SPOTIFY_SECRET")
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("please set SPOTIFY_ID and SPOTIFY_SECRET environment variables")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	var results analysis.ResultCache
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		store, err := cache.New(context.Background(), databaseURL)
		if err != nil {
			return fmt.Errorf("connecting result cache: %w", err)
		}
		defer store.Close()
		results = store
	} else {
		logger.Warn("DATABASE_URL not set, caching analyses in memory only")
		results = cache.NewMemory()
	}

	server := web.NewServer(web.ServerConfig{
		Addr:         os.Getenv("ADDR"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  os.Getenv("SPOTIFY_REDIRECT_URI"),
	}, results, logger)

	return server.Run()
}
