package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// ErrAnalysisFailed wraps hard pipeline failures after every fallback is
// exhausted.
var ErrAnalysisFailed = errors.New("playlist analysis failed")

// Variant is the cache key tag for this pipeline's results.
const Variant = "metadata-clustering"

const artistBatchSize = 50

// TrackSource supplies a playlist's fully materialized item list.
type TrackSource interface {
	PlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error)
}

// ArtistSource resolves artist metadata in batches of up to 50 ids.
type ArtistSource interface {
	Artists(ctx context.Context, ids []string) ([]ArtistInfo, error)
}

// ResultCache stores finished analyses keyed by playlist and variant. The
// implementation owns the freshness policy.
type ResultCache interface {
	Get(ctx context.Context, playlistID, variant string) (*Result, bool, error)
	Put(ctx context.Context, playlistID, variant string, result *Result) error
}

// Analyzer runs the full pipeline for one playlist at a time. It is safe
// for concurrent use; each call owns all of its intermediate state.
type Analyzer struct {
	tracks  TrackSource
	artists ArtistSource
	cache   ResultCache
	cfg     SelectorConfig
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSelectorConfig overrides the cluster-selection parameters.
func WithSelectorConfig(cfg SelectorConfig) Option {
	return func(a *Analyzer) { a.cfg = cfg }
}

// WithClock overrides the time source, used by tests for stable recency
// features.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer wires the pipeline to its collaborators. cache may be nil, in
// which case every call recomputes.
func NewAnalyzer(tracks TrackSource, artists ArtistSource, cache ResultCache, logger *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		tracks:  tracks,
		artists: artists,
		cache:   cache,
		cfg:     DefaultSelectorConfig(),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze clusters the playlist's tracks and assembles the result payload.
// name and description are the playlist's own metadata, mined for context
// themes. Set skipCache to bypass a fresh cached result.
func (a *Analyzer) Analyze(ctx context.Context, playlistID, name, description string, skipCache bool) (*Result, error) {
	if a.cache != nil && !skipCache {
		cached, ok, err := a.cache.Get(ctx, playlistID, Variant)
		if err != nil {
			a.logger.Warn("cache lookup failed", zap.String("playlist", playlistID), zap.Error(err))
		} else if ok {
			a.logger.Debug("serving cached analysis", zap.String("playlist", playlistID))
			return cached, nil
		}
	}

	items, err := a.tracks.PlaylistItems(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}

	result, err := a.analyzeItems(ctx, items, name, description)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if err := a.cache.Put(ctx, playlistID, Variant, result); err != nil {
			a.logger.Warn("cache write failed", zap.String("playlist", playlistID), zap.Error(err))
		}
	}
	return result, nil
}

func (a *Analyzer) analyzeItems(ctx context.Context, items []PlaylistItem, name, description string) (*Result, error) {
	now := a.now()

	matrix, tracks, err := BuildFeatures(items, nil, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	lookup := a.fetchArtists(ctx, tracks)
	if len(lookup) > 0 {
		// Rebuild with artist data now that the lookup is populated.
		matrix, tracks, err = BuildFeatures(items, lookup, now)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
		}
	}

	themes := ExtractContext(name, description)

	if len(tracks) < minSamplesForClustering {
		a.logger.Info("playlist too small for clustering, using simplified analysis",
			zap.Int("tracks", len(tracks)))
		return a.simplifiedResult(tracks, themes, lookup), nil
	}

	embedding := Embed(matrix, a.logger)
	clustering := SelectClusters(embedding.Points, a.cfg, a.logger)

	return a.assembleResult(tracks, embedding, clustering, themes, lookup), nil
}

// fetchArtists collects the unique artist ids across tracks and resolves
// them in batches. A failed batch is logged and skipped.
func (a *Analyzer) fetchArtists(ctx context.Context, tracks []Track) ArtistLookup {
	if a.artists == nil {
		return nil
	}

	seen := map[string]bool{}
	var ids []string
	for _, t := range tracks {
		if t.ArtistID != "" && !seen[t.ArtistID] {
			seen[t.ArtistID] = true
			ids = append(ids, t.ArtistID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	lookup := ArtistLookup{}
	for start := 0; start < len(ids); start += artistBatchSize {
		end := min(start+artistBatchSize, len(ids))
		infos, err := a.artists.Artists(ctx, ids[start:end])
		if err != nil {
			a.logger.Warn("artist batch fetch failed, continuing with partial data",
				zap.Int("batch_start", start), zap.Error(err))
			continue
		}
		for _, info := range infos {
			lookup[info.ID] = info
		}
	}
	return lookup
}

func (a *Analyzer) assembleResult(tracks []Track, embedding *Embedding, clustering *Clustering, themes ContextThemes, lookup ArtistLookup) *Result {
	k := clustering.K
	grouped := make([][]Track, k)
	for i, label := range clustering.Labels {
		grouped[label] = append(grouped[label], tracks[i])
	}

	profiles := make([]AudioProfile, k)
	distributions := make([]GenreDistribution, k)
	for c := range grouped {
		distributions[c] = NewGenreDistribution(grouped[c], lookup)
		profiles[c] = SynthesizeProfile(grouped[c], distributions[c], themes)
	}

	names := NameClusters(grouped, profiles, distributions, themes)

	result := &Result{
		Clusters:        make([]Cluster, k),
		TotalTracks:     len(tracks),
		AnalyzedTracks:  len(tracks),
		OptimalClusters: k,
		Method:          clustering.Method,
	}
	for c := range grouped {
		result.Clusters[c] = Cluster{
			ID:           c + 1,
			Name:         names[c],
			Count:        len(grouped[c]),
			Percentage:   roundPercentage(len(grouped[c]), len(tracks)),
			Tracks:       summarizeTracks(grouped[c], sampleTrackLimit),
			TotalTracks:  len(grouped[c]),
			AudioProfile: profiles[c],
		}
	}

	coords := make([]Coordinate, len(tracks))
	for i, t := range tracks {
		coords[i] = Coordinate{
			X:         embedding.Points[i].X,
			Y:         embedding.Points[i].Y,
			TrackID:   t.ID,
			TrackName: t.Name,
			Artist:    t.PrimaryArtist,
			Cluster:   clustering.Labels[i] + 1,
		}
	}
	result.Visualization = &Visualization{Type: embedding.Method, Coordinates: coords}

	genreInsights := make(map[int][]GenreCount, k)
	for c := range distributions {
		genreInsights[c] = distributions[c].Top(5)
	}
	result.AdditionalInsights = &Insights{
		ContextThemes:            themes,
		ClusterGenreDistribution: genreInsights,
		PlaylistYearSpan:         playlistYearSpan(tracks),
	}
	return result
}

// simplifiedResult handles playlists too small to cluster: up to three
// tracks form a single group, four are split around the median release year
// when any year parses. Each group's profile starts from the style base
// matching its character.
func (a *Analyzer) simplifiedResult(tracks []Track, themes ContextThemes, lookup ArtistLookup) *Result {
	result := &Result{
		TotalTracks:    len(tracks),
		AnalyzedTracks: len(tracks),
		Method:         "simplified-analysis",
	}

	var groups [][]Track
	var names []string
	var styles []string

	years := releaseYears(tracks)
	if len(tracks) == 4 && len(years) > 0 {
		recent, older := splitByYearMedian(tracks)
		if len(recent) > 0 && len(older) > 0 {
			groups = [][]Track{recent, older}
			names = []string{"Recent Tracks", "Older Tracks"}
			styles = []string{"recent", olderGroupStyle(older)}
		}
	}
	if groups == nil {
		groups = [][]Track{tracks}
		names = []string{"All Tracks"}
		styles = []string{"default"}
	}

	result.OptimalClusters = len(groups)
	for c, group := range groups {
		dist := NewGenreDistribution(group, lookup)
		result.Clusters = append(result.Clusters, Cluster{
			ID:           c + 1,
			Name:         names[c],
			Count:        len(group),
			Percentage:   roundPercentage(len(group), len(tracks)),
			Tracks:       summarizeTracks(group, sampleTrackLimit),
			TotalTracks:  len(group),
			AudioProfile: SynthesizeStyledProfile(styles[c], group, dist, themes),
		})
	}

	result.AdditionalInsights = &Insights{
		ContextThemes:            themes,
		ClusterGenreDistribution: map[int][]GenreCount{},
		PlaylistYearSpan:         playlistYearSpan(tracks),
	}
	return result
}

// olderGroupStyle picks the decade style matching the older half's mean
// release year.
func olderGroupStyle(tracks []Track) string {
	years := releaseYears(tracks)
	if len(years) == 0 {
		return "default"
	}
	return decadeStyle(averageYear(years))
}

// splitByYearMedian partitions tracks into newer-or-equal and older halves
// around the median parseable year. Tracks without a year go to the older
// half.
func splitByYearMedian(tracks []Track) (recent, older []Track) {
	years := releaseYears(tracks)
	sorted := append([]int(nil), years...)
	sort.Ints(sorted)
	med := sorted[len(sorted)/2]

	for _, t := range tracks {
		if y, ok := t.ReleaseYear(); ok && y >= med {
			recent = append(recent, t)
		} else {
			older = append(older, t)
		}
	}
	return recent, older
}
