package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/avollmer/go-playlist-insights/internal/analysis"
)

type memoryEntry struct {
	payload   []byte
	fetchedAt time.Time
}

// Memory is an in-process result cache for tests and deployments without a
// database. Entries round-trip through JSON so both stores serve identical
// payloads.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory cache with the default TTL.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
}

func cacheKey(playlistID, variant string) string {
	return playlistID + "\x00" + variant
}

// Get returns the stored result, reporting expired entries as misses.
func (m *Memory) Get(_ context.Context, playlistID, variant string) (*analysis.Result, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[cacheKey(playlistID, variant)]
	m.mu.RUnlock()

	if !ok || m.now().Sub(entry.fetchedAt) > m.ttl {
		return nil, false, nil
	}

	var result analysis.Result
	if err := json.Unmarshal(entry.payload, &result); err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

// Put stores a result, replacing any previous entry.
func (m *Memory) Put(_ context.Context, playlistID, variant string, result *analysis.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.entries[cacheKey(playlistID, variant)] = memoryEntry{payload: payload, fetchedAt: m.now()}
	m.mu.Unlock()
	return nil
}

var _ analysis.ResultCache = (*Memory)(nil)
