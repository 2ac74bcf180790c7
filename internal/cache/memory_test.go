package cache

import (
	"context"
	"testing"
	"time"

	"github.com/avollmer/go-playlist-insights/internal/analysis"
)

func sampleResult() *analysis.Result {
	return &analysis.Result{
		Clusters: []analysis.Cluster{
			{ID: 1, Name: "All Tracks", Count: 3, Percentage: 100.0, TotalTracks: 3},
		},
		TotalTracks:     3,
		AnalyzedTracks:  3,
		OptimalClusters: 1,
		Method:          "simplified-analysis",
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, ok, err := m.Get(ctx, "p1", "variant"); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v, want miss", ok, err)
	}

	if err := m.Put(ctx, "p1", "variant", sampleResult()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := m.Get(ctx, "p1", "variant")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v, want hit", ok, err)
	}
	if got.Method != "simplified-analysis" || len(got.Clusters) != 1 {
		t.Errorf("got %+v, want the stored result back", got)
	}
	if got.Clusters[0].Name != "All Tracks" || got.Clusters[0].Percentage != 100.0 {
		t.Errorf("cluster = %+v, values lost in round trip", got.Clusters[0])
	}
}

func TestMemory_VariantsAreIndependent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Put(ctx, "p1", "a", sampleResult()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "p1", "b"); ok {
		t.Error("variant b hit on a row stored under variant a")
	}
	if _, ok, _ := m.Get(ctx, "p2", "a"); ok {
		t.Error("playlist p2 hit on a row stored under p1")
	}
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	current := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	if err := m.Put(ctx, "p1", "variant", sampleResult()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	current = current.Add(DefaultTTL - time.Minute)
	if _, ok, _ := m.Get(ctx, "p1", "variant"); !ok {
		t.Error("entry inside the TTL window reported as a miss")
	}

	current = current.Add(2 * time.Minute)
	if _, ok, _ := m.Get(ctx, "p1", "variant"); ok {
		t.Error("entry past the TTL window reported as a hit")
	}
}

func TestMemory_PutReplaces(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first := sampleResult()
	if err := m.Put(ctx, "p1", "variant", first); err != nil {
		t.Fatalf("Put: %v", err)
	}

	second := sampleResult()
	second.Method = "metadata-density"
	if err := m.Put(ctx, "p1", "variant", second); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := m.Get(ctx, "p1", "variant")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Method != "metadata-density" {
		t.Errorf("Method = %q, want the replacing entry", got.Method)
	}
}
