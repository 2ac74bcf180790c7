package analysis

import (
	"math/rand"
	"testing"
)

func TestEnforceBalance_SizeInvariant(t *testing.T) {
	tests := []struct {
		name string
		n    int
		k    int
	}{
		{"even split", 20, 4},
		{"with remainder", 23, 4},
		{"two clusters", 11, 2},
		{"five clusters", 17, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			points := make([]Point, tt.n)
			for i := range points {
				points[i] = Point{X: rng.Float64() * 10, Y: rng.Float64() * 10}
			}

			labels, err := EnforceBalance(points, tt.k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(labels) != tt.n {
				t.Fatalf("got %d labels, want %d", len(labels), tt.n)
			}

			counts := make([]int, tt.k)
			for i, l := range labels {
				if l < 0 || l >= tt.k {
					t.Fatalf("label[%d] = %d outside [0,%d)", i, l, tt.k)
				}
				counts[l]++
			}

			lo, hi := tt.n/tt.k, (tt.n+tt.k-1)/tt.k
			for c, count := range counts {
				if count != lo && count != hi {
					t.Errorf("cluster %d has %d points, want %d or %d", c, count, lo, hi)
				}
			}
		})
	}
}

func TestEnforceBalance_SingleCluster(t *testing.T) {
	points := []Point{{1, 1}, {2, 2}, {3, 3}}
	labels, err := EnforceBalance(points, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, l := range labels {
		if l != 0 {
			t.Errorf("label[%d] = %d, want 0", i, l)
		}
	}
}

func TestEnforceBalance_TooFewPoints(t *testing.T) {
	points := []Point{{1, 1}, {2, 2}}
	if _, err := EnforceBalance(points, 3); err == nil {
		t.Error("expected error for k > n")
	}
}

func TestBalancedStrategy_Name(t *testing.T) {
	if got := newBalancedStrategy(10).Name(); got != "balanced-clustering" {
		t.Errorf("name = %q, want balanced-clustering", got)
	}
}
