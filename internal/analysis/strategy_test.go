package analysis

import (
	"testing"

	"go.uber.org/zap"
)

// twoBlobs returns n points split between two well-separated groups.
func twoBlobs(n int) []Point {
	points := make([]Point, n)
	for i := range points {
		if i%2 == 0 {
			points[i] = Point{X: float64(i%5) * 0.1, Y: float64(i%3) * 0.1}
		} else {
			points[i] = Point{X: 100 + float64(i%5)*0.1, Y: 100 + float64(i%3)*0.1}
		}
	}
	return points
}

func TestSelectClusters_TinyInputSingleCluster(t *testing.T) {
	points := []Point{{1, 1}, {2, 2}, {3, 3}}
	c := SelectClusters(points, DefaultSelectorConfig(), zap.NewNop())

	if c.Method != "single-cluster" {
		t.Errorf("method = %q, want single-cluster", c.Method)
	}
	if len(c.Labels) != 3 {
		t.Fatalf("got %d labels, want 3", len(c.Labels))
	}
	for i, l := range c.Labels {
		if l != 0 {
			t.Errorf("label[%d] = %d, want 0", i, l)
		}
	}
}

func TestSelectClusters_CoverageAndDenseLabels(t *testing.T) {
	points := twoBlobs(40)
	c := SelectClusters(points, DefaultSelectorConfig(), zap.NewNop())

	if len(c.Labels) != len(points) {
		t.Fatalf("got %d labels for %d points", len(c.Labels), len(points))
	}
	seen := map[int]bool{}
	for i, l := range c.Labels {
		if l < 0 || l >= c.K {
			t.Errorf("label[%d] = %d outside [0,%d)", i, l, c.K)
		}
		seen[l] = true
	}
	for l := 0; l < c.K; l++ {
		if !seen[l] {
			t.Errorf("label %d unused: labels are not dense", l)
		}
	}
}

func TestSelectClusters_BalanceConstraint(t *testing.T) {
	points := twoBlobs(60)
	cfg := DefaultSelectorConfig()
	c := SelectClusters(points, cfg, zap.NewNop())

	if c.K > 1 {
		if share := largestShare(c.Labels, c.K); share > cfg.MaxClusterShare+1e-9 {
			t.Errorf("largest share %v exceeds limit %v", share, cfg.MaxClusterShare)
		}
	}
}

func TestRelabelDense(t *testing.T) {
	got := relabelDense([]int{5, 5, -1, 3, 5, -1})
	want := []int{0, 0, 1, 2, 0, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("relabelDense = %v, want %v", got, want)
		}
	}
}

func TestLargestShare(t *testing.T) {
	labels := []int{0, 0, 0, 1}
	if got := largestShare(labels, 2); got != 0.75 {
		t.Errorf("largestShare = %v, want 0.75", got)
	}
}
