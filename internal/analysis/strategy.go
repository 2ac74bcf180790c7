package analysis

import (
	"errors"

	"go.uber.org/zap"
)

var errLabelMismatch = errors.New("strategy returned wrong label count")

// ClusterStrategy partitions 2D points into groups. Implementations return
// an error when they cannot produce a usable partition; the selection policy
// then falls through to the next strategy.
type ClusterStrategy interface {
	// Name is the method tag reported in analysis results.
	Name() string
	// Fit returns one label per input point. Labels need not be dense;
	// the caller relabels.
	Fit(points []Point) ([]int, error)
}

// SelectorConfig tunes the cluster selection policy.
type SelectorConfig struct {
	// MaxClusterShare is the largest fraction of all points a single
	// cluster may hold before balance enforcement kicks in. The historical
	// implementations disagreed between 0.4 and 0.6; the default splits
	// the difference.
	MaxClusterShare float64
}

// DefaultSelectorConfig returns the recommended configuration.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{MaxClusterShare: 0.5}
}

// Clustering is a dense labeling of the input points.
type Clustering struct {
	Labels []int
	K      int
	Method string
}

// Clustering below this many points is not meaningful; everything becomes a
// single cluster.
const minSamplesForClustering = 5

// SelectClusters picks a partition of the points by trying each candidate
// strategy in order: density-based first, then the mixture model, then
// balanced k-means. Every attempt is wrapped; a failing strategy is a logged
// warning, never a propagated error, and the chain always terminates with a
// valid dense labeling.
func SelectClusters(points []Point, cfg SelectorConfig, logger *zap.Logger) *Clustering {
	n := len(points)
	if n < minSamplesForClustering {
		logger.Debug("too few points for clustering, using single cluster", zap.Int("samples", n))
		return &Clustering{Labels: make([]int, n), K: min(n, 1), Method: "single-cluster"}
	}

	strategies := []ClusterStrategy{
		newDensityStrategy(n),
		newMixtureStrategy(n),
		newBalancedStrategy(n),
	}

	for _, strategy := range strategies {
		labels, err := fitSafely(strategy, points)
		if err != nil {
			logger.Warn("clustering strategy failed, falling through",
				zap.String("strategy", strategy.Name()), zap.Error(err))
			continue
		}

		labels = relabelDense(labels)
		k := countLabels(labels)

		// Balance constraint: no single cluster may dominate.
		if share := largestShare(labels, k); k > 1 && share > cfg.MaxClusterShare {
			logger.Warn("clustering is unbalanced, enforcing balanced assignment",
				zap.String("strategy", strategy.Name()),
				zap.Float64("largest_share", share))
			balanced, err := EnforceBalance(points, k)
			if err != nil {
				logger.Warn("balance enforcement failed", zap.Error(err))
				continue
			}
			labels = balanced
			k = countLabels(labels)
		}

		return &Clustering{Labels: labels, K: k, Method: strategy.Name()}
	}

	logger.Warn("every clustering strategy failed, using single cluster")
	return &Clustering{Labels: make([]int, n), K: 1, Method: "single-cluster"}
}

// fitSafely runs a strategy and validates its output shape.
func fitSafely(s ClusterStrategy, points []Point) (labels []int, err error) {
	labels, err = s.Fit(points)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(points) {
		return nil, errLabelMismatch
	}
	return labels, nil
}

// relabelDense maps arbitrary labels to consecutive integers starting at 0,
// preserving first-appearance order.
func relabelDense(labels []int) []int {
	mapping := make(map[int]int)
	out := make([]int, len(labels))
	next := 0
	for i, l := range labels {
		dense, ok := mapping[l]
		if !ok {
			dense = next
			mapping[l] = dense
			next++
		}
		out[i] = dense
	}
	return out
}

func countLabels(labels []int) int {
	seen := make(map[int]bool)
	for _, l := range labels {
		seen[l] = true
	}
	return len(seen)
}

// largestShare returns the fraction of points held by the biggest cluster.
func largestShare(labels []int, k int) float64 {
	if len(labels) == 0 || k == 0 {
		return 0
	}
	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}
	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	return float64(maxCount) / float64(len(labels))
}
