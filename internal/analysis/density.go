package analysis

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// densityStrategy clusters the embedding by local density, in the spirit of
// hierarchical density-based clustering: parameters adapt to dataset size,
// the neighborhood radius adapts to the observed point density, and noise
// points are reassigned to their nearest cluster afterwards. Degenerate
// results (mostly noise, or far too many groups) are reported as errors so
// the selection policy can fall through to the mixture model.
type densityStrategy struct {
	minClusterSize int
	minSamples     int
	maxClusters    int
}

func newDensityStrategy(n int) *densityStrategy {
	s := &densityStrategy{maxClusters: maxClustersFor(n)}
	switch {
	case n < 20:
		s.minClusterSize, s.minSamples = 2, 1
	case n < 50:
		s.minClusterSize, s.minSamples = 3, 2
	case n < 100:
		s.minClusterSize, s.minSamples = 5, 3
	default:
		s.minClusterSize, s.minSamples = 10, 5
	}
	return s
}

// maxClustersFor derives the largest acceptable group count from the sample
// count.
func maxClustersFor(n int) int {
	return max(2, min(n/5, 10))
}

func (s *densityStrategy) Name() string { return "metadata-density" }

// Noise label used internally before reassignment.
const noiseLabel = -1

var (
	errTooMuchNoise    = errors.New("density clustering left too many points unlabeled")
	errTooManyGroups   = errors.New("density clustering produced too many groups")
	errEverythingNoise = errors.New("density clustering labeled every point as noise")
)

func (s *densityStrategy) Fit(points []Point) ([]int, error) {
	n := len(points)

	// Estimate local density as the mean distance to each point's k nearest
	// neighbors; the radius and extraction mode follow from it.
	k := min(5, n-1)
	avgKnn := meanKNNDistance(points, k)

	var radiusFactor float64
	var leafMode bool
	switch {
	case avgKnn < 0.5:
		radiusFactor, leafMode = 1.0, false // dense: tight radius, keep big groups
	case avgKnn < 1.0:
		radiusFactor, leafMode = 1.2, false
	default:
		radiusFactor, leafMode = 1.5, true // sparse: loose radius, keep leaf groups
	}

	eps := avgKnn * radiusFactor
	labels := scanDensity(points, eps, s.minSamples, s.minClusterSize, leafMode)

	noise := countNoise(labels)
	groups := countRealClusters(labels)

	if noise == n {
		// One retry with relaxed parameters before giving up.
		labels = scanDensity(points, eps*2.5, 1, 2, true)
		if countNoise(labels) == n {
			return nil, errEverythingNoise
		}
		noise = countNoise(labels)
		groups = countRealClusters(labels)
	}

	if float64(noise)/float64(n) > 0.4 {
		return nil, errTooMuchNoise
	}
	if groups > s.maxClusters {
		return nil, errTooManyGroups
	}

	reassignNoise(points, labels)
	return labels, nil
}

// meanKNNDistance averages, over all points, the mean distance to the k
// nearest neighbors.
func meanKNNDistance(points []Point, k int) float64 {
	n := len(points)
	if k < 1 {
		return 0
	}
	dists := make([]float64, 0, n-1)
	total := 0.0
	for i := 0; i < n; i++ {
		dists = dists[:0]
		for j := 0; j < n; j++ {
			if j != i {
				dists = append(dists, pointDist(points[i], points[j]))
			}
		}
		sort.Float64s(dists)
		total += floats.Sum(dists[:k]) / float64(k)
	}
	return total / float64(n)
}

// scanDensity is a classic region-growing density scan: points with at least
// minSamples neighbors within eps seed clusters that expand through other
// core points. Groups below minClusterSize dissolve back to noise unless
// leaf mode keeps any group of two or more.
func scanDensity(points []Point, eps float64, minSamples, minClusterSize int, leafMode bool) []int {
	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = noiseLabel
	}

	neighborhoods := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && pointDist(points[i], points[j]) <= eps {
				neighborhoods[i] = append(neighborhoods[i], j)
			}
		}
	}

	next := 0
	for i := 0; i < n; i++ {
		if labels[i] != noiseLabel || len(neighborhoods[i]) < minSamples {
			continue
		}
		// Grow a new cluster from this core point.
		labels[i] = next
		queue := append([]int(nil), neighborhoods[i]...)
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			if labels[p] != noiseLabel {
				continue
			}
			labels[p] = next
			if len(neighborhoods[p]) >= minSamples {
				queue = append(queue, neighborhoods[p]...)
			}
		}
		next++
	}

	// Dissolve undersized groups.
	keepAtLeast := minClusterSize
	if leafMode {
		keepAtLeast = 2
	}
	counts := make(map[int]int)
	for _, l := range labels {
		if l != noiseLabel {
			counts[l]++
		}
	}
	for i, l := range labels {
		if l != noiseLabel && counts[l] < keepAtLeast {
			labels[i] = noiseLabel
		}
	}

	return labels
}

// reassignNoise moves unlabeled points into the cluster with the nearest
// centroid. When no real cluster exists at all they are forced into
// cluster 0.
func reassignNoise(points []Point, labels []int) {
	centroids := clusterCentroids(points, labels)
	for i, l := range labels {
		if l != noiseLabel {
			continue
		}
		if len(centroids) == 0 {
			labels[i] = 0
			continue
		}
		best, bestDist := 0, math.Inf(1)
		for label, c := range centroids {
			if d := pointDist(points[i], c); d < bestDist {
				best, bestDist = label, d
			}
		}
		labels[i] = best
	}
}

// clusterCentroids computes the mean point of every real (non-noise)
// cluster.
func clusterCentroids(points []Point, labels []int) map[int]Point {
	sums := make(map[int]Point)
	counts := make(map[int]int)
	for i, l := range labels {
		if l == noiseLabel {
			continue
		}
		p := sums[l]
		p.X += points[i].X
		p.Y += points[i].Y
		sums[l] = p
		counts[l]++
	}
	centroids := make(map[int]Point, len(sums))
	for l, sum := range sums {
		centroids[l] = Point{X: sum.X / float64(counts[l]), Y: sum.Y / float64(counts[l])}
	}
	return centroids
}

func countNoise(labels []int) int {
	n := 0
	for _, l := range labels {
		if l == noiseLabel {
			n++
		}
	}
	return n
}

func countRealClusters(labels []int) int {
	seen := make(map[int]bool)
	for _, l := range labels {
		if l != noiseLabel {
			seen[l] = true
		}
	}
	return len(seen)
}

func pointDist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
