package analysis

import (
	"errors"
	"sort"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// balancedStrategy partitions the embedding with k-means and then rebalances
// the assignment so every cluster holds a near-equal share of tracks. It is
// the last automatic strategy before falling back to a single cluster.
type balancedStrategy struct {
	k int
}

func newBalancedStrategy(n int) *balancedStrategy {
	return &balancedStrategy{k: max(2, min(n/2, 5))}
}

func (s *balancedStrategy) Name() string { return "balanced-clustering" }

func (s *balancedStrategy) Fit(points []Point) ([]int, error) {
	return EnforceBalance(points, s.k)
}

var errBalanceInfeasible = errors.New("not enough points to balance across clusters")

// pointObservation wraps an embedded point to implement clusters.Observation,
// carrying its original index through the partition.
type pointObservation struct {
	index  int
	coords clusters.Coordinates
}

func (o pointObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o pointObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// EnforceBalance assigns points to k clusters with sizes differing by at most
// one. Centroids come from k-means; points are then greedily assigned in
// order of how close they sit to their nearest centroid, falling back to the
// next-nearest cluster with spare capacity.
func EnforceBalance(points []Point, k int) ([]int, error) {
	n := len(points)
	if k < 1 || n < k {
		return nil, errBalanceInfeasible
	}
	if k == 1 {
		return make([]int, n), nil
	}

	centroids, err := kmeansCentroids(points, k)
	if err != nil {
		return nil, err
	}

	// Target sizes: n/k each, remainder spread over the first clusters.
	capacity := make([]int, k)
	base, extra := n/k, n%k
	for c := range capacity {
		capacity[c] = base
		if c < extra {
			capacity[c]++
		}
	}

	// Rank clusters per point by centroid distance, then assign points in
	// order of confidence so well-separated points claim their cluster first.
	type candidate struct {
		point   int
		ranked  []int
		nearest float64
	}
	cands := make([]candidate, n)
	for i, p := range points {
		ranked := make([]int, k)
		for c := range ranked {
			ranked[c] = c
		}
		sort.Slice(ranked, func(a, b int) bool {
			return pointDist(p, centroids[ranked[a]]) < pointDist(p, centroids[ranked[b]])
		})
		cands[i] = candidate{point: i, ranked: ranked, nearest: pointDist(p, centroids[ranked[0]])}
	}
	sort.Slice(cands, func(a, b int) bool { return cands[a].nearest < cands[b].nearest })

	labels := make([]int, n)
	for _, cand := range cands {
		assigned := -1
		for _, c := range cand.ranked {
			if capacity[c] > 0 {
				assigned = c
				break
			}
		}
		if assigned == -1 {
			// Capacities sum to n, so this cannot happen for a valid input.
			return nil, errBalanceInfeasible
		}
		capacity[assigned]--
		labels[cand.point] = assigned
	}
	return labels, nil
}

// kmeansCentroids partitions the points and returns one centroid per cluster.
func kmeansCentroids(points []Point, k int) ([]Point, error) {
	var obs clusters.Observations
	for i, p := range points {
		obs = append(obs, pointObservation{
			index:  i,
			coords: clusters.Coordinates{p.X, p.Y},
		})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, k)
	if err != nil {
		return nil, err
	}
	if len(result) != k {
		return nil, errBalanceInfeasible
	}

	centroids := make([]Point, k)
	for c, cluster := range result {
		center := cluster.Center
		centroids[c] = Point{X: center[0], Y: center[1]}
	}
	return centroids, nil
}
