package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Point is one 2D embedding coordinate.
type Point struct {
	X float64
	Y float64
}

// Embedding is the 2D projection of the feature matrix, one point per track
// in the same order as the matrix rows.
type Embedding struct {
	Points []Point
	Method string // "neighborhood" or "pca"
}

const (
	// Below this sample count the neighborhood method is statistically
	// unstable; the linear projection is used directly.
	minSamplesForNeighborhood = 10

	embedSeed       = 42
	embedIterations = 200
)

// Embed projects the feature matrix into two dimensions. The matrix is
// standardized per column first. Small datasets use a linear
// variance-maximizing projection; larger ones use a kNN neighborhood
// embedding whose parameters scale with sample count. Any failure of the
// neighborhood method falls back to the linear projection: a recovered,
// logged condition, never an error.
func Embed(m *FeatureMatrix, logger *zap.Logger) *Embedding {
	scaled := standardizeAll(m.Rows)
	n := len(scaled)

	if n < minSamplesForNeighborhood {
		logger.Debug("dataset too small for neighborhood embedding, using linear projection",
			zap.Int("samples", n))
		return &Embedding{Points: projectPCA(scaled), Method: "pca"}
	}

	neighbors, minDist := neighborhoodParams(n)
	points, err := neighborhoodEmbed(scaled, neighbors, minDist)
	if err != nil {
		logger.Warn("neighborhood embedding failed, falling back to linear projection",
			zap.Error(err))
		return &Embedding{Points: projectPCA(scaled), Method: "pca"}
	}

	return &Embedding{Points: points, Method: "neighborhood"}
}

// neighborhoodParams picks the neighbor count and minimum distance for the
// embedding: fewer neighbors and tighter packing for small playlists, a
// fixed neighborhood for large ones.
func neighborhoodParams(n int) (neighbors int, minDist float64) {
	switch {
	case n < 50:
		return max(3, n/2), 0.1
	case n < 200:
		return max(5, n/10), 0.1
	default:
		return 15, 0.1
	}
}

// standardizeAll z-scores every column, leaving zero-variance columns at a
// constant 0. Returns a fresh matrix; the input is not mutated.
func standardizeAll(rows [][]float64) [][]float64 {
	n := len(rows)
	if n == 0 {
		return nil
	}
	dim := len(rows[0])
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, dim)
	}

	col := make([]float64, n)
	for j := 0; j < dim; j++ {
		for i := range rows {
			col[i] = rows[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			continue // column stays 0
		}
		for i := range rows {
			out[i][j] = (rows[i][j] - mean) / std
		}
	}
	return out
}

// projectPCA projects onto the two leading principal components via SVD of
// the mean-centered matrix. Degenerate inputs degrade to zero coordinates
// rather than failing.
func projectPCA(rows [][]float64) []Point {
	n := len(rows)
	points := make([]Point, n)
	if n == 0 {
		return points
	}
	dim := len(rows[0])

	data := make([]float64, 0, n*dim)
	for _, row := range rows {
		data = append(data, row...)
	}
	X := mat.NewDense(n, dim, data)

	// Center columns.
	colBuf := make([]float64, n)
	for j := 0; j < dim; j++ {
		mat.Col(colBuf, j, X)
		mean := stat.Mean(colBuf, nil)
		for i := 0; i < n; i++ {
			X.Set(i, j, X.At(i, j)-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(X, mat.SVDThin); !ok {
		return points
	}

	var vt mat.Dense
	svd.VTo(&vt)

	components := min(2, dim)
	for i := 0; i < n; i++ {
		coords := [2]float64{}
		for c := 0; c < components; c++ {
			sum := 0.0
			for j := 0; j < dim; j++ {
				sum += X.At(i, j) * vt.At(j, c)
			}
			coords[c] = sum
		}
		points[i] = Point{X: coords[0], Y: coords[1]}
	}
	return points
}

// neighborhoodEmbed lays the points out in 2D by iteratively pulling
// k-nearest neighbors together and pushing sampled non-neighbors apart,
// starting from the linear projection. Deterministic for a given input.
func neighborhoodEmbed(rows [][]float64, neighbors int, minDist float64) ([]Point, error) {
	n := len(rows)
	if neighbors >= n {
		neighbors = n - 1
	}
	if neighbors < 1 {
		return nil, fmt.Errorf("not enough samples for %d neighbors", neighbors)
	}

	knn := nearestNeighbors(rows, neighbors)

	points := projectPCA(rows)
	if degenerate(points) {
		return nil, fmt.Errorf("degenerate initialization")
	}

	// Scale the initialization so the layout starts compact.
	rescale(points, 10.0)

	rng := rand.New(rand.NewSource(embedSeed))
	for iter := 0; iter < embedIterations; iter++ {
		// Learning rate decays linearly to zero.
		alpha := 1.0 - float64(iter)/float64(embedIterations)

		for i := 0; i < n; i++ {
			// Attraction along kNN edges.
			for _, j := range knn[i] {
				dx := points[j].X - points[i].X
				dy := points[j].Y - points[i].Y
				dist := math.Hypot(dx, dy)
				if dist <= minDist {
					continue
				}
				pull := alpha * 0.1 * (dist - minDist) / dist
				points[i].X += pull * dx
				points[i].Y += pull * dy
			}

			// Repulsion from a few random non-neighbors.
			for s := 0; s < 2; s++ {
				j := rng.Intn(n)
				if j == i || contains(knn[i], j) {
					continue
				}
				dx := points[i].X - points[j].X
				dy := points[i].Y - points[j].Y
				dist := math.Hypot(dx, dy)
				if dist < 1e-9 {
					// Coincident points; nudge deterministically.
					points[i].X += alpha * 0.01
					continue
				}
				push := alpha * 0.04 / (1.0 + dist*dist)
				points[i].X += push * dx / dist
				points[i].Y += push * dy / dist
			}
		}
	}

	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil, fmt.Errorf("embedding produced non-finite coordinates")
		}
	}
	return points, nil
}

// nearestNeighbors returns the k nearest neighbor indexes per row under
// euclidean distance in feature space.
func nearestNeighbors(rows [][]float64, k int) [][]int {
	n := len(rows)
	knn := make([][]int, n)

	type distIdx struct {
		dist float64
		idx  int
	}
	buf := make([]distIdx, 0, n-1)

	for i := 0; i < n; i++ {
		buf = buf[:0]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			buf = append(buf, distIdx{dist: euclidean(rows[i], rows[j]), idx: j})
		}
		sort.Slice(buf, func(a, b int) bool { return buf[a].dist < buf[b].dist })
		ids := make([]int, k)
		for c := 0; c < k; c++ {
			ids[c] = buf[c].idx
		}
		knn[i] = ids
	}
	return knn
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func degenerate(points []Point) bool {
	for _, p := range points {
		if p.X != 0 || p.Y != 0 {
			return false
		}
	}
	return true
}

// rescale normalizes coordinates so the largest absolute value is extent.
func rescale(points []Point, extent float64) {
	maxAbs := 0.0
	for _, p := range points {
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	if maxAbs == 0 {
		return
	}
	f := extent / maxAbs
	for i := range points {
		points[i].X *= f
		points[i].Y *= f
	}
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
