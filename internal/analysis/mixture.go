package analysis

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// mixtureStrategy fits full-covariance 2D Gaussian mixtures for a range of
// component counts and keeps the count minimizing the Bayesian Information
// Criterion. It is the fallback when density-based clustering degenerates.
type mixtureStrategy struct {
	maxComponents int
}

func newMixtureStrategy(n int) *mixtureStrategy {
	return &mixtureStrategy{maxComponents: maxClustersFor(n)}
}

func (s *mixtureStrategy) Name() string { return "metadata-mixture" }

const (
	emIterations = 100
	emRestarts   = 3
	emTolerance  = 1e-6
	emSeed       = 42
	// Diagonal regularization keeps near-singular covariances invertible.
	covarianceFloor = 1e-6
)

var errMixtureDegenerate = errors.New("mixture model failed to converge on any component count")

func (s *mixtureStrategy) Fit(points []Point) ([]int, error) {
	n := len(points)

	minComponents := min(2, n-1)
	maxComponents := min(s.maxComponents, n-1)
	if minComponents < 1 {
		return nil, errMixtureDegenerate
	}

	// BIC search over candidate component counts; failed fits score +Inf
	// and ties or total failure default to the smallest candidate.
	bestComponents := minComponents
	bestBIC := math.Inf(1)
	for k := minComponents; k <= maxComponents; k++ {
		model, err := fitMixture(points, k)
		if err != nil {
			continue
		}
		if bic := model.bic(points); bic < bestBIC {
			bestBIC = bic
			bestComponents = k
		}
	}

	model, err := fitMixture(points, bestComponents)
	if err != nil {
		return nil, errMixtureDegenerate
	}
	return model.assign(points), nil
}

// gaussianMixture is a fitted full-covariance 2D mixture.
type gaussianMixture struct {
	weights []float64
	means   []Point
	covs    []*mat.SymDense // 2x2 per component
	logL    float64
}

// fitMixture runs expectation-maximization with a few deterministic
// restarts, keeping the best log-likelihood.
func fitMixture(points []Point, k int) (*gaussianMixture, error) {
	var best *gaussianMixture
	for restart := 0; restart < emRestarts; restart++ {
		rng := rand.New(rand.NewSource(emSeed + int64(restart)))
		model, err := emFit(points, k, rng)
		if err != nil {
			continue
		}
		if best == nil || model.logL > best.logL {
			best = model
		}
	}
	if best == nil {
		return nil, errMixtureDegenerate
	}
	return best, nil
}

func emFit(points []Point, k int, rng *rand.Rand) (*gaussianMixture, error) {
	n := len(points)

	model := &gaussianMixture{
		weights: make([]float64, k),
		means:   make([]Point, k),
		covs:    make([]*mat.SymDense, k),
	}

	// Initialize means on distinct random points, covariances on the global
	// spread.
	perm := rng.Perm(n)
	globalCov := globalCovariance(points)
	for c := 0; c < k; c++ {
		model.weights[c] = 1.0 / float64(k)
		model.means[c] = points[perm[c%n]]
		model.covs[c] = mat.NewSymDense(2, nil)
		model.covs[c].CopySym(globalCov)
	}

	resp := make([][]float64, n)
	for i := range resp {
		resp[i] = make([]float64, k)
	}

	prevLogL := math.Inf(-1)
	for iter := 0; iter < emIterations; iter++ {
		// E step.
		logL := 0.0
		for i, p := range points {
			total := 0.0
			for c := 0; c < k; c++ {
				d := model.weights[c] * gaussianDensity(p, model.means[c], model.covs[c])
				resp[i][c] = d
				total += d
			}
			if total <= 0 || math.IsNaN(total) {
				return nil, errMixtureDegenerate
			}
			for c := 0; c < k; c++ {
				resp[i][c] /= total
			}
			logL += math.Log(total)
		}

		// M step.
		for c := 0; c < k; c++ {
			sumResp := 0.0
			var mx, my float64
			for i, p := range points {
				sumResp += resp[i][c]
				mx += resp[i][c] * p.X
				my += resp[i][c] * p.Y
			}
			if sumResp < 1e-12 {
				return nil, errMixtureDegenerate
			}
			model.weights[c] = sumResp / float64(n)
			model.means[c] = Point{X: mx / sumResp, Y: my / sumResp}

			var cxx, cxy, cyy float64
			for i, p := range points {
				dx := p.X - model.means[c].X
				dy := p.Y - model.means[c].Y
				cxx += resp[i][c] * dx * dx
				cxy += resp[i][c] * dx * dy
				cyy += resp[i][c] * dy * dy
			}
			model.covs[c].SetSym(0, 0, cxx/sumResp+covarianceFloor)
			model.covs[c].SetSym(0, 1, cxy/sumResp)
			model.covs[c].SetSym(1, 1, cyy/sumResp+covarianceFloor)
		}

		if math.Abs(logL-prevLogL) < emTolerance {
			model.logL = logL
			return model, nil
		}
		prevLogL = logL
	}

	model.logL = prevLogL
	return model, nil
}

// gaussianDensity evaluates the bivariate normal density at p.
func gaussianDensity(p, mean Point, cov *mat.SymDense) float64 {
	a := cov.At(0, 0)
	b := cov.At(0, 1)
	d := cov.At(1, 1)
	det := a*d - b*b
	if det <= 0 {
		return 0
	}
	dx := p.X - mean.X
	dy := p.Y - mean.Y
	// Inverse of a 2x2 symmetric matrix, applied directly.
	quad := (d*dx*dx - 2*b*dx*dy + a*dy*dy) / det
	return math.Exp(-0.5*quad) / (2 * math.Pi * math.Sqrt(det))
}

// bic scores the fitted model: -2 log L + p ln n, where p counts the free
// parameters of a full-covariance 2D mixture.
func (g *gaussianMixture) bic(points []Point) float64 {
	k := len(g.weights)
	params := float64(k*5 + (k - 1)) // per component: 2 mean + 3 covariance; plus k-1 weights
	return -2*g.logL + params*math.Log(float64(len(points)))
}

// assign labels each point with its highest-responsibility component.
func (g *gaussianMixture) assign(points []Point) []int {
	labels := make([]int, len(points))
	for i, p := range points {
		best, bestDensity := 0, -1.0
		for c := range g.weights {
			if d := g.weights[c] * gaussianDensity(p, g.means[c], g.covs[c]); d > bestDensity {
				best, bestDensity = c, d
			}
		}
		labels[i] = best
	}
	return labels
}

// globalCovariance computes the covariance of the full point set, floored to
// stay positive definite.
func globalCovariance(points []Point) *mat.SymDense {
	n := float64(len(points))
	var mx, my float64
	for _, p := range points {
		mx += p.X
		my += p.Y
	}
	mx /= n
	my /= n

	var cxx, cxy, cyy float64
	for _, p := range points {
		dx := p.X - mx
		dy := p.Y - my
		cxx += dx * dx
		cxy += dx * dy
		cyy += dy * dy
	}
	cov := mat.NewSymDense(2, nil)
	cov.SetSym(0, 0, cxx/n+covarianceFloor)
	cov.SetSym(0, 1, cxy/n)
	cov.SetSym(1, 1, cyy/n+covarianceFloor)
	return cov
}
