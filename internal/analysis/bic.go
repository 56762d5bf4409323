package analysis

import "math"

const varianceEps = 1e-10

// gaussianCost is the cost of modeling feature frames X with one
// diagonal-covariance Gaussian: 0.5 * N * sum_d ln(var_d).
func gaussianCost(X [][]float64) float64 {
	n := len(X)
	if n == 0 {
		return 0
	}
	d := len(X[0])

	var cost float64
	for j := 0; j < d; j++ {
		var mean float64
		for i := 0; i < n; i++ {
			mean += X[i][j]
		}
		mean /= float64(n)

		var v float64
		for i := 0; i < n; i++ {
			diff := X[i][j] - mean
			v += diff * diff
		}
		v /= float64(n)

		cost += math.Log(v + varianceEps)
	}
	return 0.5 * float64(n) * cost
}

// deltaBIC compares one merged Gaussian over X against a split at index
// split, penalized by model complexity. Positive values favor the split.
func deltaBIC(X [][]float64, split int, penalty float64) float64 {
	n := len(X)
	if n < 4 || split <= 1 || split >= n-1 {
		return math.Inf(-1)
	}
	d := len(X[0])

	p := penalty * 0.5 * float64(2*d) * math.Log(float64(n))
	return gaussianCost(X) - gaussianCost(X[:split]) - gaussianCost(X[split:]) - p
}

// detectChangePoints slides a window over the feature sequence, scoring a
// split at each center frame, and keeps positive local maxima spaced at least
// minDist frames apart. Returned indices are interior boundaries, ascending.
func detectChangePoints(features [][]float64, window, minDist int, penalty float64) []int {
	n := len(features)
	if n < 2*window || window < 2 {
		return nil
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = math.Inf(-1)
	}
	for c := window; c <= n-window; c++ {
		scores[c] = deltaBIC(features[c-window:c+window], window, penalty)
	}

	var boundaries []int
	last := -minDist
	for c := window; c <= n-window; c++ {
		if scores[c] <= 0 {
			continue
		}
		if scores[c-1] > scores[c] || (c+1 < len(scores) && scores[c+1] > scores[c]) {
			continue
		}
		if c-last < minDist {
			continue
		}
		boundaries = append(boundaries, c)
		last = c
	}
	return boundaries
}
