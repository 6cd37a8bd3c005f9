package significance

import (
	"fmt"
	"math"

	"repsig/domain/core"
)

// OmnibusResult is the outcome of a Kruskal-Wallis H-test
type OmnibusResult struct {
	H      float64
	PValue float64
	Groups int
	N      int
}

// KruskalWallis tests whether any group's distribution differs from the
// others. Ranks are pooled over all groups with ties averaged and H is
// divided by the tie correction factor. When every observation is
// identical the correction factor is zero: the returned result holds NaN
// and the error wraps core.ErrNonFinite.
func KruskalWallis(groups ...[]float64) (OmnibusResult, error) {
	if len(groups) < 2 {
		return OmnibusResult{}, core.NewInputError("kruskal-wallis", fmt.Sprintf("need at least 2 groups, got %d", len(groups)))
	}

	var pooled []float64
	for i, g := range groups {
		if len(g) == 0 {
			return OmnibusResult{}, core.NewInputError("kruskal-wallis", fmt.Sprintf("group %d is empty", i))
		}
		if j := nonFinite(g); j >= 0 {
			return OmnibusResult{}, fmt.Errorf("%w: kruskal-wallis: group %d, observation %d is %v", core.ErrNonFinite, i, j, g[j])
		}
		pooled = append(pooled, g...)
	}

	n := float64(len(pooled))
	ranks, tieSum := rankAverage(pooled)

	sumTerm := 0.0
	offset := 0
	for _, g := range groups {
		rankSum := 0.0
		for k := range g {
			rankSum += ranks[offset+k]
		}
		sumTerm += rankSum * rankSum / float64(len(g))
		offset += len(g)
	}

	result := OmnibusResult{Groups: len(groups), N: len(pooled)}

	correction := 1.0 - tieSum/(n*n*n-n)
	if correction <= 0 {
		result.H = math.NaN()
		result.PValue = math.NaN()
		return result, fmt.Errorf("%w: kruskal-wallis: all %d observations are identical", core.ErrNonFinite, len(pooled))
	}

	h := (12.0*sumTerm/(n*(n+1)) - 3.0*(n+1)) / correction
	result.H = h
	result.PValue = ChiSquarePValue(h, len(groups)-1)
	return result, nil
}

// nonFinite returns the index of the first NaN or infinite value, or -1
func nonFinite(xs []float64) int {
	for i, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}
