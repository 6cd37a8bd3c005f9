package significance

import (
	"fmt"
	"math"

	"repsig/domain/core"
)

// WilcoxonResult is the outcome of a paired signed-rank test
type WilcoxonResult struct {
	W      float64 // min(W+, W-)
	PValue float64
	N      int // pairs left after dropping zero differences
	Exact  bool
}

// WilcoxonSignedRank runs a two-sided Wilcoxon signed-rank test on paired
// samples x and y. Zero differences are dropped before ranking. If every
// difference is zero the test is undefined and the error wraps
// core.ErrDegenerateSample.
func WilcoxonSignedRank(x, y []float64) (WilcoxonResult, error) {
	if len(x) != len(y) {
		return WilcoxonResult{}, core.NewInputError("wilcoxon", fmt.Sprintf("samples differ in length: %d vs %d", len(x), len(y)))
	}
	if len(x) == 0 {
		return WilcoxonResult{}, core.NewInputError("wilcoxon", "empty samples")
	}
	for _, sample := range [][]float64{x, y} {
		if i := nonFinite(sample); i >= 0 {
			return WilcoxonResult{}, fmt.Errorf("%w: wilcoxon: pair %d is %v", core.ErrNonFinite, i, sample[i])
		}
	}

	diffs := make([]float64, 0, len(x))
	for i := range x {
		if d := x[i] - y[i]; d != 0 {
			diffs = append(diffs, d)
		}
	}
	hadZeros := len(diffs) < len(x)
	if len(diffs) == 0 {
		return WilcoxonResult{}, core.ErrDegenerateSample
	}

	abs := make([]float64, len(diffs))
	for i, d := range diffs {
		abs[i] = math.Abs(d)
	}
	ranks, tieSum := rankAverage(abs)

	var wPlus, wMinus float64
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}

	n := len(diffs)
	result := WilcoxonResult{W: math.Min(wPlus, wMinus), N: n}
	if n <= exactWilcoxonLimit && !hadZeros && tieSum == 0 {
		result.Exact = true
		result.PValue = wilcoxonExactTwoSidedPValue(result.W, n)
	} else {
		result.PValue = wilcoxonNormalTwoSidedPValue(result.W, n, tieSum)
	}
	return result, nil
}
