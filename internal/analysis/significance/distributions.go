package significance

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// exactWilcoxonLimit is the largest sample for which the signed-rank null
// distribution is enumerated instead of approximated.
const exactWilcoxonLimit = 50

// ChiSquarePValue computes the upper-tail p-value of a chi-square statistic
func ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}
	if chiSquare <= 0 {
		return 1.0
	}

	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return chiDist.Survival(chiSquare)
}

// NormalTwoSidedPValue computes 2*P(Z > |z|) for a standard normal Z
func NormalTwoSidedPValue(z float64) float64 {
	p := 2 * distuv.UnitNormal.Survival(math.Abs(z))
	if p > 1.0 {
		p = 1.0
	}
	return p
}

// wilcoxonExactTwoSidedPValue enumerates the distribution of W+ over all 2^n
// sign assignments of ranks 1..n. Valid only without ties or zeros.
func wilcoxonExactTwoSidedPValue(tStatistic float64, n int) float64 {
	wObs := int(math.Round(tStatistic))
	if wObs < 0 {
		wObs = 0
	}

	totalRankSum := n * (n + 1) / 2
	if wObs > totalRankSum {
		wObs = totalRankSum
	}

	w := wObs
	if totalRankSum-wObs < w {
		w = totalRankSum - wObs
	}

	// dp[s] = number of sign assignments producing W+ = s
	dp := make([]uint64, totalRankSum+1)
	dp[0] = 1
	for r := 1; r <= n; r++ {
		for s := totalRankSum; s >= r; s-- {
			dp[s] += dp[s-r]
		}
	}

	totalOutcomes := uint64(1) << uint(n)
	var cum uint64
	for s := 0; s <= w; s++ {
		cum += dp[s]
	}

	pTwoSide := 2 * float64(cum) / float64(totalOutcomes)
	if pTwoSide > 1.0 {
		pTwoSide = 1.0
	}
	return pTwoSide
}

// wilcoxonNormalTwoSidedPValue uses the normal approximation of W with the
// tie correction Σ(t³-t)/48 and no continuity correction.
func wilcoxonNormalTwoSidedPValue(tStatistic float64, n int, tieSum float64) float64 {
	nf := float64(n)
	meanT := nf * (nf + 1) / 4.0
	variance := nf*(nf+1)*(2*nf+1)/24.0 - tieSum/48.0
	if variance <= 0 {
		return 1.0
	}

	z := (tStatistic - meanT) / math.Sqrt(variance)
	return NormalTwoSidedPValue(z)
}
