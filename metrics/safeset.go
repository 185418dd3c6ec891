package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

var errStep = "metrics: nonpositive threshold step"

// SafesetPercent reports the percentage of negative (normal) cases that a
// decision rule can screen out while keeping the number of missed
// positives within tolerance. The search raises the threshold from 0 in
// increments of step and returns
//
//	100 * trueNegatives / totalNegatives
//
// at the highest threshold whose false-negative count does not exceed
// tolerance. Both counts are monotonic in the threshold, so this is the
// largest screened-out fraction achievable within the tolerance. If the
// tolerance is never exceeded the sweep stops once the threshold passes
// the maximum prediction, at which point every negative is screened and
// the result is 100.
//
// The result is NaN when targets contains no negatives. SafesetPercent
// panics if the vectors differ in length, targets is not binary, or step
// is not positive.
func SafesetPercent(predictions, targets []float64, tolerance int, step float64) float64 {
	checkVectors(predictions, targets)
	if step <= 0 {
		panic(errStep)
	}
	normal := float64(len(targets)) - floats.Sum(targets)
	if normal == 0 {
		return math.NaN()
	}

	// Once the threshold clears every prediction the counts cannot change.
	bound := floats.Max(predictions)

	var best float64
	for threshold := 0.0; ; threshold += step {
		var falseNeg, trueNeg float64
		for i, v := range predictions {
			if v > threshold {
				continue
			}
			if targets[i] == 1 {
				falseNeg++
			} else {
				trueNeg++
			}
		}
		if falseNeg > float64(tolerance) {
			break
		}
		best = trueNeg
		if threshold > bound {
			break
		}
	}
	return 100 * best / normal
}
