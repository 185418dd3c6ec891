// package metrics implements evaluation metrics for binary classifiers
// whose outputs are real-valued scores, nominally in [0,1]. The central
// routines are ROC, which sweeps a decision threshold over the scores to
// build a receiver operating characteristic curve, and Trapezoid, which
// integrates an arbitrary curve so that AUC can be computed from the sweep.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	errLen    = "metrics: length mismatch"
	errBinary = "metrics: targets not binary"
	errSweep  = "metrics: need at least two sweep points"
)

// defaultSweepPoints is the number of thresholds used by ROC and AUC when
// the caller passes n <= 0.
const defaultSweepPoints = 100

// checkVectors panics unless predictions and targets are index-aligned and
// every target is exactly 0 or 1.
func checkVectors(predictions, targets []float64) {
	if len(predictions) != len(targets) {
		panic(errLen)
	}
	for _, t := range targets {
		if t != 0 && t != 1 {
			panic(errBinary)
		}
	}
}

// TruePositiveRate returns the sensitivity of a set of binarized
// predictions: the fraction of positive targets that were predicted
// positive. The result is NaN when targets contains no positives.
//
// TruePositiveRate panics if the vectors differ in length or targets is
// not binary.
func TruePositiveRate(predictions, targets []float64) float64 {
	checkVectors(predictions, targets)
	var truePos, pos float64
	for i, t := range targets {
		if t == 1 {
			pos++
			if predictions[i] == 1 {
				truePos++
			}
		}
	}
	if pos == 0 {
		return math.NaN()
	}
	return truePos / pos
}

// FalsePositiveRate returns the fraction of negative targets that were
// predicted positive. The result is NaN when targets contains no
// negatives.
//
// FalsePositiveRate panics if the vectors differ in length or targets is
// not binary.
func FalsePositiveRate(predictions, targets []float64) float64 {
	checkVectors(predictions, targets)
	var falsePos, neg float64
	for i, t := range targets {
		if t == 0 {
			neg++
			if predictions[i] == 1 {
				falsePos++
			}
		}
	}
	if neg == 0 {
		return math.NaN()
	}
	return falsePos / neg
}

// Binarize returns the predictions implied by a decision threshold: 1
// where the output strictly exceeds threshold, 0 elsewhere.
func Binarize(outputs []float64, threshold float64) []float64 {
	predictions := make([]float64, len(outputs))
	for i, v := range outputs {
		if v > threshold {
			predictions[i] = 1
		}
	}
	return predictions
}

// ROC slides a decision threshold across n points linearly spaced from 1
// down to 0 inclusive, binarizing outputs at each threshold and recording
// the resulting rates. The returned sequences are index-aligned, ordered
// from the most conservative threshold (near (0,0)) to the most
// permissive (near (1,1)). If n <= 0 it defaults to 100. Inputs are not
// modified.
//
// ROC panics if the vectors differ in length, targets is not binary, or
// n == 1.
func ROC(outputs, targets []float64, n int) (falsePos, truePos []float64) {
	checkVectors(outputs, targets)
	if n <= 0 {
		n = defaultSweepPoints
	}
	if n < 2 {
		panic(errSweep)
	}
	thresholds := floats.Span(make([]float64, n), 1, 0)
	falsePos = make([]float64, 0, n)
	truePos = make([]float64, 0, n)
	for _, t := range thresholds {
		predictions := Binarize(outputs, t)
		falsePos = append(falsePos, FalsePositiveRate(predictions, targets))
		truePos = append(truePos, TruePositiveRate(predictions, targets))
	}
	return falsePos, truePos
}

// Trapezoid integrates the curve y = f(x) given by two index-aligned
// sequences using the composite trapezoidal rule. The x values may be
// unevenly spaced and need not be sorted; reversing both sequences leaves
// the result unchanged. Fewer than two points yields 0.
//
// Trapezoid panics if the sequences differ in length.
func Trapezoid(x, y []float64) float64 {
	if len(x) != len(y) {
		panic(errLen)
	}
	var a float64
	for i := 0; i < len(x)-1; i++ {
		a += (x[i+1] - x[i]) * (y[i+1] + y[i])
	}
	return a / 2
}

// AUC computes the area under the ROC curve of the given scores using an
// n-point threshold sweep. 0.5 corresponds to a random classifier, 1.0 to
// a perfect one. If n <= 0 it defaults to 100.
func AUC(outputs, targets []float64, n int) float64 {
	falsePos, truePos := ROC(outputs, targets, n)
	return Trapezoid(falsePos, truePos)
}
