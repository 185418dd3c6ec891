// package xtriage implements model evaluation for binary image triage
// classifiers, such as the x-ray screening models built at the Auckland
// AI meetup. Given a trained (or trainable) model scoring each example in
// [0,1], the package computes ROC curves and their areas, the safe-set
// metric (the fraction of normal cases that can be auto-cleared while
// bounding missed abnormal cases), and orchestrates k-fold
// cross-validation and learning-curve sweeps that repeatedly reset a
// model from a weight checkpoint, train it, and evaluate it.
//
// The model itself is an external collaborator: anything satisfying the
// Model interface can be evaluated. Training, model architecture, data
// loading, and plotting are out of scope; datasets arrive in memory and
// results are returned as plain sequences (or persisted through the
// results package) for a plotting front end to consume.
package xtriage

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"
)

var (
	errLen  = "xtriage: length mismatch"
	errData = "xtriage: empty dataset"
)

// A Model is a trainable binary classifier. Fit trains the model in
// place; Predict scores each row of x with a value nominally in [0,1],
// higher meaning more likely abnormal. SaveWeights and LoadWeights
// snapshot and restore the trainable parameters, and are how the
// orchestrators reset a model between folds.
type Model interface {
	Fit(train Dataset, opts FitOptions) error
	Predict(x mat.Matrix) ([]float64, error)
	SaveWeights(path string) error
	LoadWeights(path string) error
}

// FitOptions carries the per-run training configuration handed to
// Model.Fit.
type FitOptions struct {
	// Epochs is the fixed training budget.
	Epochs int
	// Validation, when non-nil, is the held-out data the model should
	// monitor during training.
	Validation *Dataset
	// BestWeightsPath, when non-empty, is where the model must write its
	// weights whenever validation performance improves. The file may be
	// overwritten freely during one Fit call.
	BestWeightsPath string
}

// Dataset is an in-memory labeled sample set. Rows of X are examples
// (image tensors flattened row-wise); Y holds the index-aligned binary
// labels, 0 for normal and 1 for abnormal.
type Dataset struct {
	X mat.Matrix
	Y []float64
}

// Len returns the number of examples.
func (d Dataset) Len() int {
	if d.X == nil {
		return 0
	}
	r, _ := d.X.Dims()
	return r
}

// Select returns a new Dataset holding the given rows in order. The
// underlying data is copied, so the result is independent of d.
func (d Dataset) Select(inds []int) Dataset {
	_, dim := d.X.Dims()
	x := mat.NewDense(len(inds), dim, nil)
	y := make([]float64, len(inds))
	row := make([]float64, dim)
	for i, v := range inds {
		mat.Row(row, v, d.X)
		x.SetRow(i, row)
		y[i] = d.Y[v]
	}
	return Dataset{X: x, Y: y}
}

// validate panics unless the labels align with the rows of X.
func (d Dataset) validate() {
	if d.Len() == 0 {
		panic(errData)
	}
	if d.Len() != len(d.Y) {
		panic(errLen)
	}
}

// Settings configures the orchestrators. The zero value of each field
// selects the default noted on it; passing a nil *Settings selects all
// defaults.
type Settings struct {
	// Epochs is the training budget per fit. Defaults to 10.
	Epochs int
	// SweepPoints is the number of ROC thresholds. Defaults to 100.
	SweepPoints int
	// Tolerance is the allowed number of missed positives in the
	// safe-set search. Defaults to 1.
	Tolerance int
	// Step is the safe-set threshold increment. Defaults to 0.001.
	Step float64
	// CheckpointDir is the base directory for scratch weight files.
	// Defaults to the system temporary directory. Each run creates and
	// removes its own subdirectory beneath it.
	CheckpointDir string
	// Logger receives run progress. Defaults to discarding.
	Logger *slog.Logger
}

const (
	defaultEpochs      = 10
	defaultSweepPoints = 100
	defaultTolerance   = 1
	defaultStep        = 0.001
)

// withDefaults returns a copy of s with zero fields replaced by their
// defaults. A nil receiver yields all defaults.
func (s *Settings) withDefaults() Settings {
	var out Settings
	if s != nil {
		out = *s
	}
	if out.Epochs == 0 {
		out.Epochs = defaultEpochs
	}
	if out.SweepPoints == 0 {
		out.SweepPoints = defaultSweepPoints
	}
	if out.Tolerance == 0 {
		out.Tolerance = defaultTolerance
	}
	if out.Step == 0 {
		out.Step = defaultStep
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}
	return out
}
