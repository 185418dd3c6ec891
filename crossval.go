package xtriage

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/rasutt/auckland-ai-meetup-x-triage/checkpoint"
	"github.com/rasutt/auckland-ai-meetup-x-triage/fold"
	"github.com/rasutt/auckland-ai-meetup-x-triage/metrics"
)

// Curve is one ROC curve: index-aligned false-positive and true-positive
// rate sequences ordered from the most conservative threshold to the most
// permissive.
type Curve struct {
	FalsePos []float64
	TruePos  []float64
}

// AUC returns the area under the curve.
func (c Curve) AUC() float64 {
	return metrics.Trapezoid(c.FalsePos, c.TruePos)
}

// Evaluation holds the metrics of a model on one held-out set.
type Evaluation struct {
	ROC     Curve
	AUC     float64
	Safeset float64 // percent of normal cases screened within tolerance
}

// CrossValResult collects the per-fold evaluations of one
// cross-validation run.
type CrossValResult struct {
	// RunID identifies the run; it keys the scratch checkpoint directory
	// and any persisted results.
	RunID string
	// Curves maps fold index to that fold's validation ROC curve.
	Curves map[int]Curve
	// Safesets holds the safe-set percentage of each fold, in fold order.
	Safesets []float64
}

// AUCs returns the area under each fold's curve, in fold order.
func (r *CrossValResult) AUCs() []float64 {
	aucs := make([]float64, len(r.Curves))
	for i := range aucs {
		aucs[i] = r.Curves[i].AUC()
	}
	return aucs
}

// MeanAUC returns the mean per-fold AUC.
func (r *CrossValResult) MeanAUC() float64 {
	return stat.Mean(r.AUCs(), nil)
}

// MeanSafeset returns the mean per-fold safe-set percentage.
func (r *CrossValResult) MeanSafeset() float64 {
	return stat.Mean(r.Safesets, nil)
}

// Evaluate scores data with the model and computes its ROC curve, AUC,
// and safe-set percentage.
func Evaluate(model Model, data Dataset, settings *Settings) (*Evaluation, error) {
	data.validate()
	s := settings.withDefaults()
	outputs, err := model.Predict(data.X)
	if err != nil {
		return nil, fmt.Errorf("xtriage: predicting: %w", err)
	}
	return evaluate(outputs, data.Y, s), nil
}

func evaluate(outputs, targets []float64, s Settings) *Evaluation {
	falsePos, truePos := metrics.ROC(outputs, targets, s.SweepPoints)
	curve := Curve{FalsePos: falsePos, TruePos: truePos}
	return &Evaluation{
		ROC:     curve,
		AUC:     curve.AUC(),
		Safeset: metrics.SafesetPercent(outputs, targets, s.Tolerance, s.Step),
	}
}

// CrossValidate evaluates the model with k-fold cross-validation over
// data. The model's current weights are snapshotted once up front and
// restored before every fold, so each fold trains from the same starting
// point. Per fold, the model fits on the rows outside a contiguous
// validation slice for the configured epoch budget, recording its
// best-on-validation weights as it goes; the best weights are then
// restored and the validation slice is scored. Folds run strictly in
// sequence: the model instance and its checkpoint files are shared
// mutable state, so each fold's reset, train, and evaluate must complete
// before the next begins.
//
// Any fit, predict, or checkpoint I/O failure aborts the run and is
// returned; there is no retry and no partial result. The scratch
// checkpoint directory is removed on every exit path.
func CrossValidate(model Model, data Dataset, k int, settings *Settings) (*CrossValResult, error) {
	data.validate()
	return runFolds(model, data, fold.Contiguous(data.Len(), k), settings)
}

// CrossValidateShuffled is like CrossValidate but draws the folds from a
// random permutation of rng rather than contiguous slices. Every row is
// held out exactly once; fold widths differ by at most one when k does
// not divide the data, so no rows are dropped.
//
// CrossValidateShuffled panics if rng is nil.
func CrossValidateShuffled(model Model, data Dataset, k int, rng *rand.Rand, settings *Settings) (*CrossValResult, error) {
	data.validate()
	training, testing := fold.Partition(data.Len(), k, rng)
	folds := make([]fold.Fold, len(training))
	for i := range folds {
		folds[i] = fold.Fold{Train: training[i], Val: testing[i]}
	}
	return runFolds(model, data, folds, settings)
}

// runFolds runs the reset→train→evaluate loop over the given folds.
func runFolds(model Model, data Dataset, folds []fold.Fold, settings *Settings) (result *CrossValResult, err error) {
	k := len(folds)
	s := settings.withDefaults()

	ckpt, err := checkpoint.NewManager(s.CheckpointDir, uuid.NewString())
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := ckpt.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	log := s.Logger.With("run", ckpt.RunID())
	log.Info("running k-fold cross-validation", "k", k, "examples", data.Len(), "epochs", s.Epochs)

	if err := ckpt.SaveInitial(model); err != nil {
		return nil, err
	}

	result = &CrossValResult{
		RunID:    ckpt.RunID(),
		Curves:   make(map[int]Curve, k),
		Safesets: make([]float64, 0, k),
	}
	for i, f := range folds {
		log.Info("starting fold", "fold", i, "train", len(f.Train), "val", len(f.Val))
		if err := ckpt.RestoreInitial(model); err != nil {
			return nil, err
		}
		train := data.Select(f.Train)
		val := data.Select(f.Val)
		opts := FitOptions{
			Epochs:          s.Epochs,
			Validation:      &val,
			BestWeightsPath: ckpt.BestPath(),
		}
		if err := model.Fit(train, opts); err != nil {
			return nil, fmt.Errorf("xtriage: fitting fold %d: %w", i, err)
		}
		if err := ckpt.RestoreBest(model); err != nil {
			return nil, err
		}
		outputs, err := model.Predict(val.X)
		if err != nil {
			return nil, fmt.Errorf("xtriage: predicting fold %d: %w", i, err)
		}
		ev := evaluate(outputs, val.Y, s)
		result.Curves[i] = ev.ROC
		result.Safesets = append(result.Safesets, ev.Safeset)
		log.Info("finished fold", "fold", i, "auc", ev.AUC, "safeset", ev.Safeset)
	}
	return result, nil
}
