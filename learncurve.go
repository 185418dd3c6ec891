package xtriage

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/rasutt/auckland-ai-meetup-x-triage/checkpoint"
	"github.com/rasutt/auckland-ai-meetup-x-triage/metrics"
)

// ErrSizeSpec is returned when a learning-curve sweep is configured with
// both or neither of Divisions and Sizes.
var ErrSizeSpec = errors.New("xtriage: set exactly one of Divisions and Sizes")

// SizePoint is one sample of the learning curve: the safe-set percentage
// achieved after training on a dataset of the given size.
type SizePoint struct {
	Size    int
	Safeset float64
}

// SizeSpec selects the dataset sizes a learning-curve sweep visits.
// Exactly one field must be set.
type SizeSpec struct {
	// Divisions derives the sizes by evenly dividing the dataset length:
	// with dataset length n and step n/Divisions, the sizes are step,
	// 2*step, ... below n.
	Divisions int
	// Sizes lists the dataset sizes explicitly, in increasing order.
	Sizes []int
}

// sizes expands the spec against a dataset of length n.
func (sp SizeSpec) sizes(n int) ([]int, error) {
	switch {
	case sp.Divisions > 0 && len(sp.Sizes) > 0:
		return nil, ErrSizeSpec
	case sp.Divisions > 0:
		step := n / sp.Divisions
		if step == 0 {
			return nil, fmt.Errorf("xtriage: cannot divide %d examples into %d sizes", n, sp.Divisions)
		}
		var sizes []int
		for s := step; s < n; s += step {
			sizes = append(sizes, s)
		}
		return sizes, nil
	case len(sp.Sizes) > 0:
		return sp.Sizes, nil
	default:
		return nil, ErrSizeSpec
	}
}

// LearningCurve measures how the safe-set metric responds to training-set
// size. The dataset is shuffled once with rng, the model's weights are
// snapshotted, and then for each size in spec the model is reset to the
// snapshot, trained on the first 90% of the size-prefix, and scored on
// the remaining 10%. The returned points are in sweep order.
//
// LearningCurve returns ErrSizeSpec when spec sets both or neither of its
// fields. It panics if rng is nil. Failure semantics match CrossValidate:
// the first fit, predict, or checkpoint error aborts the sweep, and the
// scratch checkpoint directory is removed on every exit path.
func LearningCurve(model Model, data Dataset, spec SizeSpec, rng *rand.Rand, settings *Settings) (points []SizePoint, err error) {
	data.validate()
	if rng == nil {
		panic("xtriage: nil rng")
	}
	s := settings.withDefaults()

	sizes, err := spec.sizes(data.Len())
	if err != nil {
		return nil, err
	}

	shuffled := data.Select(rng.Perm(data.Len()))

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
	log.Info("running learning-curve sweep", "sizes", len(sizes), "examples", data.Len())

	if err := ckpt.SaveInitial(model); err != nil {
		return nil, err
	}

	points = make([]SizePoint, 0, len(sizes))
	for _, size := range sizes {
		if size > shuffled.Len() {
			return nil, fmt.Errorf("xtriage: size %d exceeds dataset length %d", size, shuffled.Len())
		}
		trainEnd := size * 9 / 10
		if trainEnd == 0 || trainEnd == size {
			return nil, fmt.Errorf("xtriage: size %d too small for a 90/10 split", size)
		}
		train := shuffled.Select(irange(0, trainEnd))
		eval := shuffled.Select(irange(trainEnd, size))

		if err := ckpt.RestoreInitial(model); err != nil {
			return nil, err
		}
		if err := model.Fit(train, FitOptions{Epochs: s.Epochs}); err != nil {
			return nil, fmt.Errorf("xtriage: fitting %d examples: %w", trainEnd, err)
		}
		outputs, err := model.Predict(eval.X)
		if err != nil {
			return nil, fmt.Errorf("xtriage: predicting at size %d: %w", size, err)
		}
		pct := metrics.SafesetPercent(outputs, eval.Y, s.Tolerance, s.Step)
		points = append(points, SizePoint{Size: size, Safeset: pct})
		log.Info("finished size", "size", size, "safeset", pct)
	}
	return points, nil
}

// irange returns the indices [lo, hi).
func irange(lo, hi int) []int {
	inds := make([]int, hi-lo)
	for i := range inds {
		inds[i] = lo + i
	}
	return inds
}
