package xtriage

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// mockModel is a deterministic Model for orchestrator tests. Each example
// row carries its global index in column 0 and its fixed score in column
// 1, so the mock can report exactly which rows it was trained and
// evaluated on. Its single parameter counts completed Fit calls, making
// checkpoint resets observable: a model restored to its initial snapshot
// re-enters Fit with the parameter at zero.
type mockModel struct {
	weights float64

	fitErr   error
	skipBest bool // when set, Fit never writes BestWeightsPath
	fits     []fitRecord
	journal  []string // basenames of weight files saved and loaded, in order
}

type fitRecord struct {
	trainIDs     []float64
	valIDs       []float64
	epochs       int
	entryWeights float64
}

func column(m mat.Matrix, c int) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = m.At(i, c)
	}
	return out
}

func (m *mockModel) Fit(train Dataset, opts FitOptions) error {
	rec := fitRecord{
		trainIDs:     column(train.X, 0),
		epochs:       opts.Epochs,
		entryWeights: m.weights,
	}
	if opts.Validation != nil {
		rec.valIDs = column(opts.Validation.X, 0)
	}
	m.fits = append(m.fits, rec)
	if m.fitErr != nil {
		return m.fitErr
	}
	m.weights++
	if opts.BestWeightsPath != "" && !m.skipBest {
		return m.SaveWeights(opts.BestWeightsPath)
	}
	return nil
}

func (m *mockModel) Predict(x mat.Matrix) ([]float64, error) {
	return column(x, 1), nil
}

func (m *mockModel) SaveWeights(path string) error {
	m.journal = append(m.journal, "save "+filepath.Base(path))
	return os.WriteFile(path, []byte(strconv.FormatFloat(m.weights, 'g', -1, 64)), 0o644)
}

func (m *mockModel) LoadWeights(path string) error {
	m.journal = append(m.journal, "load "+filepath.Base(path))
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	w, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	m.weights = w
	return nil
}

// errPredictModel fails on Predict after fitting normally.
type errPredictModel struct {
	mockModel
}

var errPredict = errors.New("predict failed")

func (m *errPredictModel) Predict(x mat.Matrix) ([]float64, error) {
	return nil, errPredict
}

// indexedDataset builds a Dataset whose rows carry their own index in
// column 0 and the given score in column 1.
func indexedDataset(scores, targets []float64) Dataset {
	x := mat.NewDense(len(scores), 2, nil)
	for i, s := range scores {
		x.Set(i, 0, float64(i))
		x.Set(i, 1, s)
	}
	return Dataset{X: x, Y: targets}
}

// separableDataset builds an indexed dataset of n alternating
// normal/abnormal examples with perfectly separated scores.
func separableDataset(n int) Dataset {
	scores := make([]float64, n)
	targets := make([]float64, n)
	for i := range scores {
		targets[i] = float64(i % 2)
		if targets[i] == 1 {
			scores[i] = 0.9
		} else {
			scores[i] = 0.1
		}
	}
	return indexedDataset(scores, targets)
}
