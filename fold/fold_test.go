package fold

import (
	"math/rand"
	"testing"
)

func checkTestingAndTraining(t *testing.T, name string, training, testing [][]int, nSamples, nFolds int) {
	t.Helper()
	if nFolds > nSamples {
		nFolds = nSamples
	}
	if len(training) != nFolds {
		t.Errorf("Case %s: training does not have %v folds", name, nFolds)
		return
	}
	if len(testing) != nFolds {
		t.Errorf("Case %s: testing does not have %v folds", name, nFolds)
		return
	}

	// Each sample should be in testing exactly once.
	testCount := make([]int, nSamples)
	for _, fold := range testing {
		for _, sample := range fold {
			testCount[sample]++
		}
	}
	for _, val := range testCount {
		if val != 1 {
			t.Errorf("Case %s: testing samples not all there exactly once. Count = %v", name, testCount)
		}
	}

	// All the training samples should be there nFolds - 1 times.
	trainCount := make([]int, nSamples)
	for _, fold := range training {
		for _, sample := range fold {
			trainCount[sample]++
		}
	}
	for _, val := range trainCount {
		if val != nFolds-1 {
			t.Errorf("Case %s: training sample count != %v. Count = %v", name, nFolds-1, trainCount)
		}
	}
}

func TestPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, test := range []struct {
		nSamples int
		nFolds   int
		Name     string
	}{
		{
			nSamples: 10,
			nFolds:   2,
			Name:     "Even",
		},
		{
			nSamples: 11,
			nFolds:   3,
			Name:     "Uneven",
		},
		{
			nSamples: 24,
			nFolds:   25,
			Name:     "MoreFolds",
		},
		{
			nSamples: 13,
			nFolds:   13,
			Name:     "LeaveOneOut",
		},
	} {
		training, testing := Partition(test.nSamples, test.nFolds, rng)
		checkTestingAndTraining(t, test.Name, training, testing, test.nSamples, test.nFolds)
	}
}

func TestContiguous(t *testing.T) {
	for _, test := range []struct {
		nData  int
		nFolds int
		Name   string
	}{
		{
			nData:  12,
			nFolds: 3,
			Name:   "Divisible",
		},
		{
			nData:  14,
			nFolds: 3,
			Name:   "Remainder",
		},
		{
			nData:  5,
			nFolds: 5,
			Name:   "LeaveOneOut",
		},
	} {
		folds := Contiguous(test.nData, test.nFolds)
		if len(folds) != test.nFolds {
			t.Errorf("Case %s: got %d folds, want %d", test.Name, len(folds), test.nFolds)
			continue
		}
		w := test.nData / test.nFolds
		pool := w * test.nFolds

		// Every retained row is held out exactly once; remainder rows never
		// appear anywhere.
		valCount := make([]int, test.nData)
		for i, f := range folds {
			if len(f.Val) != w {
				t.Errorf("Case %s: fold %d validation width %d, want %d", test.Name, i, len(f.Val), w)
			}
			for j, v := range f.Val {
				valCount[v]++
				if v != i*w+j {
					t.Errorf("Case %s: fold %d validation not contiguous at %d", test.Name, i, j)
				}
			}
		}
		for v := 0; v < pool; v++ {
			if valCount[v] != 1 {
				t.Errorf("Case %s: row %d held out %d times", test.Name, v, valCount[v])
			}
		}
		for v := pool; v < test.nData; v++ {
			if valCount[v] != 0 {
				t.Errorf("Case %s: remainder row %d held out", test.Name, v)
			}
		}

		// Training is the complement of validation within the pool, in
		// wrap-around order.
		for i, f := range folds {
			var want []int
			for j := (i + 1) * w; j < pool; j++ {
				want = append(want, j)
			}
			for j := 0; j < i*w; j++ {
				want = append(want, j)
			}
			if len(f.Train) != len(want) {
				t.Errorf("Case %s: fold %d training size %d, want %d", test.Name, i, len(f.Train), len(want))
				continue
			}
			for j := range want {
				if f.Train[j] != want[j] {
					t.Errorf("Case %s: fold %d training order mismatch at %d: got %d, want %d",
						test.Name, i, j, f.Train[j], want[j])
					break
				}
			}
		}
	}
}

func TestContiguousPanics(t *testing.T) {
	for _, test := range []struct {
		nData, nFolds int
		Name          string
	}{
		{0, 3, "NoData"},
		{3, 0, "NoFolds"},
		{3, 4, "MoreFoldsThanData"},
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Case %s: expected panic", test.Name)
				}
			}()
			Contiguous(test.nData, test.nFolds)
		}()
	}
}
