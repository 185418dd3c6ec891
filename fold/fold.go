// package fold implements index partitioning for k-fold cross-validation.
package fold

import "math/rand"

// Fold is one train/validation split of a dataset index range. Indices
// refer to rows of the global data passed to the orchestrator.
type Fold struct {
	// Train are the rows used to fit the model for this fold. For
	// contiguous folds they are ordered wrap-around: the rows after the
	// validation slice followed by the rows before it.
	Train []int
	// Val are the held-out rows used for monitoring and evaluation. For
	// contiguous folds they form the slice [start, end).
	Val []int
}

// Contiguous splits nData rows into nFolds folds with contiguous
// validation slices of width nData/nFolds. Fold i holds out
// [i*w, (i+1)*w) and trains on all other rows of [0, nFolds*w), taken
// wrap-around. When nData is not divisible by nFolds the remainder rows
// are dropped from every fold, so the folds always partition [0, nFolds*w)
// exactly: each retained row is held out exactly once.
//
// Contiguous panics if nData or nFolds is not positive, or if nFolds
// exceeds nData.
func Contiguous(nData, nFolds int) []Fold {
	if nFolds <= 0 {
		panic("fold: nonpositive number of folds")
	}
	if nData <= 0 {
		panic("fold: nonpositive amount of data")
	}
	if nFolds > nData {
		panic("fold: more folds than data")
	}

	w := nData / nFolds
	pool := nFolds * w
	folds := make([]Fold, nFolds)
	for i := range folds {
		start := i * w
		end := start + w

		folds[i].Val = make([]int, w)
		for j := range folds[i].Val {
			folds[i].Val[j] = start + j
		}

		folds[i].Train = make([]int, 0, pool-w)
		for j := end; j < pool; j++ {
			folds[i].Train = append(folds[i].Train, j)
		}
		for j := 0; j < start; j++ {
			folds[i].Train = append(folds[i].Train, j)
		}
	}
	return folds
}

// Partition splits nData rows into nFolds random folds drawn from a
// permutation of rng. Every row appears in testing exactly once and in
// training nFolds-1 times; when nData is not divisible by nFolds the
// earlier folds receive one extra testing row. If nFolds exceeds nData it
// is reduced to nData.
//
// Partition panics if nData or nFolds is negative, or if rng is nil.
func Partition(nData, nFolds int, rng *rand.Rand) (training, testing [][]int) {
	if nFolds < 0 {
		panic("fold: negative number of folds")
	}
	if nData < 0 {
		panic("fold: negative amount of data")
	}
	if rng == nil {
		panic("fold: nil rng")
	}
	if nFolds > nData {
		nFolds = nData
	}

	perm := rng.Perm(nData)

	training = make([][]int, nFolds)
	testing = make([][]int, nFolds)

	nPerFold := nData / nFolds
	remainder := nData % nFolds

	idx := 0
	for i := 0; i < nFolds; i++ {
		nTest := nPerFold
		if i < remainder {
			nTest++
		}
		testing[i] = make([]int, nTest)
		copy(testing[i], perm[idx:idx+nTest])

		training[i] = make([]int, nData-nTest)
		copy(training[i], perm[:idx])
		copy(training[i][idx:], perm[idx+nTest:])

		idx += nTest
	}
	if idx != nData {
		panic("fold: bad partition")
	}
	return training, testing
}
