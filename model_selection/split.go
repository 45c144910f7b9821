// Package model_selection provides train/test splitting, cross-validation
// splitters and exhaustive hyperparameter search.
package model_selection

import (
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/pipefit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// CVFold represents a single fold in cross-validation
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// Splitter defines the interface for cross-validation splitters
type Splitter interface {
	Split(X, y mat.Matrix) []CVFold
	NSplits() int
}

// KFold implements k-fold cross-validation splitting
type KFold struct {
	K          int
	Shuffle    bool
	RandomSeed int
}

// NewKFold creates a new k-fold splitter
func NewKFold(k int, shuffle bool, randomSeed int) *KFold {
	if k < 2 {
		k = 5 // Default to 5-fold
	}
	return &KFold{K: k, Shuffle: shuffle, RandomSeed: randomSeed}
}

// NSplits returns the number of splits
func (kf *KFold) NSplits() int {
	return kf.K
}

// Split generates train/test indices for each fold
func (kf *KFold) Split(X, _ mat.Matrix) []CVFold {
	nSamples, _ := X.Dims()

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.RandomSeed), uint64(kf.RandomSeed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.K)
	foldSize := nSamples / kf.K
	remainder := nSamples % kf.K

	current := 0
	for i := 0; i < kf.K; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		testIndices := make([]int, testSize)
		copy(testIndices, indices[current:current+testSize])

		inTest := make(map[int]bool, testSize)
		for _, idx := range testIndices {
			inTest[idx] = true
		}
		trainIndices := make([]int, 0, nSamples-testSize)
		for _, idx := range indices {
			if !inTest[idx] {
				trainIndices = append(trainIndices, idx)
			}
		}

		folds[i] = CVFold{TrainIndices: trainIndices, TestIndices: testIndices}
		current += testSize
	}

	return folds
}

// StratifiedKFold implements stratified k-fold cross-validation:
// each fold preserves the per-class sample proportions.
type StratifiedKFold struct {
	K          int
	Shuffle    bool
	RandomSeed int
}

// NewStratifiedKFold creates a new stratified k-fold splitter
func NewStratifiedKFold(k int, shuffle bool, randomSeed int) *StratifiedKFold {
	if k < 2 {
		k = 5
	}
	return &StratifiedKFold{K: k, Shuffle: shuffle, RandomSeed: randomSeed}
}

// NSplits returns the number of splits
func (skf *StratifiedKFold) NSplits() int {
	return skf.K
}

// Split generates stratified train/test indices for each fold
func (skf *StratifiedKFold) Split(X, y mat.Matrix) []CVFold {
	nSamples, _ := X.Dims()

	// Group indices by class, iterating classes in sorted order so the
	// fold layout is reproducible.
	classIndices := make(map[int][]int)
	for i := 0; i < nSamples; i++ {
		label := int(y.At(i, 0))
		classIndices[label] = append(classIndices[label], i)
	}
	labels := make([]int, 0, len(classIndices))
	for label := range classIndices {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	if skf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(skf.RandomSeed), uint64(skf.RandomSeed)))
		for _, label := range labels {
			indices := classIndices[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]CVFold, skf.K)

	// Deal each class's samples across the folds.
	for _, label := range labels {
		indices := classIndices[label]
		nClass := len(indices)
		foldSize := nClass / skf.K
		remainder := nClass % skf.K

		current := 0
		for i := 0; i < skf.K; i++ {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			for j := 0; j < testSize && current < nClass; j++ {
				folds[i].TestIndices = append(folds[i].TestIndices, indices[current])
				current++
			}
		}
	}

	for i := 0; i < skf.K; i++ {
		inTest := make(map[int]bool, len(folds[i].TestIndices))
		for _, idx := range folds[i].TestIndices {
			inTest[idx] = true
		}
		for j := 0; j < nSamples; j++ {
			if !inTest[j] {
				folds[i].TrainIndices = append(folds[i].TrainIndices, j)
			}
		}
	}

	return folds
}

// TrainTestSplit shuffles the samples with the given seed and splits them
// into train and test partitions. testSize is the test fraction in (0, 1).
func TrainTestSplit(X, y mat.Matrix, testSize float64, seed int64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	nSamples, _ := X.Dims()
	yRows, _ := y.Dims()

	if nSamples == 0 {
		return nil, nil, nil, nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", nSamples, yRows, 0)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	nTest := int(float64(nSamples) * testSize)
	if nTest == 0 {
		nTest = 1
	}
	nTrain := nSamples - nTest

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	XTrain, yTrain = subset(X, y, indices[:nTrain])
	XTest, yTest = subset(X, y, indices[nTrain:])
	return XTrain, XTest, yTrain, yTest, nil
}

// subset extracts the rows at indices, in ascending index order.
func subset(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	rows := len(indices)
	_, xCols := X.Dims()
	_, yCols := y.Dims()

	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	xSub := mat.NewDense(rows, xCols, nil)
	ySub := mat.NewDense(rows, yCols, nil)
	for i, idx := range sorted {
		for j := 0; j < xCols; j++ {
			xSub.Set(i, j, X.At(idx, j))
		}
		for j := 0; j < yCols; j++ {
			ySub.Set(i, j, y.At(idx, j))
		}
	}
	return xSub, ySub
}
