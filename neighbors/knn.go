// Package neighbors provides a brute-force k-nearest-neighbors classifier.
package neighbors

import (
	"sort"

	"github.com/YuminosukeSato/pipefit/core/model"
	"github.com/YuminosukeSato/pipefit/core/parallel"
	"github.com/YuminosukeSato/pipefit/metrics"
	"github.com/YuminosukeSato/pipefit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// KNeighborsClassifier predicts the majority class among the k nearest
// training samples under Euclidean distance. Neighbors at equal distance
// are ordered by training index and class vote ties go to the smallest
// label, so predictions are deterministic.
type KNeighborsClassifier struct {
	model.BaseEstimator

	// NNeighbors is the number of neighbors to vote (default 5)
	NNeighbors int

	// Fitted state, public for gob encoding. KNN memorizes the training set.
	TrainX      *mat.Dense
	TrainY      []int
	ClassLabels []int
	NFeatures   int
}

// KNNOption is a functional option for KNeighborsClassifier
type KNNOption func(*KNeighborsClassifier)

// NewKNeighborsClassifier creates a new KNeighborsClassifier
func NewKNeighborsClassifier(opts ...KNNOption) *KNeighborsClassifier {
	knn := &KNeighborsClassifier{NNeighbors: 5}
	for _, opt := range opts {
		opt(knn)
	}
	return knn
}

// WithNNeighbors sets the number of neighbors
func WithNNeighbors(k int) KNNOption {
	return func(knn *KNeighborsClassifier) {
		knn.NNeighbors = k
	}
}

// Fit memorizes the training data
func (knn *KNeighborsClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 {
		return errors.NewModelError("KNeighborsClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("KNeighborsClassifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("KNeighborsClassifier.Fit", "y must be a column vector")
	}
	if knn.NNeighbors < 1 {
		return errors.NewValidationError("n_neighbors", "must be >= 1", knn.NNeighbors)
	}
	if knn.NNeighbors > nSamples {
		return errors.NewValidationError("n_neighbors",
			"must not exceed the number of training samples", knn.NNeighbors)
	}

	knn.TrainX = mat.DenseCopyOf(X)
	knn.TrainY = make([]int, nSamples)
	seen := make(map[int]bool)
	for i := 0; i < nSamples; i++ {
		label := int(y.At(i, 0))
		knn.TrainY[i] = label
		seen[label] = true
	}

	knn.ClassLabels = make([]int, 0, len(seen))
	for class := range seen {
		knn.ClassLabels = append(knn.ClassLabels, class)
	}
	sort.Ints(knn.ClassLabels)

	knn.NFeatures = nFeatures
	knn.SetFitted()
	return nil
}

// neighborVotes returns per-class vote counts of the k nearest neighbors.
func (knn *KNeighborsClassifier) neighborVotes(X mat.Matrix, row int) []int {
	n, _ := knn.TrainX.Dims()

	type neighbor struct {
		dist  float64
		index int
	}
	all := make([]neighbor, n)
	for i := 0; i < n; i++ {
		d := 0.0
		for j := 0; j < knn.NFeatures; j++ {
			diff := X.At(row, j) - knn.TrainX.At(i, j)
			d += diff * diff
		}
		all[i] = neighbor{dist: d, index: i}
	}

	// Stable order: distance, then training index.
	sort.Slice(all, func(a, b int) bool {
		if all[a].dist != all[b].dist {
			return all[a].dist < all[b].dist
		}
		return all[a].index < all[b].index
	})

	votes := make([]int, len(knn.ClassLabels))
	for _, nb := range all[:knn.NNeighbors] {
		label := knn.TrainY[nb.index]
		for c, class := range knn.ClassLabels {
			if class == label {
				votes[c]++
				break
			}
		}
	}
	return votes
}

// Predict returns the majority vote among the k nearest neighbors
func (knn *KNeighborsClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !knn.IsFitted() {
		return nil, errors.NewNotFittedError("KNeighborsClassifier", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != knn.NFeatures {
		return nil, errors.NewDimensionError("KNeighborsClassifier.Predict", knn.NFeatures, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	parallel.Rows(nSamples, func(start, end int) {
		for i := start; i < end; i++ {
			votes := knn.neighborVotes(X, i)
			best, bestVotes := 0, -1
			for c, v := range votes {
				if v > bestVotes {
					bestVotes = v
					best = c
				}
			}
			predictions.Set(i, 0, float64(knn.ClassLabels[best]))
		}
	})

	return predictions, nil
}

// PredictProba returns the neighbor vote shares for each class
func (knn *KNeighborsClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !knn.IsFitted() {
		return nil, errors.NewNotFittedError("KNeighborsClassifier", "PredictProba")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != knn.NFeatures {
		return nil, errors.NewDimensionError("KNeighborsClassifier.PredictProba", knn.NFeatures, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, len(knn.ClassLabels), nil)
	k := float64(knn.NNeighbors)
	parallel.Rows(nSamples, func(start, end int) {
		for i := start; i < end; i++ {
			for c, v := range knn.neighborVotes(X, i) {
				probas.Set(i, c, float64(v)/k)
			}
		}
	})

	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels
func (knn *KNeighborsClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := knn.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// Classes returns the unique classes seen during fitting
func (knn *KNeighborsClassifier) Classes() []int {
	out := make([]int, len(knn.ClassLabels))
	copy(out, knn.ClassLabels)
	return out
}

// Clone returns an unfitted copy with identical hyperparameters
func (knn *KNeighborsClassifier) Clone() model.Estimator {
	return NewKNeighborsClassifier(WithNNeighbors(knn.NNeighbors))
}

// GetParams returns the model hyperparameters
func (knn *KNeighborsClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": knn.NNeighbors,
	}
}

// SetParams sets the model hyperparameters
func (knn *KNeighborsClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_neighbors":
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			knn.NNeighbors = v
		default:
			return errors.NewValueError("KNeighborsClassifier.SetParams", "unknown parameter: "+key)
		}
	}
	return nil
}
