// Package tree provides a CART decision tree classifier with a
// scikit-learn compatible surface.
package tree

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/pipefit/core/model"
	"github.com/YuminosukeSato/pipefit/metrics"
	"github.com/YuminosukeSato/pipefit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// treeNode is one node of the fitted tree. Leaves carry the class
// distribution of the training samples that reached them.
type treeNode struct {
	Feature   int
	Threshold float64
	Left      *treeNode
	Right     *treeNode

	// Leaf payload
	IsLeaf bool
	Counts []float64 // per-class sample counts, indexed like ClassLabels
}

// DecisionTreeClassifier is a binary-split decision tree grown greedily.
// Split selection is deterministic: candidates are scanned in feature
// order and a new split is taken only on a strict impurity improvement,
// so the first best candidate wins ties.
type DecisionTreeClassifier struct {
	model.BaseEstimator

	// Hyperparameters
	criterion      string // "gini" or "entropy"
	maxDepth       int    // 0 means unlimited
	minSamplesLeaf int

	// Fitted state, public for gob encoding.
	Root        *treeNode
	ClassLabels []int
	NFeatures   int
}

// DecisionTreeOption is a functional option for DecisionTreeClassifier
type DecisionTreeOption func(*DecisionTreeClassifier)

// NewDecisionTreeClassifier creates a new DecisionTreeClassifier
func NewDecisionTreeClassifier(opts ...DecisionTreeOption) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		criterion:      "gini",
		maxDepth:       0,
		minSamplesLeaf: 1,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

// WithCriterion sets the impurity criterion ("gini" or "entropy")
func WithCriterion(criterion string) DecisionTreeOption {
	return func(dt *DecisionTreeClassifier) {
		dt.criterion = criterion
	}
}

// WithMaxDepth sets the maximum tree depth (0 means unlimited)
func WithMaxDepth(depth int) DecisionTreeOption {
	return func(dt *DecisionTreeClassifier) {
		dt.maxDepth = depth
	}
}

// WithMinSamplesLeaf sets the minimum number of samples per leaf
func WithMinSamplesLeaf(n int) DecisionTreeOption {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesLeaf = n
	}
}

// Fit grows the tree on the training data
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "y must be a column vector")
	}
	if dt.criterion != "gini" && dt.criterion != "entropy" {
		return errors.NewValidationError("criterion", "must be \"gini\" or \"entropy\"", dt.criterion)
	}
	if dt.minSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be >= 1", dt.minSamplesLeaf)
	}

	dt.extractClasses(y)
	dt.NFeatures = nFeatures

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	dt.Root = dt.grow(X, y, indices, 0)
	dt.SetFitted()
	return nil
}

// extractClasses identifies unique class labels in ascending order
func (dt *DecisionTreeClassifier) extractClasses(y mat.Matrix) {
	rows, _ := y.Dims()
	seen := make(map[int]bool)
	for i := 0; i < rows; i++ {
		seen[int(y.At(i, 0))] = true
	}

	dt.ClassLabels = make([]int, 0, len(seen))
	for class := range seen {
		dt.ClassLabels = append(dt.ClassLabels, class)
	}
	sort.Ints(dt.ClassLabels)
}

// classCounts tallies the samples at indices into per-class counts.
func (dt *DecisionTreeClassifier) classCounts(y mat.Matrix, indices []int) []float64 {
	counts := make([]float64, len(dt.ClassLabels))
	for _, i := range indices {
		label := int(y.At(i, 0))
		for c, class := range dt.ClassLabels {
			if class == label {
				counts[c]++
				break
			}
		}
	}
	return counts
}

// impurity computes gini or entropy from class counts.
func (dt *DecisionTreeClassifier) impurity(counts []float64) float64 {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}

	if dt.criterion == "entropy" {
		h := 0.0
		for _, c := range counts {
			if c > 0 {
				p := c / total
				h -= p * math.Log2(p)
			}
		}
		return h
	}

	// gini
	g := 1.0
	for _, c := range counts {
		p := c / total
		g -= p * p
	}
	return g
}

func isPure(counts []float64) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

// grow builds a subtree for the given sample indices.
func (dt *DecisionTreeClassifier) grow(X, y mat.Matrix, indices []int, depth int) *treeNode {
	counts := dt.classCounts(y, indices)

	if isPure(counts) ||
		(dt.maxDepth > 0 && depth >= dt.maxDepth) ||
		len(indices) < 2*dt.minSamplesLeaf {
		return &treeNode{IsLeaf: true, Counts: counts}
	}

	feature, threshold, found := dt.bestSplit(X, y, indices)
	if !found {
		return &treeNode{IsLeaf: true, Counts: counts}
	}

	var left, right []int
	for _, i := range indices {
		if X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      dt.grow(X, y, left, depth+1),
		Right:     dt.grow(X, y, right, depth+1),
	}
}

// bestSplit scans every feature and candidate threshold and returns the
// split with the lowest weighted impurity. Features are scanned in index
// order and thresholds in ascending order, and only a strictly lower
// impurity replaces the current best, so the enumeration order (and
// therefore tie-breaking) is fixed. Zero-gain splits are allowed; the
// purity, depth and leaf-size checks in grow are the stopping rules.
func (dt *DecisionTreeClassifier) bestSplit(X, y mat.Matrix, indices []int) (int, float64, bool) {
	total := float64(len(indices))
	bestImpurity := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	for feature := 0; feature < dt.NFeatures; feature++ {
		values := make([]float64, 0, len(indices))
		for _, i := range indices {
			values = append(values, X.At(i, feature))
		}
		sort.Float64s(values)

		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			threshold := (values[v] + values[v-1]) / 2

			leftCounts := make([]float64, len(dt.ClassLabels))
			rightCounts := make([]float64, len(dt.ClassLabels))
			nLeft, nRight := 0, 0
			for _, i := range indices {
				label := int(y.At(i, 0))
				c := 0
				for ci, class := range dt.ClassLabels {
					if class == label {
						c = ci
						break
					}
				}
				if X.At(i, feature) <= threshold {
					leftCounts[c]++
					nLeft++
				} else {
					rightCounts[c]++
					nRight++
				}
			}

			if nLeft < dt.minSamplesLeaf || nRight < dt.minSamplesLeaf {
				continue
			}

			weighted := (float64(nLeft)*dt.impurity(leftCounts) +
				float64(nRight)*dt.impurity(rightCounts)) / total

			if weighted < bestImpurity {
				bestImpurity = weighted
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// leaf walks the tree to the leaf for one sample.
func (dt *DecisionTreeClassifier) leaf(X mat.Matrix, row int) *treeNode {
	node := dt.Root
	for !node.IsLeaf {
		if X.At(row, node.Feature) <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// Predict returns the majority class of the reached leaf for each sample.
// Ties go to the smallest class label.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !dt.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != dt.NFeatures {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.Predict", dt.NFeatures, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		counts := dt.leaf(X, i).Counts
		best, bestCount := 0, -1.0
		for c, count := range counts {
			if count > bestCount {
				bestCount = count
				best = c
			}
		}
		predictions.Set(i, 0, float64(dt.ClassLabels[best]))
	}

	return predictions, nil
}

// PredictProba returns the class distribution of the reached leaf
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !dt.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != dt.NFeatures {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictProba", dt.NFeatures, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, len(dt.ClassLabels), nil)
	for i := 0; i < nSamples; i++ {
		counts := dt.leaf(X, i).Counts
		total := 0.0
		for _, c := range counts {
			total += c
		}
		for c, count := range counts {
			probas.Set(i, c, count/total)
		}
	}

	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// Classes returns the unique classes seen during fitting
func (dt *DecisionTreeClassifier) Classes() []int {
	out := make([]int, len(dt.ClassLabels))
	copy(out, dt.ClassLabels)
	return out
}

// Clone returns an unfitted copy with identical hyperparameters
func (dt *DecisionTreeClassifier) Clone() model.Estimator {
	return NewDecisionTreeClassifier(
		WithCriterion(dt.criterion),
		WithMaxDepth(dt.maxDepth),
		WithMinSamplesLeaf(dt.minSamplesLeaf),
	)
}

// GetParams returns the model hyperparameters
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":        dt.criterion,
		"max_depth":        dt.maxDepth,
		"min_samples_leaf": dt.minSamplesLeaf,
	}
}

// SetParams sets the model hyperparameters
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "criterion":
			v, ok := value.(string)
			if !ok {
				return errors.NewValidationError(key, "must be a string", value)
			}
			dt.criterion = v
		case "max_depth":
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			dt.maxDepth = v
		case "min_samples_leaf":
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			dt.minSamplesLeaf = v
		default:
			return errors.NewValueError("DecisionTreeClassifier.SetParams", "unknown parameter: "+key)
		}
	}
	return nil
}
