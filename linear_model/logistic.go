// Package linear_model provides linear classifiers with a scikit-learn
// compatible surface.
package linear_model

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/pipefit/core/model"
	"github.com/YuminosukeSato/pipefit/metrics"
	"github.com/YuminosukeSato/pipefit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegression implements logistic regression for classification.
// Binary problems are fit directly; multiclass problems use one-vs-rest.
// Weights are zero-initialized, so fitting is deterministic for fixed
// inputs and hyperparameters.
type LogisticRegression struct {
	model.BaseEstimator

	// Hyperparameters
	penalty      string  // Regularization: "l2", "none"
	c            float64 // Inverse regularization strength (1/alpha)
	fitIntercept bool    // Whether to fit intercept
	maxIter      int     // Maximum iterations
	tol          float64 // Tolerance for stopping

	// Model parameters, public for gob encoding
	Coef        [][]float64 // One weight vector per binary problem
	Intercept   []float64
	ClassLabels []int
	NClasses    int
	NFeatures   int
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		penalty:      "l2",
		c:            1.0,
		fitIntercept: true,
		maxIter:      100,
		tol:          1e-4,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRPenalty sets the regularization type ("l2" or "none")
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.c = c
	}
}

// WithLRFitIntercept sets whether to fit intercept
func WithLRFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// Fit trains the logistic regression model
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples != yRows {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("LogisticRegression.Fit", "y must be a column vector")
	}
	if nSamples == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}

	lr.extractClasses(y)
	lr.NFeatures = nFeatures

	nProblems := lr.NClasses
	if lr.NClasses == 2 {
		nProblems = 1
	}
	lr.Coef = make([][]float64, nProblems)
	for i := range lr.Coef {
		lr.Coef[i] = make([]float64, nFeatures)
	}
	lr.Intercept = make([]float64, nProblems)

	// Each binary subproblem: positive class vs the rest.
	for problem := 0; problem < nProblems; problem++ {
		positive := lr.ClassLabels[problem]
		if lr.NClasses == 2 {
			positive = lr.ClassLabels[1]
		}

		target := make([]float64, nSamples)
		for i := 0; i < nSamples; i++ {
			if int(y.At(i, 0)) == positive {
				target[i] = 1.0
			}
		}

		if converged := lr.fitBinaryProblem(X, target, problem); !converged {
			errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter))
		}
	}

	lr.SetFitted()
	return nil
}

// fitBinaryProblem runs gradient descent for one binary subproblem and
// reports whether the gradient norm dropped below tol.
func (lr *LogisticRegression) fitBinaryProblem(X mat.Matrix, target []float64, problem int) bool {
	nSamples, nFeatures := X.Dims()
	weights := lr.Coef[problem]
	intercept := &lr.Intercept[problem]

	baseLearningRate := 1.0

	for iter := 0; iter < lr.maxIter; iter++ {
		gradW := make([]float64, nFeatures)
		gradB := 0.0

		for i := 0; i < nSamples; i++ {
			z := *intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * weights[j]
			}
			residual := sigmoid(z) - target[i]
			gradB += residual
			for j := 0; j < nFeatures; j++ {
				gradW[j] += residual * X.At(i, j)
			}
		}

		for j := range gradW {
			gradW[j] /= float64(nSamples)
		}
		gradB /= float64(nSamples)

		if lr.penalty == "l2" {
			lambda := 1.0 / lr.c
			for j := range weights {
				gradW[j] += lambda * weights[j]
			}
		}

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))

		for j := range weights {
			weights[j] -= learningRate * gradW[j]
		}
		if lr.fitIntercept {
			*intercept -= learningRate * gradB
		}

		maxGrad := math.Abs(gradB)
		for _, g := range gradW {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.tol {
			return true
		}
	}

	return false
}

// extractClasses identifies unique class labels in ascending order
func (lr *LogisticRegression) extractClasses(y mat.Matrix) {
	rows, _ := y.Dims()
	seen := make(map[int]bool)
	for i := 0; i < rows; i++ {
		seen[int(y.At(i, 0))] = true
	}

	lr.ClassLabels = make([]int, 0, len(seen))
	for class := range seen {
		lr.ClassLabels = append(lr.ClassLabels, class)
	}
	sort.Ints(lr.ClassLabels)
	lr.NClasses = len(lr.ClassLabels)
}

// decision computes the linear score of each binary subproblem for one sample.
func (lr *LogisticRegression) decision(X mat.Matrix, row int) []float64 {
	scores := make([]float64, len(lr.Coef))
	for p := range lr.Coef {
		z := lr.Intercept[p]
		for j := 0; j < lr.NFeatures; j++ {
			z += X.At(row, j) * lr.Coef[p][j]
		}
		scores[p] = z
	}
	return scores
}

// Predict makes predictions for input data
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.NFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.Predict", lr.NFeatures, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		scores := lr.decision(X, i)
		if lr.NClasses == 2 {
			if sigmoid(scores[0]) >= 0.5 {
				predictions.Set(i, 0, float64(lr.ClassLabels[1]))
			} else {
				predictions.Set(i, 0, float64(lr.ClassLabels[0]))
			}
			continue
		}

		best, bestScore := 0, math.Inf(-1)
		for p, z := range scores {
			if z > bestScore {
				bestScore = z
				best = p
			}
		}
		predictions.Set(i, 0, float64(lr.ClassLabels[best]))
	}

	return predictions, nil
}

// PredictProba returns probability estimates for each class
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}

	nSamples, _ := X.Dims()
	probas := mat.NewDense(nSamples, lr.NClasses, nil)

	for i := 0; i < nSamples; i++ {
		scores := lr.decision(X, i)

		if lr.NClasses == 2 {
			p1 := sigmoid(scores[0])
			probas.Set(i, 0, 1.0-p1)
			probas.Set(i, 1, p1)
			continue
		}

		// Softmax over the OVR scores, shifted for stability.
		maxScore := math.Inf(-1)
		for _, z := range scores {
			if z > maxScore {
				maxScore = z
			}
		}
		sum := 0.0
		exp := make([]float64, lr.NClasses)
		for p, z := range scores {
			exp[p] = math.Exp(z - maxScore)
			sum += exp[p]
		}
		for p := range exp {
			probas.Set(i, p, exp[p]/sum)
		}
	}

	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// Classes returns the unique classes seen during fitting
func (lr *LogisticRegression) Classes() []int {
	out := make([]int, len(lr.ClassLabels))
	copy(out, lr.ClassLabels)
	return out
}

// Clone returns an unfitted copy with identical hyperparameters
func (lr *LogisticRegression) Clone() model.Estimator {
	return NewLogisticRegression(
		WithLRPenalty(lr.penalty),
		WithLRC(lr.c),
		WithLRFitIntercept(lr.fitIntercept),
		WithLRMaxIter(lr.maxIter),
		WithLRTol(lr.tol),
	)
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.c,
		"fit_intercept": lr.fitIntercept,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
	}
}

// SetParams sets the model hyperparameters
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "penalty":
			v, ok := value.(string)
			if !ok {
				return errors.NewValidationError(key, "must be a string", value)
			}
			lr.penalty = v
		case "C":
			v, ok := value.(float64)
			if !ok {
				return errors.NewValidationError(key, "must be a float64", value)
			}
			lr.c = v
		case "fit_intercept":
			v, ok := value.(bool)
			if !ok {
				return errors.NewValidationError(key, "must be a bool", value)
			}
			lr.fitIntercept = v
		case "max_iter":
			v, ok := value.(int)
			if !ok {
				return errors.NewValidationError(key, "must be an int", value)
			}
			lr.maxIter = v
		case "tol":
			v, ok := value.(float64)
			if !ok {
				return errors.NewValidationError(key, "must be a float64", value)
			}
			lr.tol = v
		default:
			return errors.NewValueError("LogisticRegression.SetParams", "unknown parameter: "+key)
		}
	}
	return nil
}

// sigmoid computes the sigmoid function
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
