package model_selection

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/YuminosukeSato/pipefit/core/model"
	"github.com/YuminosukeSato/pipefit/pkg/errors"
	"github.com/YuminosukeSato/pipefit/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// ParamRange is one hyperparameter axis of a grid: a name and its ordered
// candidate values.
type ParamRange struct {
	Name   string
	Values []interface{}
}

// ParamGrid describes an exhaustive search space as an ordered list of
// parameter axes. Order matters: it fixes the enumeration order of the
// Cartesian product (see Combinations), and with it which combination wins
// an exact score tie.
type ParamGrid []ParamRange

// Combinations enumerates the Cartesian product in odometer order: the
// last declared parameter varies fastest. The order is stable across runs,
// which makes tie-breaking ("first enumerated wins") reproducible.
func (g ParamGrid) Combinations() []map[string]interface{} {
	if len(g) == 0 {
		return nil
	}

	total := 1
	for _, axis := range g {
		if len(axis.Values) == 0 {
			return nil
		}
		total *= len(axis.Values)
	}

	combos := make([]map[string]interface{}, 0, total)
	counters := make([]int, len(g))
	for {
		combo := make(map[string]interface{}, len(g))
		for i, axis := range g {
			combo[axis.Name] = axis.Values[counters[i]]
		}
		combos = append(combos, combo)

		// Advance the odometer from the rightmost axis.
		pos := len(g) - 1
		for pos >= 0 {
			counters[pos]++
			if counters[pos] < len(g[pos].Values) {
				break
			}
			counters[pos] = 0
			pos--
		}
		if pos < 0 {
			return combos
		}
	}
}

// Validate checks the grid for duplicate or empty axes.
func (g ParamGrid) Validate() error {
	seen := make(map[string]bool, len(g))
	for _, axis := range g {
		if axis.Name == "" {
			return errors.NewValueError("ParamGrid", "parameter names must not be empty")
		}
		if seen[axis.Name] {
			return errors.NewValueError("ParamGrid", fmt.Sprintf("duplicate parameter %q", axis.Name))
		}
		if len(axis.Values) == 0 {
			return errors.NewValueError("ParamGrid", fmt.Sprintf("parameter %q has no values", axis.Name))
		}
		seen[axis.Name] = true
	}
	return nil
}

// GridSearchCV exhaustively evaluates a parameter grid with k-fold
// cross-validation and refits the best combination on the full data.
//
// Scoring uses the estimator's own Score (mean accuracy for the
// classifiers in this module). Combinations are compared with a strict
// greater-than, so the first enumerated combination wins exact ties.
type GridSearchCV struct {
	estimator model.Tunable
	grid      ParamGrid
	cv        int
	shuffleCV bool
	seed      int

	// BestParams is the winning parameter combination.
	BestParams map[string]interface{}

	// BestScore is the winning combination's mean cross-validation score.
	BestScore float64

	// BestEstimator is a fresh clone refit on the full training data with
	// BestParams applied.
	BestEstimator model.Estimator

	fitted bool
}

// GridSearchOption is a functional option for GridSearchCV
type GridSearchOption func(*GridSearchCV)

// WithCV sets the number of cross-validation folds (default 5)
func WithCV(folds int) GridSearchOption {
	return func(gs *GridSearchCV) {
		gs.cv = folds
	}
}

// WithShuffleCV enables shuffling inside the fold splitter with the given seed.
// Disabled by default: deterministic folds keep repeated searches bit-identical.
func WithShuffleCV(seed int) GridSearchOption {
	return func(gs *GridSearchCV) {
		gs.shuffleCV = true
		gs.seed = seed
	}
}

// NewGridSearchCV creates a new grid search over the estimator's parameters
func NewGridSearchCV(estimator model.Tunable, grid ParamGrid, opts ...GridSearchOption) *GridSearchCV {
	gs := &GridSearchCV{
		estimator: estimator,
		grid:      grid,
		cv:        5,
	}
	for _, opt := range opts {
		opt(gs)
	}
	return gs
}

// tunableClone clones the wrapped estimator and asserts the capability set
// needed to apply parameters and score folds.
func (gs *GridSearchCV) tunableClone() (model.Tunable, error) {
	clone, ok := gs.estimator.Clone().(model.Tunable)
	if !ok {
		return nil, errors.NewValueError("GridSearchCV",
			"estimator clone does not retain the tunable capability set")
	}
	return clone, nil
}

// Fit runs the exhaustive search and refits the winner.
func (gs *GridSearchCV) Fit(X, y mat.Matrix) error {
	if gs.estimator == nil {
		return errors.NewValueError("GridSearchCV.Fit", "estimator must not be nil")
	}
	if err := gs.grid.Validate(); err != nil {
		return err
	}
	if gs.cv < 2 {
		return errors.NewValidationError("cv", "must be >= 2", gs.cv)
	}

	combos := gs.grid.Combinations()
	if len(combos) == 0 {
		return errors.NewValueError("GridSearchCV.Fit", "parameter grid is empty")
	}

	started := time.Now()
	splitter := NewStratifiedKFold(gs.cv, gs.shuffleCV, gs.seed)
	folds := splitter.Split(X, y)

	bestIdx := -1
	bestScore := 0.0

	for idx, combo := range combos {
		score, err := gs.crossValidate(X, y, folds, combo)
		if err != nil {
			return errors.Wrapf(err, "grid combination %v", combo)
		}

		// Strict comparison: the first enumerated combination keeps the
		// lead on an exact tie.
		if bestIdx < 0 || score > bestScore {
			bestIdx = idx
			bestScore = score
		}
	}

	// Refit the winner on the full training data.
	winner, err := gs.tunableClone()
	if err != nil {
		return err
	}
	if err := winner.SetParams(combos[bestIdx]); err != nil {
		return err
	}
	if err := winner.Fit(X, y); err != nil {
		return errors.Wrap(err, "refit of best combination failed")
	}

	gs.BestParams = combos[bestIdx]
	gs.BestScore = bestScore
	gs.BestEstimator = winner
	gs.fitted = true

	slog.Debug("grid search finished",
		log.OperationKey, "grid_search",
		log.CombinationsKey, len(combos),
		log.CVFoldsKey, gs.cv,
		log.TrainScoreKey, bestScore,
		log.BestParamsKey, combos[bestIdx],
		log.DurationMsKey, time.Since(started).Milliseconds(),
	)

	return nil
}

// crossValidate computes the mean validation score of one combination.
func (gs *GridSearchCV) crossValidate(X, y mat.Matrix, folds []CVFold, combo map[string]interface{}) (float64, error) {
	sum := 0.0
	for _, fold := range folds {
		trainX, trainY := subset(X, y, fold.TrainIndices)
		valX, valY := subset(X, y, fold.TestIndices)

		candidate, err := gs.tunableClone()
		if err != nil {
			return 0, err
		}
		if err := candidate.SetParams(combo); err != nil {
			return 0, err
		}
		if err := candidate.Fit(trainX, trainY); err != nil {
			return 0, err
		}

		score, err := candidate.Score(valX, valY)
		if err != nil {
			return 0, err
		}
		sum += score
	}
	return sum / float64(len(folds)), nil
}

// IsFitted reports whether the search has run.
func (gs *GridSearchCV) IsFitted() bool {
	return gs.fitted
}

// CrossValScore computes the mean k-fold cross-validation score of an
// estimator without any parameter search.
func CrossValScore(estimator model.Tunable, X, y mat.Matrix, splitter Splitter) (float64, error) {
	folds := splitter.Split(X, y)
	if len(folds) == 0 {
		return 0, errors.NewValueError("CrossValScore", "splitter produced no folds")
	}

	sum := 0.0
	for _, fold := range folds {
		trainX, trainY := subset(X, y, fold.TrainIndices)
		valX, valY := subset(X, y, fold.TestIndices)

		clone, ok := estimator.Clone().(model.Tunable)
		if !ok {
			return 0, errors.NewValueError("CrossValScore",
				"estimator clone does not retain the tunable capability set")
		}
		if err := clone.Fit(trainX, trainY); err != nil {
			return 0, err
		}
		score, err := clone.Score(valX, valY)
		if err != nil {
			return 0, err
		}
		sum += score
	}
	return sum / float64(len(folds)), nil
}
