// Package selection fits a registry of candidate models against a common
// train/test split and reduces the results to a single winner.
//
// Candidates are evaluated in registration order. A candidate with a
// parameter grid is tuned with cross-validated grid search before its
// held-out score is taken; a candidate without a grid is fit as-is. The
// winner is the first candidate whose test score strictly exceeds every
// earlier one, so exact ties resolve to the earliest registration.
package selection

import (
	"github.com/YuminosukeSato/pipefit/core/model"
	"github.com/YuminosukeSato/pipefit/model_selection"
	"github.com/YuminosukeSato/pipefit/pkg/errors"
)

// defaultCVFolds is the fold count used when a candidate does not set one.
const defaultCVFolds = 5

// Scoring identifies the metric used to evaluate a candidate.
type Scoring string

// ScoringAccuracy scores with mean accuracy, the metric every classifier
// in this module implements as Score.
const ScoringAccuracy Scoring = "accuracy"

// Candidate is one model competing for selection.
type Candidate struct {
	// Name identifies the candidate in reports and logs. Unique per registry.
	Name string

	// Estimator is the model to evaluate. It is cloned before every fit,
	// so the registered instance is never mutated.
	Estimator model.Tunable

	// Grid, when non-empty, triggers cross-validated grid search over
	// these parameters before the held-out evaluation.
	Grid model_selection.ParamGrid

	// CVFolds is the fold count for grid search. Zero means defaultCVFolds.
	CVFolds int

	// Scoring selects the evaluation metric. Empty means ScoringAccuracy,
	// the only metric currently supported.
	Scoring Scoring
}

// validate checks the candidate before registration.
func (c Candidate) validate() error {
	if c.Name == "" {
		return errors.NewValueError("Candidate", "name must not be empty")
	}
	if c.Estimator == nil {
		return errors.NewValueError("Candidate", "estimator must not be nil")
	}
	if c.CVFolds < 0 {
		return errors.NewValidationError("cv_folds", "must be >= 0", c.CVFolds)
	}
	if c.Scoring != "" && c.Scoring != ScoringAccuracy {
		return errors.NewValidationError("scoring", "unsupported metric", string(c.Scoring))
	}
	if len(c.Grid) > 0 {
		if err := c.Grid.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// folds returns the effective fold count.
func (c Candidate) folds() int {
	if c.CVFolds == 0 {
		return defaultCVFolds
	}
	return c.CVFolds
}
