// Package model provides the interfaces and base types shared by every
// estimator in pipefit. The selection core depends only on the capability
// set defined here, never on a concrete estimator.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
// For classifiers the score is mean accuracy on the given data.
type Scorer interface {
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow parameter modification.
type ParameterSetter interface {
	// SetParams sets the model's hyperparameters.
	SetParams(params map[string]interface{}) error
}

// Cloner is the interface for models that can produce an unfitted copy of
// themselves with identical hyperparameters. Grid search relies on this to
// evaluate each parameter combination on a fresh estimator.
type Cloner interface {
	Clone() Estimator
}

// Tunable is the capability set a hyperparameter search needs:
// a trainable, scorable estimator whose parameters can be inspected,
// reassigned and cloned.
type Tunable interface {
	Estimator
	Scorer
	ParameterGetter
	ParameterSetter
	Cloner
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Estimator
	Scorer

	// PredictProba returns probability estimates for each class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique classes seen during fitting.
	Classes() []int
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	// Save saves the model to a file.
	Save(path string) error

	// Load loads the model from a file.
	Load(path string) error
}
