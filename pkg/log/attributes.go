// Package log defines standard attribute keys for model selection runs.
//
// Using these keys consistently across the orchestrator, the grid search and
// the CLI keeps the JSON logs filterable: every record about one candidate
// carries the same "candidate.name" key, every score the same metric keys.
package log

// Candidate and operation context.
const (
	// CandidateKey identifies the registered candidate being evaluated.
	CandidateKey = "candidate.name"

	// ModelNameKey identifies the type of estimator behind the candidate.
	// Examples: "Pipeline", "LogisticRegression", "DecisionTreeClassifier"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "grid_search", "select"
	OperationKey = "ml.operation"
)

// Data shape.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"
)

// Selection results.
const (
	// TrainScoreKey is the training (or mean cross-validation) score of a candidate.
	TrainScoreKey = "score.train"

	// TestScoreKey is the held-out test score of a candidate.
	TestScoreKey = "score.test"

	// BestParamsKey carries the winning hyperparameter combination of an
	// inner grid search, formatted as a map.
	BestParamsKey = "search.best_params"

	// CVFoldsKey is the fold count used for the inner cross-validation.
	CVFoldsKey = "search.cv_folds"

	// CombinationsKey is the size of the enumerated parameter grid.
	CombinationsKey = "search.combinations"

	// WinnerKey names the candidate selected by the final reduction.
	WinnerKey = "selection.winner"

	// DurationMsKey is the wall-clock duration of an operation in milliseconds.
	DurationMsKey = "duration_ms"
)
