package selection

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/YuminosukeSato/pipefit/core/model"
)

// EvaluationResult is the outcome of evaluating one candidate.
type EvaluationResult struct {
	// Name is the candidate's registry name.
	Name string

	// BestParams is the winning grid combination, or an empty map for a
	// candidate evaluated without a grid.
	BestParams map[string]interface{}

	// TrainScore is the mean cross-validation score for a grid candidate,
	// or the training-set score for a plain fit.
	TrainScore float64

	// TestScore is the score on the held-out test set. Selection reduces
	// over this value.
	TestScore float64

	// Estimator is the fitted model that produced TestScore.
	Estimator model.Estimator

	// Duration is the wall-clock time spent evaluating the candidate.
	Duration time.Duration
}

// SelectionReport is the result of a full selection run: every candidate's
// evaluation in registration order, plus the winner.
type SelectionReport struct {
	Results []EvaluationResult
	Winner  EvaluationResult
}

// reduce picks the winner: the candidate with the maximal test score,
// first registered wins on an exact tie. Results must be non-empty.
func reduce(results []EvaluationResult) EvaluationResult {
	winner := results[0]
	for _, r := range results[1:] {
		if r.TestScore > winner.TestScore {
			winner = r
		}
	}
	return winner
}

// String renders the report as a fixed-width table followed by the winner.
func (sr *SelectionReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %12s %12s  %s\n", "candidate", "train_score", "test_score", "best_params")
	for _, r := range sr.Results {
		fmt.Fprintf(&b, "%-24s %12.4f %12.4f  %s\n", r.Name, r.TrainScore, r.TestScore, formatParams(r.BestParams))
	}
	fmt.Fprintf(&b, "winner: %s (test_score=%.4f)\n", sr.Winner.Name, sr.Winner.TestScore)
	return b.String()
}

// formatParams renders parameters with sorted keys for stable output.
func formatParams(params map[string]interface{}) string {
	if len(params) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, params[k])
	}
	b.WriteString("}")
	return b.String()
}
