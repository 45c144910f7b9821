package selection

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pipefit/core/model"
	"github.com/YuminosukeSato/pipefit/model_selection"
	"github.com/YuminosukeSato/pipefit/pkg/errors"
	"github.com/YuminosukeSato/pipefit/pkg/log"
)

// Orchestrator runs every registered candidate against a common
// train/test split and reduces the results to a winner.
type Orchestrator struct {
	parallel   bool
	maxWorkers int
}

// OrchestratorOption is a functional option for Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithParallel evaluates candidates concurrently with at most maxWorkers
// goroutines. Results are still reported in registration order, so the
// report is identical to a sequential run.
func WithParallel(maxWorkers int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.parallel = true
		o.maxWorkers = maxWorkers
	}
}

// NewOrchestrator creates an orchestrator. Evaluation is sequential
// unless WithParallel is given.
func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run evaluates every candidate in reg on the given split and returns the
// full report. The registry must not be empty. Any candidate failure
// aborts the whole run with a CandidateEvaluationError naming the
// candidate; no partial report is returned.
func (o *Orchestrator) Run(ctx context.Context, reg *Registry, XTrain, yTrain, XTest, yTest mat.Matrix) (*SelectionReport, error) {
	candidates := reg.Candidates()
	if len(candidates) == 0 {
		return nil, errors.NewEmptyRegistryError()
	}

	nSamples, nFeatures := XTrain.Dims()
	slog.Info("selection run started",
		log.OperationKey, "selection_run",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		"candidates", len(candidates),
		"parallel", o.parallel,
	)
	started := time.Now()

	results := make([]EvaluationResult, len(candidates))

	if o.parallel {
		g, gctx := errgroup.WithContext(ctx)
		if o.maxWorkers > 0 {
			g.SetLimit(o.maxWorkers)
		}
		for i, c := range candidates {
			g.Go(func() error {
				res, err := o.evaluate(gctx, c, XTrain, yTrain, XTest, yTest)
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, c := range candidates {
			res, err := o.evaluate(ctx, c, XTrain, yTrain, XTest, yTest)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
	}

	report := &SelectionReport{
		Results: results,
		Winner:  reduce(results),
	}

	slog.Info("selection run finished",
		log.OperationKey, "selection_run",
		log.WinnerKey, report.Winner.Name,
		log.TestScoreKey, report.Winner.TestScore,
		log.DurationMsKey, time.Since(started).Milliseconds(),
	)
	return report, nil
}

// evaluate fits and scores a single candidate. Panics inside estimator
// code are converted to errors, and every failure is wrapped with the
// candidate's name.
func (o *Orchestrator) evaluate(ctx context.Context, c Candidate, XTrain, yTrain, XTest, yTest mat.Matrix) (res EvaluationResult, err error) {
	defer func() {
		if err != nil {
			err = errors.NewCandidateEvaluationError(c.Name, err)
		}
	}()
	defer errors.Recover(&err, "evaluate candidate "+c.Name)

	if err = ctx.Err(); err != nil {
		return res, err
	}

	started := time.Now()

	var fitted model.Estimator
	var trainScore float64
	bestParams := map[string]interface{}{}

	if len(c.Grid) > 0 {
		gs := model_selection.NewGridSearchCV(c.Estimator, c.Grid, model_selection.WithCV(c.folds()))
		if err = gs.Fit(XTrain, yTrain); err != nil {
			return res, err
		}
		fitted = gs.BestEstimator
		trainScore = gs.BestScore
		bestParams = gs.BestParams
	} else {
		clone, ok := c.Estimator.Clone().(model.Tunable)
		if !ok {
			return res, errors.NewValueError("Orchestrator",
				"estimator clone does not retain the tunable capability set")
		}
		if err = clone.Fit(XTrain, yTrain); err != nil {
			return res, err
		}
		if trainScore, err = clone.Score(XTrain, yTrain); err != nil {
			return res, err
		}
		fitted = clone
	}

	scorer, ok := fitted.(model.Scorer)
	if !ok {
		return res, errors.NewValueError("Orchestrator", "fitted estimator cannot score")
	}
	testScore, err := scorer.Score(XTest, yTest)
	if err != nil {
		return res, err
	}

	res = EvaluationResult{
		Name:       c.Name,
		BestParams: bestParams,
		TrainScore: trainScore,
		TestScore:  testScore,
		Estimator:  fitted,
		Duration:   time.Since(started),
	}

	slog.Info("candidate evaluated",
		log.OperationKey, "evaluate",
		log.CandidateKey, c.Name,
		log.TrainScoreKey, trainScore,
		log.TestScoreKey, testScore,
		log.BestParamsKey, bestParams,
		log.DurationMsKey, res.Duration.Milliseconds(),
	)
	return res, nil
}
