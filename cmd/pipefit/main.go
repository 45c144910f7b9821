// Command pipefit runs model selection over a fixed set of candidate
// classifiers on the iris dataset and saves the winning model.
package main

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/pipefit/core/model"
	"github.com/YuminosukeSato/pipefit/datasets"
	"github.com/YuminosukeSato/pipefit/linear_model"
	"github.com/YuminosukeSato/pipefit/model_selection"
	"github.com/YuminosukeSato/pipefit/neighbors"
	"github.com/YuminosukeSato/pipefit/pipeline"
	"github.com/YuminosukeSato/pipefit/pkg/log"
	"github.com/YuminosukeSato/pipefit/preprocessing"
	"github.com/YuminosukeSato/pipefit/selection"
	"github.com/YuminosukeSato/pipefit/tree"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pipefit:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		seed     int64
		testSize float64
		outPath  string
		plotPath string
		parallel int
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "pipefit",
		Short: "Select the best classifier for the iris dataset",
		Long: `Fit a fixed registry of candidate classifiers on a train/test split of
the iris dataset, tune the grid candidates with cross-validation, and
report every candidate's held-out score along with the winner.

The split and every candidate are fully deterministic for a given seed,
so repeated runs produce identical reports.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.SetupLogger(logLevel)

			X, y := datasets.LoadIris()
			XTrain, XTest, yTrain, yTest, err := model_selection.TrainTestSplit(X, y, testSize, seed)
			if err != nil {
				return err
			}

			reg, err := buildRegistry()
			if err != nil {
				return err
			}

			var opts []selection.OrchestratorOption
			if parallel > 0 {
				opts = append(opts, selection.WithParallel(parallel))
			}

			report, err := selection.NewOrchestrator(opts...).Run(
				cmd.Context(), reg, XTrain, yTrain, XTest, yTest)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), report.String())

			if plotPath != "" {
				if err := selection.SaveScorePlot(report, plotPath); err != nil {
					return err
				}
			}
			if outPath != "" {
				if err := saveWinner(report.Winner.Estimator, outPath); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the train/test split")
	cmd.Flags().Float64Var(&testSize, "test-size", 0.2, "Fraction of samples held out for testing")
	cmd.Flags().StringVar(&outPath, "out", "", "Path to save the winning model (gob)")
	cmd.Flags().StringVar(&plotPath, "plot", "", "Path to save a test-score bar chart (.png, .svg, .pdf)")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "Evaluate candidates with up to N workers (0 = sequential)")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level: debug | info | warn | error")

	return cmd
}

// buildRegistry assembles the fixed candidate set. Registration order is
// the tie-break order of the final report.
func buildRegistry() (*selection.Registry, error) {
	reg := selection.NewRegistry()

	scaledLR, err := pipeline.NewPipeline(
		[]pipeline.Step{{Name: "scaler", Transformer: preprocessing.NewStandardScalerDefault()}},
		"clf", linear_model.NewLogisticRegression(),
	)
	if err != nil {
		return nil, err
	}
	if err := reg.Register(selection.Candidate{
		Name:      "scaled-logreg",
		Estimator: scaledLR,
	}); err != nil {
		return nil, err
	}

	pcaLR, err := pipeline.NewPipeline(
		[]pipeline.Step{
			{Name: "scaler", Transformer: preprocessing.NewStandardScalerDefault()},
			{Name: "pca", Transformer: preprocessing.NewPCA(2)},
		},
		"clf", linear_model.NewLogisticRegression(),
	)
	if err != nil {
		return nil, err
	}
	if err := reg.Register(selection.Candidate{
		Name:      "pca-logreg",
		Estimator: pcaLR,
	}); err != nil {
		return nil, err
	}

	if err := reg.Register(selection.Candidate{
		Name:      "tree",
		Estimator: tree.NewDecisionTreeClassifier(),
		Grid: model_selection.ParamGrid{
			{Name: "max_depth", Values: []interface{}{2, 3, 4}},
			{Name: "min_samples_leaf", Values: []interface{}{1, 2}},
		},
	}); err != nil {
		return nil, err
	}

	if err := reg.Register(selection.Candidate{
		Name:      "knn",
		Estimator: neighbors.NewKNeighborsClassifier(),
		Grid: model_selection.ParamGrid{
			{Name: "n_neighbors", Values: []interface{}{3, 5, 7}},
		},
	}); err != nil {
		return nil, err
	}

	return reg, nil
}

// saveWinner serializes the fitted winner with gob. Concrete types must be
// registered before encoding an estimator behind an interface.
func saveWinner(est model.Estimator, path string) error {
	gob.Register(&pipeline.Pipeline{})
	gob.Register(&preprocessing.StandardScaler{})
	gob.Register(&preprocessing.PCA{})
	gob.Register(&linear_model.LogisticRegression{})
	gob.Register(&tree.DecisionTreeClassifier{})
	gob.Register(&neighbors.KNeighborsClassifier{})

	return model.SaveModel(est, path)
}
