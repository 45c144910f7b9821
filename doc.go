// Package pipefit provides model selection for Go: a registry of candidate
// classifiers is fit and tuned against a common train/test split, and the
// candidate with the best held-out score is picked as the winner.
//
// The estimator packages follow a scikit-learn-like API so that anyone
// familiar with Python's ecosystem can read the code directly.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/pipefit/datasets"
//	    "github.com/YuminosukeSato/pipefit/model_selection"
//	    "github.com/YuminosukeSato/pipefit/neighbors"
//	    "github.com/YuminosukeSato/pipefit/selection"
//	    "github.com/YuminosukeSato/pipefit/tree"
//	)
//
//	func main() {
//	    X, y := datasets.LoadIris()
//	    XTrain, XTest, yTrain, yTest, err := model_selection.TrainTestSplit(X, y, 0.25, 42)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    reg := selection.NewRegistry()
//	    reg.MustRegister(selection.Candidate{
//	        Name:      "knn",
//	        Estimator: neighbors.NewKNeighborsClassifier(),
//	    })
//	    reg.MustRegister(selection.Candidate{
//	        Name:      "tree",
//	        Estimator: tree.NewDecisionTreeClassifier(),
//	        Grid: model_selection.ParamGrid{
//	            {Name: "max_depth", Values: []interface{}{2, 3, 4}},
//	        },
//	    })
//
//	    report, err := selection.NewOrchestrator().Run(
//	        context.Background(), reg, XTrain, yTrain, XTest, yTest)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Print(report.String())
//	}
//
// # Packages
//
//   - selection: candidate registry, orchestrator and winner reduction
//   - model_selection: train/test split, k-fold CV and grid search
//   - pipeline: chained transformers with a final estimator
//   - preprocessing: StandardScaler, MinMaxScaler, PCA
//   - linear_model, tree, neighbors: classifiers
//   - metrics: accuracy, confusion matrix, precision/recall/F1
//   - datasets: the built-in iris dataset
//
// Every estimator is deterministic for a given seed, so a selection run
// repeated on the same split produces an identical report.
package pipefit
