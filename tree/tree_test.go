package tree

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestDecisionTreeClassifier_FitPredict_Binary tests binary classification
func TestDecisionTreeClassifier_FitPredict_Binary(t *testing.T) {
	// Create simple linearly separable data
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
		3, 3,
		3, 4,
		4, 3,
		4, 4,
	})

	y := mat.NewDense(8, 1, []float64{
		0, 0, 0, 0, // Class 0 (lower left)
		1, 1, 1, 1, // Class 1 (upper right)
	})

	dt := NewDecisionTreeClassifier(
		WithCriterion("gini"),
		WithMaxDepth(5),
	)

	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	predictions, err := dt.Predict(X)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	for i := 0; i < 8; i++ {
		if predictions.At(i, 0) != y.At(i, 0) {
			t.Errorf("Sample %d: expected %v, got %v", i, y.At(i, 0), predictions.At(i, 0))
		}
	}

	XTest := mat.NewDense(2, 2, []float64{
		0.5, 0.5, // Should be class 0
		3.5, 3.5, // Should be class 1
	})

	testPreds, err := dt.Predict(XTest)
	if err != nil {
		t.Fatalf("Failed to predict on test data: %v", err)
	}

	if testPreds.At(0, 0) != 0 {
		t.Errorf("Test point (0.5,0.5) should be class 0, got %v", testPreds.At(0, 0))
	}
	if testPreds.At(1, 0) != 1 {
		t.Errorf("Test point (3.5,3.5) should be class 1, got %v", testPreds.At(1, 0))
	}
}

// TestDecisionTreeClassifier_Multiclass tests three-class classification
func TestDecisionTreeClassifier_Multiclass(t *testing.T) {
	X := mat.NewDense(9, 1, []float64{
		0, 1, 2,
		10, 11, 12,
		20, 21, 22,
	})
	y := mat.NewDense(9, 1, []float64{
		0, 0, 0,
		1, 1, 1,
		2, 2, 2,
	})

	dt := NewDecisionTreeClassifier(WithCriterion("entropy"))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	score, err := dt.Score(X, y)
	if err != nil {
		t.Fatalf("Failed to score: %v", err)
	}
	if score != 1.0 {
		t.Errorf("training accuracy = %v, want 1.0", score)
	}
}

// TestDecisionTreeClassifier_MaxDepth verifies that depth 1 yields a stump
func TestDecisionTreeClassifier_MaxDepth(t *testing.T) {
	// XOR-ish data: a depth-1 stump cannot separate it perfectly,
	// an unlimited tree can.
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	y := mat.NewDense(4, 1, []float64{0, 1, 1, 0})

	stump := NewDecisionTreeClassifier(WithMaxDepth(1))
	if err := stump.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit stump: %v", err)
	}
	stumpScore, err := stump.Score(X, y)
	if err != nil {
		t.Fatalf("Failed to score stump: %v", err)
	}
	if stumpScore > 0.75 {
		t.Errorf("stump accuracy = %v, expected <= 0.75 on XOR", stumpScore)
	}

	full := NewDecisionTreeClassifier()
	if err := full.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit full tree: %v", err)
	}
	fullScore, err := full.Score(X, y)
	if err != nil {
		t.Fatalf("Failed to score full tree: %v", err)
	}
	if fullScore != 1.0 {
		t.Errorf("full tree accuracy = %v, want 1.0", fullScore)
	}
}

// TestDecisionTreeClassifier_MinSamplesLeaf verifies the leaf size floor
func TestDecisionTreeClassifier_MinSamplesLeaf(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	// With min_samples_leaf = 3 no split can satisfy both sides,
	// so the tree stays a single leaf.
	dt := NewDecisionTreeClassifier(WithMinSamplesLeaf(3))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	if !dt.Root.IsLeaf {
		t.Error("expected a single-leaf tree")
	}
}

// TestDecisionTreeClassifier_PredictProba tests leaf class distributions
func TestDecisionTreeClassifier_PredictProba(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{0, 1, 2, 10, 11, 12})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	dt := NewDecisionTreeClassifier()
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	probas, err := dt.PredictProba(X)
	if err != nil {
		t.Fatalf("Failed to predict probabilities: %v", err)
	}

	r, c := probas.Dims()
	if r != 6 || c != 2 {
		t.Fatalf("probas shape = (%d, %d), want (6, 2)", r, c)
	}
	for i := 0; i < r; i++ {
		sum := probas.At(i, 0) + probas.At(i, 1)
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("row %d: probabilities sum to %v", i, sum)
		}
	}
	// Pure leaves on this data.
	if probas.At(0, 0) != 1.0 || probas.At(5, 1) != 1.0 {
		t.Error("expected pure leaf distributions")
	}
}

// TestDecisionTreeClassifier_Deterministic verifies reproducible fitting
func TestDecisionTreeClassifier_Deterministic(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		0, 3, 1, 2, 2, 1,
		5, 5, 6, 4, 7, 6,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	first := NewDecisionTreeClassifier(WithMaxDepth(3))
	if err := first.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}
	second := NewDecisionTreeClassifier(WithMaxDepth(3))
	if err := second.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	if first.Root.Feature != second.Root.Feature || first.Root.Threshold != second.Root.Threshold {
		t.Errorf("root split differs: (%d, %v) vs (%d, %v)",
			first.Root.Feature, first.Root.Threshold, second.Root.Feature, second.Root.Threshold)
	}
}

// TestDecisionTreeClassifier_InvalidParams exercises validation
func TestDecisionTreeClassifier_InvalidParams(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 1})
	y := mat.NewDense(2, 1, []float64{0, 1})

	dt := NewDecisionTreeClassifier(WithCriterion("misclassification"))
	if err := dt.Fit(X, y); err == nil {
		t.Error("unknown criterion should fail")
	}

	dt = NewDecisionTreeClassifier(WithMinSamplesLeaf(0))
	if err := dt.Fit(X, y); err == nil {
		t.Error("min_samples_leaf < 1 should fail")
	}
}
