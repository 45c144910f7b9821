package linear_model

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestLogisticRegression_FitPredict_Binary tests binary classification
func TestLogisticRegression_FitPredict_Binary(t *testing.T) {
	// Create simple linearly separable data
	// Class 0: points around (1, 1)
	// Class 1: points around (3, 3)
	X := mat.NewDense(6, 2, []float64{
		0.5, 0.5,
		1.0, 1.5,
		1.5, 1.0,
		3.0, 2.5,
		2.5, 3.0,
		3.5, 3.5,
	})

	y := mat.NewDense(6, 1, []float64{
		0, 0, 0, // Class 0
		1, 1, 1, // Class 1
	})

	lr := NewLogisticRegression(
		WithLRMaxIter(1000),
		WithLRTol(1e-4),
	)

	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	predictions, err := lr.Predict(X)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	for i := 0; i < 6; i++ {
		if predictions.At(i, 0) != y.At(i, 0) {
			t.Errorf("Sample %d: expected %v, got %v", i, y.At(i, 0), predictions.At(i, 0))
		}
	}

	XTest := mat.NewDense(2, 2, []float64{
		1.0, 1.0, // Should be class 0
		3.0, 3.0, // Should be class 1
	})

	testPreds, err := lr.Predict(XTest)
	if err != nil {
		t.Fatalf("Failed to predict on test data: %v", err)
	}

	if testPreds.At(0, 0) != 0 {
		t.Errorf("Test point (1,1) should be class 0, got %v", testPreds.At(0, 0))
	}
	if testPreds.At(1, 0) != 1 {
		t.Errorf("Test point (3,3) should be class 1, got %v", testPreds.At(1, 0))
	}
}

// TestLogisticRegression_Multiclass tests one-vs-rest classification
func TestLogisticRegression_Multiclass(t *testing.T) {
	// Three well-separated clusters.
	X := mat.NewDense(9, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		5, 5,
		5, 6,
		6, 5,
		10, 0,
		10, 1,
		11, 0,
	})

	y := mat.NewDense(9, 1, []float64{
		0, 0, 0,
		1, 1, 1,
		2, 2, 2,
	})

	lr := NewLogisticRegression(WithLRMaxIter(2000))

	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	classes := lr.Classes()
	if len(classes) != 3 {
		t.Fatalf("expected 3 classes, got %v", classes)
	}

	score, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Failed to score: %v", err)
	}
	if score < 0.9 {
		t.Errorf("training accuracy = %v, want >= 0.9", score)
	}
}

// TestLogisticRegression_PredictProba tests probability predictions
func TestLogisticRegression_PredictProba(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})

	y := mat.NewDense(4, 1, []float64{
		0, 0, 1, 1,
	})

	lr := NewLogisticRegression(WithLRMaxIter(500))

	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	probas, err := lr.PredictProba(X)
	if err != nil {
		t.Fatalf("Failed to predict probabilities: %v", err)
	}

	r, c := probas.Dims()
	if r != 4 || c != 2 {
		t.Fatalf("probas shape = (%d, %d), want (4, 2)", r, c)
	}

	// Rows must sum to 1.
	for i := 0; i < 4; i++ {
		sum := probas.At(i, 0) + probas.At(i, 1)
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("row %d: probabilities sum to %v", i, sum)
		}
	}
}

// TestLogisticRegression_Deterministic verifies that fitting is reproducible
func TestLogisticRegression_Deterministic(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		0, 0, 0, 1, 1, 0,
		5, 5, 5, 6, 6, 5,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	first := NewLogisticRegression(WithLRMaxIter(200))
	if err := first.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}
	second := NewLogisticRegression(WithLRMaxIter(200))
	if err := second.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	for p := range first.Coef {
		for j := range first.Coef[p] {
			if first.Coef[p][j] != second.Coef[p][j] {
				t.Fatalf("coef[%d][%d] differs: %v vs %v", p, j, first.Coef[p][j], second.Coef[p][j])
			}
		}
	}
}

// TestLogisticRegression_SetParams round-trips parameters through the map API
func TestLogisticRegression_SetParams(t *testing.T) {
	lr := NewLogisticRegression()

	err := lr.SetParams(map[string]interface{}{
		"C":        10.0,
		"max_iter": 500,
		"penalty":  "none",
	})
	if err != nil {
		t.Fatalf("SetParams failed: %v", err)
	}

	params := lr.GetParams()
	if params["C"].(float64) != 10.0 {
		t.Errorf("C = %v, want 10.0", params["C"])
	}
	if params["max_iter"].(int) != 500 {
		t.Errorf("max_iter = %v, want 500", params["max_iter"])
	}

	if err := lr.SetParams(map[string]interface{}{"unknown": 1}); err == nil {
		t.Error("unknown parameter should fail")
	}

	if err := lr.SetParams(map[string]interface{}{"C": "high"}); err == nil {
		t.Error("wrong type should fail")
	}
}

// TestLogisticRegression_NotFitted checks the not-fitted guard
func TestLogisticRegression_NotFitted(t *testing.T) {
	lr := NewLogisticRegression()
	if _, err := lr.Predict(mat.NewDense(1, 2, []float64{0, 0})); err == nil {
		t.Error("Predict on an unfitted model should fail")
	}
}
