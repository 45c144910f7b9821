package neighbors

import (
	"bytes"
	"testing"

	"github.com/YuminosukeSato/pipefit/core/model"
	"gonum.org/v1/gonum/mat"
)

// TestKNeighborsClassifier_FitPredict tests basic classification
func TestKNeighborsClassifier_FitPredict(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		5, 5,
		5, 6,
		6, 5,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	knn := NewKNeighborsClassifier(WithNNeighbors(3))
	if err := knn.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	XTest := mat.NewDense(2, 2, []float64{
		0.5, 0.5, // Should be class 0
		5.5, 5.5, // Should be class 1
	})

	preds, err := knn.Predict(XTest)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	if preds.At(0, 0) != 0 {
		t.Errorf("Test point (0.5,0.5) should be class 0, got %v", preds.At(0, 0))
	}
	if preds.At(1, 0) != 1 {
		t.Errorf("Test point (5.5,5.5) should be class 1, got %v", preds.At(1, 0))
	}
}

// TestKNeighborsClassifier_K1 verifies exact memorization with k=1
func TestKNeighborsClassifier_K1(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 10, 11})
	y := mat.NewDense(4, 1, []float64{0, 1, 2, 0})

	knn := NewKNeighborsClassifier(WithNNeighbors(1))
	if err := knn.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	score, err := knn.Score(X, y)
	if err != nil {
		t.Fatalf("Failed to score: %v", err)
	}
	if score != 1.0 {
		t.Errorf("k=1 training accuracy = %v, want 1.0", score)
	}
}

// TestKNeighborsClassifier_PredictProba tests vote shares
func TestKNeighborsClassifier_PredictProba(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 10})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	knn := NewKNeighborsClassifier(WithNNeighbors(3))
	if err := knn.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	// Query at 0.5: nearest three are {0, 1, 2} with labels {0, 0, 1}.
	probas, err := knn.PredictProba(mat.NewDense(1, 1, []float64{0.5}))
	if err != nil {
		t.Fatalf("Failed to predict probabilities: %v", err)
	}

	if probas.At(0, 0) < probas.At(0, 1) {
		t.Errorf("expected class 0 majority, got shares (%v, %v)", probas.At(0, 0), probas.At(0, 1))
	}
}

// TestKNeighborsClassifier_InvalidK exercises validation
func TestKNeighborsClassifier_InvalidK(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 1})
	y := mat.NewDense(2, 1, []float64{0, 1})

	knn := NewKNeighborsClassifier(WithNNeighbors(0))
	if err := knn.Fit(X, y); err == nil {
		t.Error("k = 0 should fail")
	}

	knn = NewKNeighborsClassifier(WithNNeighbors(3))
	if err := knn.Fit(X, y); err == nil {
		t.Error("k larger than the training set should fail")
	}
}

// TestKNeighborsClassifier_NotFitted checks the not-fitted guard
func TestKNeighborsClassifier_NotFitted(t *testing.T) {
	knn := NewKNeighborsClassifier()
	if _, err := knn.Predict(mat.NewDense(1, 1, []float64{0})); err == nil {
		t.Error("Predict on an unfitted model should fail")
	}
}

func TestKNeighborsClassifier_GobRoundTrip(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		5, 5,
		5, 6,
		6, 5,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	knn := NewKNeighborsClassifier(WithNNeighbors(3))
	if err := knn.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}
	want, err := knn.Predict(X)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	var buf bytes.Buffer
	if err := model.SaveModelToWriter(knn, &buf); err != nil {
		t.Fatalf("Failed to save model: %v", err)
	}

	var loaded KNeighborsClassifier
	if err := model.LoadModelFromReader(&loaded, &buf); err != nil {
		t.Fatalf("Failed to load model: %v", err)
	}
	if loaded.NNeighbors != knn.NNeighbors {
		t.Errorf("loaded NNeighbors = %d, want %d", loaded.NNeighbors, knn.NNeighbors)
	}

	got, err := loaded.Predict(X)
	if err != nil {
		t.Fatalf("Failed to predict with loaded model: %v", err)
	}
	if !mat.Equal(want, got) {
		t.Error("loaded model predicts differently from the original")
	}
}
