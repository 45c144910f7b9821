package model_selection

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func makeClassData(perClass int, classes int) (*mat.Dense, *mat.Dense) {
	n := perClass * classes
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for c := 0; c < classes; c++ {
		for i := 0; i < perClass; i++ {
			row := c*perClass + i
			X.Set(row, 0, float64(c)*10+float64(i))
			X.Set(row, 1, float64(c)*10-float64(i))
			y.Set(row, 0, float64(c))
		}
	}
	return X, y
}

func TestKFoldSizes(t *testing.T) {
	X, y := makeClassData(5, 2) // 10 samples

	kf := NewKFold(3, false, 0)
	folds := kf.Split(X, y)

	if len(folds) != 3 {
		t.Fatalf("expected 3 folds, got %d", len(folds))
	}

	seen := make(map[int]int)
	for _, fold := range folds {
		if len(fold.TrainIndices)+len(fold.TestIndices) != 10 {
			t.Errorf("fold does not cover dataset: train %d + test %d",
				len(fold.TrainIndices), len(fold.TestIndices))
		}
		for _, idx := range fold.TestIndices {
			seen[idx]++
		}
	}
	// Every sample appears in exactly one test fold.
	if len(seen) != 10 {
		t.Errorf("expected all 10 samples across test folds, got %d", len(seen))
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("sample %d appears in %d test folds", idx, count)
		}
	}
}

func TestKFoldShuffleDeterminism(t *testing.T) {
	X, y := makeClassData(10, 2)

	a := NewKFold(4, true, 42).Split(X, y)
	b := NewKFold(4, true, 42).Split(X, y)

	for i := range a {
		if len(a[i].TestIndices) != len(b[i].TestIndices) {
			t.Fatalf("fold %d size mismatch", i)
		}
		for j := range a[i].TestIndices {
			if a[i].TestIndices[j] != b[i].TestIndices[j] {
				t.Fatalf("fold %d differs between identically seeded runs", i)
			}
		}
	}
}

func TestStratifiedKFoldBalance(t *testing.T) {
	X, y := makeClassData(6, 3) // 18 samples, 6 per class

	skf := NewStratifiedKFold(3, false, 0)
	folds := skf.Split(X, y)

	if len(folds) != 3 {
		t.Fatalf("expected 3 folds, got %d", len(folds))
	}

	for i, fold := range folds {
		counts := make(map[float64]int)
		for _, idx := range fold.TestIndices {
			counts[y.At(idx, 0)]++
		}
		for label, count := range counts {
			if count != 2 {
				t.Errorf("fold %d: class %.0f has %d test samples, want 2", i, label, count)
			}
		}
	}
}

func TestTrainTestSplit(t *testing.T) {
	X, y := makeClassData(10, 2)

	XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, 0.25, 7)
	if err != nil {
		t.Fatalf("TrainTestSplit failed: %v", err)
	}

	trainRows, _ := XTrain.Dims()
	testRows, _ := XTest.Dims()
	if trainRows != 15 || testRows != 5 {
		t.Errorf("expected 15/5 split, got %d/%d", trainRows, testRows)
	}

	yTrainRows, _ := yTrain.Dims()
	yTestRows, _ := yTest.Dims()
	if yTrainRows != trainRows || yTestRows != testRows {
		t.Errorf("label rows do not match feature rows")
	}
}

func TestTrainTestSplitDeterminism(t *testing.T) {
	X, y := makeClassData(10, 2)

	_, XTestA, _, _, err := TrainTestSplit(X, y, 0.3, 11)
	if err != nil {
		t.Fatalf("first split failed: %v", err)
	}
	_, XTestB, _, _, err := TrainTestSplit(X, y, 0.3, 11)
	if err != nil {
		t.Fatalf("second split failed: %v", err)
	}

	if !mat.Equal(XTestA, XTestB) {
		t.Error("identically seeded splits produced different test sets")
	}
}

func TestTrainTestSplitValidation(t *testing.T) {
	X, y := makeClassData(5, 2)

	if _, _, _, _, err := TrainTestSplit(X, y, 0.0, 0); err == nil {
		t.Error("expected error for testSize 0")
	}
	if _, _, _, _, err := TrainTestSplit(X, y, 1.0, 0); err == nil {
		t.Error("expected error for testSize 1")
	}
}
