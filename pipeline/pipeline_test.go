package pipeline

import (
	"bytes"
	"encoding/gob"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pipefit/core/model"
	"github.com/YuminosukeSato/pipefit/linear_model"
	"github.com/YuminosukeSato/pipefit/preprocessing"
	"github.com/YuminosukeSato/pipefit/tree"
)

func twoClusterData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
		10, 10,
		10, 11,
		11, 10,
		11, 11,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	return X, y
}

func TestPipeline_FitPredictScore(t *testing.T) {
	X, y := twoClusterData()

	p := MustNewPipeline(
		[]Step{{Name: "scaler", Transformer: preprocessing.NewStandardScalerDefault()}},
		"clf", linear_model.NewLogisticRegression(linear_model.WithLRMaxIter(1000)),
	)

	if err := p.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	score, err := p.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score != 1.0 {
		t.Errorf("training accuracy = %v, want 1.0", score)
	}
}

func TestPipeline_WithPCA(t *testing.T) {
	X, y := twoClusterData()

	p := MustNewPipeline(
		[]Step{
			{Name: "scaler", Transformer: preprocessing.NewStandardScalerDefault()},
			{Name: "pca", Transformer: preprocessing.NewPCA(1)},
		},
		"clf", linear_model.NewLogisticRegression(linear_model.WithLRMaxIter(1000)),
	)

	if err := p.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	// The clusters separate along the first principal component.
	score, err := p.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score != 1.0 {
		t.Errorf("training accuracy = %v, want 1.0", score)
	}
}

func TestPipeline_NotFitted(t *testing.T) {
	p := MustNewPipeline(nil, "clf", tree.NewDecisionTreeClassifier())
	if _, err := p.Predict(mat.NewDense(1, 1, []float64{0})); err == nil {
		t.Error("Predict on an unfitted pipeline should fail")
	}
}

func TestNewPipeline_Validation(t *testing.T) {
	if _, err := NewPipeline(nil, "clf", nil); err == nil {
		t.Error("nil estimator should fail")
	}
	if _, err := NewPipeline(nil, "", tree.NewDecisionTreeClassifier()); err == nil {
		t.Error("empty estimator name should fail")
	}
	if _, err := NewPipeline(
		[]Step{
			{Name: "s", Transformer: preprocessing.NewStandardScalerDefault()},
			{Name: "s", Transformer: preprocessing.NewPCA(1)},
		},
		"clf", tree.NewDecisionTreeClassifier(),
	); err == nil {
		t.Error("duplicate step name should fail")
	}
}

func TestPipeline_GetSetParams(t *testing.T) {
	p := MustNewPipeline(
		[]Step{{Name: "pca", Transformer: preprocessing.NewPCA(1)}},
		"clf", tree.NewDecisionTreeClassifier(),
	)

	params := p.GetParams()
	if params["pca__n_components"].(int) != 1 {
		t.Errorf("pca__n_components = %v, want 1", params["pca__n_components"])
	}
	if params["clf__criterion"].(string) != "gini" {
		t.Errorf("clf__criterion = %v, want gini", params["clf__criterion"])
	}

	err := p.SetParams(map[string]interface{}{
		"pca__n_components": 2,
		"clf__max_depth":    3,
	})
	if err != nil {
		t.Fatalf("SetParams failed: %v", err)
	}

	params = p.GetParams()
	if params["pca__n_components"].(int) != 2 {
		t.Errorf("pca__n_components = %v, want 2", params["pca__n_components"])
	}
	if params["clf__max_depth"].(int) != 3 {
		t.Errorf("clf__max_depth = %v, want 3", params["clf__max_depth"])
	}

	if err := p.SetParams(map[string]interface{}{"nostep__x": 1}); err == nil {
		t.Error("unknown step should fail")
	}
	if err := p.SetParams(map[string]interface{}{"flat": 1}); err == nil {
		t.Error("non-namespaced key should fail")
	}
}

func TestPipeline_Clone(t *testing.T) {
	X, y := twoClusterData()

	p := MustNewPipeline(
		[]Step{{Name: "scaler", Transformer: preprocessing.NewStandardScalerDefault()}},
		"clf", tree.NewDecisionTreeClassifier(tree.WithMaxDepth(2)),
	)
	if err := p.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	clone := p.Clone().(*Pipeline)
	if clone.IsFitted() {
		t.Error("clone must be unfitted")
	}
	if clone.GetParams()["clf__max_depth"].(int) != 2 {
		t.Error("clone lost hyperparameters")
	}

	// The original stays usable after cloning.
	if _, err := p.Predict(X); err != nil {
		t.Errorf("original pipeline broken after clone: %v", err)
	}
}

func TestPipeline_String(t *testing.T) {
	p := MustNewPipeline(
		[]Step{
			{Name: "scaler", Transformer: preprocessing.NewStandardScalerDefault()},
			{Name: "pca", Transformer: preprocessing.NewPCA(2)},
		},
		"clf", tree.NewDecisionTreeClassifier(),
	)

	got := p.String()
	if !strings.Contains(got, "scaler -> pca -> clf") {
		t.Errorf("String() = %q", got)
	}
}

func TestPipeline_GobRoundTrip(t *testing.T) {
	gob.Register(&preprocessing.StandardScaler{})
	gob.Register(&linear_model.LogisticRegression{})

	X, y := twoClusterData()

	p := MustNewPipeline(
		[]Step{{Name: "scaler", Transformer: preprocessing.NewStandardScalerDefault()}},
		"clf", linear_model.NewLogisticRegression(),
	)
	if err := p.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit pipeline: %v", err)
	}
	want, err := p.Predict(X)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	var buf bytes.Buffer
	if err := model.SaveModelToWriter(p, &buf); err != nil {
		t.Fatalf("Failed to save pipeline: %v", err)
	}

	var loaded Pipeline
	if err := model.LoadModelFromReader(&loaded, &buf); err != nil {
		t.Fatalf("Failed to load pipeline: %v", err)
	}

	got, err := loaded.Predict(X)
	if err != nil {
		t.Fatalf("Failed to predict with loaded pipeline: %v", err)
	}
	if !mat.Equal(want, got) {
		t.Error("loaded pipeline predicts differently from the original")
	}
}
