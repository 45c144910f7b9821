// Package pipeline chains preprocessing transformers with a final estimator
// behind the plain estimator interface, so a pipeline can be fit, scored,
// tuned and selected exactly like a bare classifier.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/pipefit/core/model"
	"github.com/YuminosukeSato/pipefit/metrics"
	"github.com/YuminosukeSato/pipefit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Step is one named transform stage of a pipeline.
type Step struct {
	Name        string
	Transformer model.Transformer
}

// Pipeline applies its transform steps in order during Fit and Predict and
// delegates learning to the final estimator. Parameters are addressed with
// scikit-learn's "step__param" convention, e.g. "clf__max_depth".
//
// Fields are exported for gob encoding.
type Pipeline struct {
	model.BaseEstimator

	Steps     []Step
	FinalName string
	Final     model.Estimator
}

// NewPipeline creates a pipeline from transform steps and a named final
// estimator. Step names must be unique and non-empty.
func NewPipeline(steps []Step, finalName string, final model.Estimator) (*Pipeline, error) {
	if final == nil {
		return nil, errors.NewValueError("NewPipeline", "final estimator must not be nil")
	}
	if finalName == "" {
		return nil, errors.NewValueError("NewPipeline", "final estimator needs a name")
	}

	seen := map[string]bool{finalName: true}
	for _, step := range steps {
		if step.Name == "" {
			return nil, errors.NewValueError("NewPipeline", "step names must not be empty")
		}
		if step.Transformer == nil {
			return nil, errors.NewValueError("NewPipeline", fmt.Sprintf("step %q has a nil transformer", step.Name))
		}
		if seen[step.Name] {
			return nil, errors.NewValueError("NewPipeline", fmt.Sprintf("duplicate step name %q", step.Name))
		}
		seen[step.Name] = true
	}

	return &Pipeline{Steps: steps, FinalName: finalName, Final: final}, nil
}

// MustNewPipeline is NewPipeline that panics on invalid construction.
// Intended for static pipeline definitions.
func MustNewPipeline(steps []Step, finalName string, final model.Estimator) *Pipeline {
	p, err := NewPipeline(steps, finalName, final)
	if err != nil {
		panic(err)
	}
	return p
}

// Fit runs FitTransform through every step and fits the final estimator
// on the fully transformed data.
func (p *Pipeline) Fit(X, y mat.Matrix) error {
	current := X
	for _, step := range p.Steps {
		transformed, err := step.Transformer.FitTransform(current)
		if err != nil {
			return errors.Wrapf(err, "pipeline step %q", step.Name)
		}
		current = transformed
	}

	if err := p.Final.Fit(current, y); err != nil {
		return errors.Wrapf(err, "pipeline estimator %q", p.FinalName)
	}

	p.SetFitted()
	return nil
}

// transform applies the fitted transform steps in order.
func (p *Pipeline) transform(X mat.Matrix) (mat.Matrix, error) {
	current := X
	for _, step := range p.Steps {
		transformed, err := step.Transformer.Transform(current)
		if err != nil {
			return nil, errors.Wrapf(err, "pipeline step %q", step.Name)
		}
		current = transformed
	}
	return current, nil
}

// Predict transforms the input and predicts with the final estimator.
func (p *Pipeline) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Predict")
	}

	transformed, err := p.transform(X)
	if err != nil {
		return nil, err
	}
	return p.Final.Predict(transformed)
}

// Score returns the final estimator's score on the transformed input,
// falling back to mean accuracy of predictions when the estimator has no
// scoring capability of its own.
func (p *Pipeline) Score(X, y mat.Matrix) (float64, error) {
	if !p.IsFitted() {
		return 0, errors.NewNotFittedError("Pipeline", "Score")
	}

	transformed, err := p.transform(X)
	if err != nil {
		return 0, err
	}

	if scorer, ok := p.Final.(model.Scorer); ok {
		return scorer.Score(transformed, y)
	}

	predictions, err := p.Final.Predict(transformed)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// Clone returns an unfitted copy of the pipeline: every transform step and
// the final estimator are cloned with their current hyperparameters.
func (p *Pipeline) Clone() model.Estimator {
	steps := make([]Step, len(p.Steps))
	for i, step := range p.Steps {
		cloner, ok := step.Transformer.(model.TransformerCloner)
		if !ok {
			// Transformers without clone support cannot participate in
			// grid search; reuse breaks isolation, so fail loudly.
			panic(fmt.Sprintf("pipefit: pipeline step %q does not support cloning", step.Name))
		}
		steps[i] = Step{Name: step.Name, Transformer: cloner.CloneTransformer()}
	}

	final := p.Final
	if cloner, ok := p.Final.(model.Cloner); ok {
		final = cloner.Clone()
	}

	return &Pipeline{Steps: steps, FinalName: p.FinalName, Final: final}
}

// GetParams returns every step's parameters under "step__param" keys.
func (p *Pipeline) GetParams() map[string]interface{} {
	params := make(map[string]interface{})

	collect := func(prefix string, source interface{}) {
		getter, ok := source.(model.ParameterGetter)
		if !ok {
			return
		}
		for key, value := range getter.GetParams() {
			params[prefix+"__"+key] = value
		}
	}

	for _, step := range p.Steps {
		collect(step.Name, step.Transformer)
	}
	collect(p.FinalName, p.Final)

	return params
}

// SetParams routes namespaced parameters to their steps. Keys must be of
// the form "step__param"; unknown steps and non-settable targets fail.
func (p *Pipeline) SetParams(params map[string]interface{}) error {
	// Group by step so each target's SetParams is called once.
	grouped := make(map[string]map[string]interface{})
	for key, value := range params {
		parts := strings.SplitN(key, "__", 2)
		if len(parts) != 2 {
			return errors.NewValueError("Pipeline.SetParams",
				fmt.Sprintf("parameter %q is not namespaced as step__param", key))
		}
		if grouped[parts[0]] == nil {
			grouped[parts[0]] = make(map[string]interface{})
		}
		grouped[parts[0]][parts[1]] = value
	}

	for stepName, stepParams := range grouped {
		target, err := p.lookup(stepName)
		if err != nil {
			return err
		}
		setter, ok := target.(model.ParameterSetter)
		if !ok {
			return errors.NewValueError("Pipeline.SetParams",
				fmt.Sprintf("step %q does not accept parameters", stepName))
		}
		if err := setter.SetParams(stepParams); err != nil {
			return err
		}
	}

	return nil
}

// lookup resolves a step name to its transformer or the final estimator.
func (p *Pipeline) lookup(name string) (interface{}, error) {
	if name == p.FinalName {
		return p.Final, nil
	}
	for _, step := range p.Steps {
		if step.Name == name {
			return step.Transformer, nil
		}
	}
	return nil, errors.NewValueError("Pipeline.SetParams", fmt.Sprintf("unknown step %q", name))
}

// Classes returns the classes of the final estimator when it is a classifier.
func (p *Pipeline) Classes() []int {
	type classer interface{ Classes() []int }
	if c, ok := p.Final.(classer); ok {
		return c.Classes()
	}
	return nil
}

// String renders the pipeline structure, e.g. "Pipeline(scaler -> pca -> clf)".
func (p *Pipeline) String() string {
	names := make([]string, 0, len(p.Steps)+1)
	for _, step := range p.Steps {
		names = append(names, step.Name)
	}
	names = append(names, p.FinalName)
	return fmt.Sprintf("Pipeline(%s)", strings.Join(names, " -> "))
}
