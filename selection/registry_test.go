package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/pipefit/neighbors"
	"github.com/YuminosukeSato/pipefit/pkg/errors"
)

func TestRegistryRegisterAndOrder(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(Candidate{Name: "knn1", Estimator: neighbors.NewKNeighborsClassifier()}))
	require.NoError(t, reg.Register(Candidate{Name: "knn2", Estimator: neighbors.NewKNeighborsClassifier()}))
	require.NoError(t, reg.Register(Candidate{Name: "knn3", Estimator: neighbors.NewKNeighborsClassifier()}))

	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, []string{"knn1", "knn2", "knn3"}, reg.Names())
}

func TestRegistryDuplicateName(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(Candidate{Name: "knn", Estimator: neighbors.NewKNeighborsClassifier()}))

	err := reg.Register(Candidate{Name: "knn", Estimator: neighbors.NewKNeighborsClassifier()})
	require.Error(t, err)

	var dup *errors.DuplicateNameError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "knn", dup.Name)

	// A rejected registration leaves the registry unchanged.
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryValidation(t *testing.T) {
	reg := NewRegistry()

	assert.Error(t, reg.Register(Candidate{Name: "", Estimator: neighbors.NewKNeighborsClassifier()}))
	assert.Error(t, reg.Register(Candidate{Name: "nil-est", Estimator: nil}))
	assert.Error(t, reg.Register(Candidate{
		Name:      "bad-folds",
		Estimator: neighbors.NewKNeighborsClassifier(),
		CVFolds:   -1,
	}))
	assert.Error(t, reg.Register(Candidate{
		Name:      "bad-scoring",
		Estimator: neighbors.NewKNeighborsClassifier(),
		Scoring:   "f1",
	}))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryCandidatesIsCopy(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Candidate{Name: "knn", Estimator: neighbors.NewKNeighborsClassifier()}))

	got := reg.Candidates()
	got[0].Name = "mutated"

	assert.Equal(t, []string{"knn"}, reg.Names())
}
