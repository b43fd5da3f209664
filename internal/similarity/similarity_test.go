package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdenticalVectorsScoreOne(t *testing.T) {
	v := []float64{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	score, err := CosineSimilarity(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestOrthogonalVectorsScoreHalf(t *testing.T) {
	a := []float64{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	b := []float64{0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	score, err := CosineSimilarity(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestWrongDimensionalityErrors(t *testing.T) {
	_, err := CosineSimilarity([]float64{1, 2, 3}, make([]float64, ChromaDim))
	assert.Error(t, err)
}

func TestFindSimilarRanksDescending(t *testing.T) {
	query := []float64{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	candidates := map[string][]float64{
		"exact":      {1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		"orthogonal": {0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	results, err := FindSimilar(query, candidates, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].SessionID)
	assert.Equal(t, "orthogonal", results[1].SessionID)
}

func TestRelationSameDominantClass(t *testing.T) {
	c := make([]float64, ChromaDim)
	c[0] = 1.0 // C dominant
	relation, err := Relation(c, c)
	require.NoError(t, err)
	assert.Equal(t, "same", relation)
}

func TestRelationPerfectFifthIsRelated(t *testing.T) {
	cDominant := make([]float64, ChromaDim)
	cDominant[0] = 1.0
	gDominant := make([]float64, ChromaDim)
	gDominant[7] = 1.0 // G is a perfect fifth above C
	relation, err := Relation(cDominant, gDominant)
	require.NoError(t, err)
	assert.Equal(t, "related", relation)
}

func TestRelationTritoneIsDistant(t *testing.T) {
	cDominant := make([]float64, ChromaDim)
	cDominant[0] = 1.0
	fSharpDominant := make([]float64, ChromaDim)
	fSharpDominant[6] = 1.0
	relation, err := Relation(cDominant, fSharpDominant)
	require.NoError(t, err)
	assert.Equal(t, "distant", relation)
}

func TestRelationWrongDimensionalityErrors(t *testing.T) {
	_, err := Relation([]float64{1, 2, 3}, make([]float64, ChromaDim))
	assert.Error(t, err)
}
