package scoring

import (
	"testing"

	"github.com/Dan9191/credit-service/internal/decision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedForest_ReferenceProfiles(t *testing.T) {
	forest := SeedForest()
	require.NoError(t, forest.Validate())

	tests := []struct {
		features decision.Features
		label    int
	}{
		{decision.Features{800, 0, 0, 0, 0, 5000}, 1},
		{decision.Features{300, 1, 5, 3, 2, 1500}, 0},
		{decision.Features{650, 0, 2, 0, 0, 3500}, 1},
		{decision.Features{450, 1, 3, 1, 0, 2500}, 0},
		{decision.Features{720, 0, 1, 0, 0, 4500}, 1},
	}
	for _, tt := range tests {
		p, err := forest.Predict(tt.features)
		require.NoError(t, err)
		assert.Equal(t, tt.label, p.Label, "%v", tt.features)
	}
}

func TestForest_PredictAveragesTrees(t *testing.T) {
	forest := &Forest{Trees: []Tree{
		stump(0, 500, 0, 1),
		stump(5, 2000, 0.2, 0.6),
	}}
	require.NoError(t, forest.Validate())

	p, err := forest.Predict(decision.Features{700, 0, 0, 0, 0, 1000})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, p.Probability, 1e-9)
	assert.Equal(t, 1, p.Label)

	p, err = forest.Predict(decision.Features{400, 0, 0, 0, 0, 1000})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, p.Probability, 1e-9)
	assert.Equal(t, 0, p.Label)
}

func TestForest_ThresholdGoesLeft(t *testing.T) {
	forest := &Forest{Trees: []Tree{stump(0, 500, 0, 1)}}

	p, err := forest.Predict(decision.Features{500})
	require.NoError(t, err)
	assert.Zero(t, p.Probability)
}

func TestForest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		forest Forest
	}{
		{"no trees", Forest{}},
		{"empty tree", Forest{Trees: []Tree{{}}}},
		{"unknown feature", Forest{Trees: []Tree{stump(6, 1, 0, 1)}}},
		{"leaf out of range", Forest{Trees: []Tree{stump(0, 1, 0, 1.5)}}},
		{"child before parent", Forest{Trees: []Tree{{Nodes: []Node{
			{Feature: 0, Threshold: 1, Left: 0, Right: 1},
			{Leaf: true},
		}}}}},
		{"child out of range", Forest{Trees: []Tree{{Nodes: []Node{
			{Feature: 0, Threshold: 1, Left: 1, Right: 5},
			{Leaf: true},
		}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.forest.Validate())
		})
	}
}
