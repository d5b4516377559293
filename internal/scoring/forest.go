// Package scoring provides the decision-forest classifier used for the
// advisory approval probability.
package scoring

import (
	"errors"
	"fmt"

	"github.com/Dan9191/credit-service/internal/decision"
)

// FeatureNames lists the model inputs in decision.Features order.
var FeatureNames = []string{
	"score",
	"possui_restricoes",
	"atrasos_30_dias",
	"atrasos_60_dias",
	"atrasos_90_dias",
	"renda_mensal",
}

// ErrModelNotLoaded is returned by an empty Holder.
var ErrModelNotLoaded = errors.New("scoring model not loaded")

// Node is a split or a leaf. A sample goes to Left when
// features[Feature] <= Threshold.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"` // probability of approval at the leaf
}

// Tree is a binary tree rooted at Nodes[0]
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest averages the leaf probabilities of its trees
type Forest struct {
	Version  int      `json:"version"`
	Features []string `json:"features"`
	Trees    []Tree   `json:"trees"`
}

// Validate checks the forest structure. Children must come after their
// parent so that every walk terminates.
func (f *Forest) Validate() error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for ti, tree := range f.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, node := range tree.Nodes {
			if node.Leaf {
				if node.Value < 0 || node.Value > 1 {
					return fmt.Errorf("tree %d node %d: leaf value %v outside [0, 1]", ti, ni, node.Value)
				}
				continue
			}
			if node.Feature < 0 || node.Feature >= len(decision.Features{}) {
				return fmt.Errorf("tree %d node %d: unknown feature %d", ti, ni, node.Feature)
			}
			for _, child := range []int{node.Left, node.Right} {
				if child <= ni || child >= len(tree.Nodes) {
					return fmt.Errorf("tree %d node %d: invalid child %d", ti, ni, child)
				}
			}
		}
	}
	return nil
}

// Predict implements decision.Scorer
func (f *Forest) Predict(features decision.Features) (decision.Prediction, error) {
	var sum float64
	for ti := range f.Trees {
		v, err := f.Trees[ti].walk(features)
		if err != nil {
			return decision.Prediction{}, fmt.Errorf("tree %d: %w", ti, err)
		}
		sum += v
	}
	p := sum / float64(len(f.Trees))
	label := 0
	if p > 0.5 {
		label = 1
	}
	return decision.Prediction{Label: label, Probability: p}, nil
}

func (t *Tree) walk(features decision.Features) (float64, error) {
	i := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if i < 0 || i >= len(t.Nodes) {
			return 0, fmt.Errorf("node index %d out of range", i)
		}
		node := t.Nodes[i]
		if node.Leaf {
			return node.Value, nil
		}
		if features[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
	return 0, fmt.Errorf("walk did not reach a leaf")
}

func stump(feature int, threshold, low, high float64) Tree {
	return Tree{Nodes: []Node{
		{Feature: feature, Threshold: threshold, Left: 1, Right: 2},
		{Leaf: true, Value: low},
		{Leaf: true, Value: high},
	}}
}

// SeedForest returns the fixed model written when no model file exists.
// Each stump separates the approved and rejected reference profiles on a
// single feature.
func SeedForest() *Forest {
	return &Forest{
		Version:  1,
		Features: FeatureNames,
		Trees: []Tree{
			stump(0, 550, 0, 1),  // score
			stump(1, 0.5, 1, 0),  // restriction flag
			stump(2, 2.5, 1, 0),  // late 1-30
			stump(3, 0.5, 1, 0),  // late 31-60
			stump(5, 3000, 0, 1), // income
		},
	}
}
