// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package model

import "fmt"

// Attribution assigns each feature a signed contribution to one row's
// prediction by walking every tree's decision path: at each internal
// node the change in expected value between the node and the taken
// child is credited to the split feature. This is a fast path-based
// approximation in the SHAP family, good enough for diagnostics; it is
// best-effort and never required by the serving path.

// attributor is satisfied by regressors that can explain a single row.
type attributor interface {
	attributeRow(row []float64, contrib []float64)
}

// treeContrib walks one tree and credits value deltas to split
// features, scaled by the ensemble's weight for this tree.
func treeContrib(t *Tree, row []float64, scale float64, contrib []float64) {
	i := 0
	for !t.IsLeaf(i) {
		n := &t.Nodes[i]
		var next int
		if row[n.Feature] <= n.Threshold {
			next = n.Left
		} else {
			next = n.Right
		}
		contrib[n.Feature] += scale * (t.Nodes[next].Value - n.Value)
		i = next
	}
}

func (f *Forest) attributeRow(row []float64, contrib []float64) {
	if len(f.Trees) == 0 {
		return
	}
	scale := 1 / float64(len(f.Trees))
	for _, t := range f.Trees {
		treeContrib(t, row, scale, contrib)
	}
}

func (g *GBM) attributeRow(row []float64, contrib []float64) {
	for _, t := range g.Trees {
		treeContrib(t, row, g.Params.LearningRate, contrib)
	}
}

func (x *XGB) attributeRow(row []float64, contrib []float64) {
	for _, t := range x.Trees {
		treeContrib(t, row, x.Params.LearningRate, contrib)
	}
}

func (l *LGBM) attributeRow(row []float64, contrib []float64) {
	for _, t := range l.Trees {
		treeContrib(t, row, l.Params.LearningRate, contrib)
	}
}

// Attribution explains a single row's prediction as per-feature
// contributions summed across the three targets. The row must match
// FeatureNames in width.
func (m *Model) Attribution(row []float64) (map[string]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.trained {
		return nil, ErrNotTrained
	}
	if len(row) != len(m.FeatureNames) {
		return nil, fmt.Errorf("attribution: row has %d values, model expects %d", len(row), len(m.FeatureNames))
	}

	mo, ok := m.regressor.(*MultiOutput)
	if !ok {
		return nil, fmt.Errorf("attribution: unexpected regressor type %T", m.regressor)
	}

	contrib := make([]float64, len(m.FeatureNames))
	for _, sub := range mo.Subs {
		a, ok := sub.(attributor)
		if !ok {
			return nil, fmt.Errorf("attribution: %T does not support path attribution", sub)
		}
		a.attributeRow(row, contrib)
	}

	out := make(map[string]float64, len(contrib))
	for i, v := range contrib {
		out[m.FeatureNames[i]] = v
	}
	return out, nil
}
