// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package features

// Frame is an ordered, named numeric matrix. Rows all have len(Columns)
// values in column order.
type Frame struct {
	Columns []string
	Rows    [][]float64
}

// NewFrame allocates a frame with the given columns and row capacity.
func NewFrame(columns []string, nRows int) *Frame {
	rows := make([][]float64, nRows)
	for i := range rows {
		rows[i] = make([]float64, len(columns))
	}
	return &Frame{Columns: columns, Rows: rows}
}

// Column returns the index of a named column, or -1 if absent.
func (f *Frame) Column(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ReconcileReport describes the adjustments Reconcile made.
type ReconcileReport struct {
	Missing []string // target columns absent from the source, zero-filled
	Extra   []string // source columns absent from the target, dropped
}

// Changed reports whether any reconciliation was needed.
func (r *ReconcileReport) Changed() bool {
	return len(r.Missing) > 0 || len(r.Extra) > 0
}

// Reconcile reshapes the frame to exactly the target column set and
// order. Missing columns are zero-filled and extra columns dropped; the
// operation never fails. The returned report lets callers log drift.
func (f *Frame) Reconcile(target []string) (*Frame, ReconcileReport) {
	var report ReconcileReport

	srcIdx := make(map[string]int, len(f.Columns))
	for i, c := range f.Columns {
		srcIdx[c] = i
	}
	targetSet := make(map[string]bool, len(target))
	for _, c := range target {
		targetSet[c] = true
	}
	for _, c := range f.Columns {
		if !targetSet[c] {
			report.Extra = append(report.Extra, c)
		}
	}

	out := NewFrame(target, len(f.Rows))
	for j, c := range target {
		i, ok := srcIdx[c]
		if !ok {
			report.Missing = append(report.Missing, c)
			continue
		}
		for r := range f.Rows {
			out.Rows[r][j] = f.Rows[r][i]
		}
	}
	return out, report
}
