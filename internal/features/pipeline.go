// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package features

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"
)

// ColumnScaler standardizes one numeric column to zero mean and unit
// variance using statistics frozen at fit time. A constant column keeps
// scale 1 so transform is the identity shift.
type ColumnScaler struct {
	Mean  float64
	Scale float64
}

// Pipeline is the stateful feature transform: numeric standardization,
// one-hot categorical encoding, and text vectorization, all with
// parameters frozen by Fit. A fitted pipeline produces an identical
// column set and order for every input.
type Pipeline struct {
	Scalers    map[string]ColumnScaler
	Categories map[string][]string // sorted observed categories per column
	Text       *TextVectorizer
	FittedAt   time.Time

	columns []string
}

// NewPipeline returns an unfitted pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{Text: NewTextVectorizer()}
}

// Fitted reports whether Fit has completed.
func (p *Pipeline) Fitted() bool {
	return p.Scalers != nil
}

// Fit freezes scaling parameters, category sets, and the text vocabulary
// from the training set.
func (p *Pipeline) Fit(raws []Raw) error {
	if len(raws) == 0 {
		return fmt.Errorf("fit requires at least one record")
	}

	scalers := make(map[string]ColumnScaler, len(NumericNames))
	for _, name := range NumericNames {
		var sum float64
		for i := range raws {
			sum += sanitize(raws[i].Numeric[name])
		}
		mean := sum / float64(len(raws))

		var varSum float64
		for i := range raws {
			d := sanitize(raws[i].Numeric[name]) - mean
			varSum += d * d
		}
		scale := math.Sqrt(varSum / float64(len(raws)))
		if scale == 0 {
			scale = 1
		}
		scalers[name] = ColumnScaler{Mean: mean, Scale: scale}
	}

	categories := make(map[string][]string, len(CategoricalNames))
	for _, name := range CategoricalNames {
		seen := make(map[string]bool)
		for i := range raws {
			seen[raws[i].Categorical[name]] = true
		}
		cats := make([]string, 0, len(seen))
		for c := range seen {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		categories[name] = cats
	}

	docs := make([]string, len(raws))
	for i := range raws {
		docs[i] = raws[i].Text
	}
	if p.Text == nil {
		p.Text = NewTextVectorizer()
	}
	p.Text.Fit(docs)

	p.Scalers = scalers
	p.Categories = categories
	p.FittedAt = time.Now()
	p.columns = nil
	return nil
}

// FeatureNames returns the transformed column order: numeric columns in
// declared order, then one-hot columns per categorical column with
// categories sorted, then TF-IDF terms sorted.
func (p *Pipeline) FeatureNames() []string {
	if !p.Fitted() {
		return nil
	}
	if p.columns != nil {
		return p.columns
	}

	names := make([]string, 0, len(NumericNames)+len(p.Text.Vocabulary)+8)
	names = append(names, NumericNames...)
	for _, col := range CategoricalNames {
		for _, cat := range p.Categories[col] {
			names = append(names, col+"_"+cat)
		}
	}
	names = append(names, p.Text.FeatureNames()...)
	p.columns = names
	return names
}

// Transform applies the frozen state to raw features. Unseen categories
// map to the all-zero one-hot vector and out-of-vocabulary terms are
// dropped, so serve-time inputs never widen the column set.
func (p *Pipeline) Transform(raws []Raw) (*Frame, error) {
	if !p.Fitted() {
		return nil, ErrNotFitted
	}

	columns := p.FeatureNames()
	frame := NewFrame(columns, len(raws))

	for r := range raws {
		row := frame.Rows[r]
		j := 0
		for _, name := range NumericNames {
			sc := p.Scalers[name]
			row[j] = (sanitize(raws[r].Numeric[name]) - sc.Mean) / sc.Scale
			j++
		}
		for _, col := range CategoricalNames {
			val := raws[r].Categorical[col]
			for _, cat := range p.Categories[col] {
				if val == cat {
					row[j] = 1
				}
				j++
			}
		}
		copy(row[j:], p.Text.Transform(raws[r].Text))
	}
	return frame, nil
}

// FitTransform fits the pipeline and transforms the same records.
func (p *Pipeline) FitTransform(raws []Raw) (*Frame, error) {
	if err := p.Fit(raws); err != nil {
		return nil, err
	}
	return p.Transform(raws)
}

// RawFrame converts raw features into an unscaled numeric frame over the
// raw numeric columns only. It is the degraded representation used when
// a fitted pipeline is unavailable.
func RawFrame(raws []Raw) *Frame {
	frame := NewFrame(NumericNames, len(raws))
	for r := range raws {
		for j, name := range NumericNames {
			frame.Rows[r][j] = sanitize(raws[r].Numeric[name])
		}
	}
	return frame
}

// pipelineFile is the on-disk format: gob of the pipeline state,
// checksummed then gzip-compressed.
type pipelineFile struct {
	Checksum       string
	SavedAt        time.Time
	CompressedData []byte
}

// Save persists the fitted pipeline to path.
func (p *Pipeline) Save(path string) error {
	if !p.Fitted() {
		return ErrNotFitted
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("encode pipeline: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress pipeline: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // path is constructed from the configured models directory
	if err != nil {
		return fmt.Errorf("create pipeline file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after write is surfaced via encode

	pf := pipelineFile{
		Checksum:       hex.EncodeToString(hash[:]),
		SavedAt:        time.Now(),
		CompressedData: compressed.Bytes(),
	}
	if err := gob.NewEncoder(f).Encode(pf); err != nil {
		return fmt.Errorf("write pipeline file: %w", err)
	}
	return nil
}

// LoadPipeline restores a fitted pipeline from path, verifying the
// stored checksum before decoding.
func LoadPipeline(path string) (*Pipeline, error) {
	f, err := os.Open(path) //nolint:gosec // path is constructed from the configured models directory
	if err != nil {
		return nil, fmt.Errorf("open pipeline file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var pf pipelineFile
	if err := gob.NewDecoder(f).Decode(&pf); err != nil {
		return nil, fmt.Errorf("read pipeline file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(pf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress pipeline: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != pf.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", pf.Checksum, checksum)
	}

	var p Pipeline
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode pipeline: %w", err)
	}
	return &p, nil
}
