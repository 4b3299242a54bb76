// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package model

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// TimestampFormat produces lexicographically sortable artifact
// timestamps, so "latest" is the maximum string.
const TimestampFormat = "20060102_150405"

const (
	modelExt       = ".gob.gz"
	metadataSuffix = "_metadata.json"
	pipelinePrefix = "feature_engineering_"
	trainRunPrefix = "additional_metadata_"
)

// Metadata is the self-describing companion artifact persisted next to
// model weights. A loaded model is unusable without it: it carries the
// feature order the weights were fitted on.
type Metadata struct {
	ModelType         string                  `json:"model_type"`
	FeatureNames      []string                `json:"feature_names"`
	TargetNames       []string                `json:"target_names"`
	Metrics           map[string]SplitMetrics `json:"metrics"`
	FeatureImportance map[string]float64      `json:"feature_importance"`
	Timestamp         string                  `json:"timestamp"`
}

// Store manages model artifacts in a single directory. Writes are
// serialized; reads are safe at any time because artifacts are
// immutable once written.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates the artifact directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create models directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string {
	return s.dir
}

// ModelName builds the canonical artifact identifier for an algorithm,
// target label, and timestamp.
func ModelName(algorithm, target string, ts time.Time) string {
	return fmt.Sprintf("%s_%s_%s", algorithm, target, ts.Format(TimestampFormat))
}

// PipelineFilename builds the transform-pipeline artifact filename for
// a timestamp.
func PipelineFilename(ts time.Time) string {
	return pipelinePrefix + ts.Format(TimestampFormat) + modelExt
}

// modelState is the gob payload for model weights.
type modelState struct {
	Algorithm string
	Params    Hyperparams
	Regressor *MultiOutput
}

// storedFile is the on-disk weights format: checksummed gob, gzipped.
type storedFile struct {
	Checksum       string
	SavedAt        time.Time
	CompressedData []byte
}

// Save persists the model's weights and metadata under the given name.
// Weights go to {name}.gob.gz, metadata to {name}_metadata.json.
func (s *Store) Save(m *Model, name string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.trained {
		return ErrNotTrained
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mo, ok := m.regressor.(*MultiOutput)
	if !ok {
		return fmt.Errorf("save: unexpected regressor type %T", m.regressor)
	}

	state := modelState{Algorithm: m.Algorithm, Params: m.Params, Regressor: mo}
	if err := writeGobArtifact(filepath.Join(s.dir, name+modelExt), &state); err != nil {
		return err
	}

	importance := make(map[string]float64, len(m.FeatureNames))
	for i, score := range m.regressor.Importances() {
		if i < len(m.FeatureNames) {
			importance[m.FeatureNames[i]] = score
		}
	}

	meta := Metadata{
		ModelType:         m.Algorithm,
		FeatureNames:      m.FeatureNames,
		TargetNames:       TargetNames,
		Metrics:           m.Metrics,
		FeatureImportance: importance,
		Timestamp:         time.Now().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name+metadataSuffix), data, 0o640); err != nil { //nolint:gosec // metadata is not sensitive
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Load restores a model and its metadata by artifact name. Both
// artifacts must exist; a missing one yields ErrArtifactNotFound and no
// partial state.
func (s *Store) Load(name string) (*Model, *Metadata, error) {
	weightsPath := filepath.Join(s.dir, name+modelExt)
	metaPath := filepath.Join(s.dir, name+metadataSuffix)

	for _, p := range []string{weightsPath, metaPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, filepath.Base(p))
		}
	}

	var state modelState
	if err := readGobArtifact(weightsPath, &state); err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(metaPath) //nolint:gosec // path is within the configured models directory
	if err != nil {
		return nil, nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, nil, fmt.Errorf("decode metadata: %w", err)
	}

	m := &Model{
		Algorithm:    state.Algorithm,
		Params:       state.Params,
		FeatureNames: meta.FeatureNames,
		Metrics:      meta.Metrics,
		regressor:    state.Regressor,
		trained:      true,
		trainedAt:    time.Now(),
	}
	if ts, err := time.Parse(time.RFC3339, meta.Timestamp); err == nil {
		m.trainedAt = ts
	}
	return m, &meta, nil
}

// LatestModelName returns the artifact name of the most recently
// trained model, determined by descending lexicographic sort of the
// timestamp-embedded filenames.
func (s *Store) LatestModelName() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("read models directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, modelExt) || strings.HasPrefix(name, pipelinePrefix) {
			continue
		}
		names = append(names, strings.TrimSuffix(name, modelExt))
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: no models in %s", ErrArtifactNotFound, s.dir)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names[0], nil
}

// LatestPipelinePath returns the path of the most recent transform
// pipeline artifact.
func (s *Store) LatestPipelinePath() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("read models directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), pipelinePrefix) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: no transform pipeline in %s", ErrArtifactNotFound, s.dir)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return filepath.Join(s.dir, names[0]), nil
}

// SaveTrainingRun persists a training-run document (per-algorithm
// metrics, corpus statistics) as additional_metadata_{timestamp}.json.
func (s *Store) SaveTrainingRun(ts time.Time, doc interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal training run: %w", err)
	}
	name := trainRunPrefix + ts.Format(TimestampFormat) + ".json"
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o640); err != nil { //nolint:gosec // training stats are not sensitive
		return fmt.Errorf("write training run: %w", err)
	}
	return nil
}

// LoadTrainingRun decodes the most recent training-run document into
// doc. Returns ErrArtifactNotFound when no training run was recorded.
func (s *Store) LoadTrainingRun(doc interface{}) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read models directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), trainRunPrefix) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: no training run in %s", ErrArtifactNotFound, s.dir)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	data, err := os.ReadFile(filepath.Join(s.dir, names[0])) //nolint:gosec // path is within the configured models directory
	if err != nil {
		return fmt.Errorf("read training run: %w", err)
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("decode training run: %w", err)
	}
	return nil
}

func writeGobArtifact(path string, data interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // path is within the configured models directory
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after write is surfaced via encode

	sf := storedFile{
		Checksum:       hex.EncodeToString(hash[:]),
		SavedAt:        time.Now(),
		CompressedData: compressed.Bytes(),
	}
	if err := gob.NewEncoder(f).Encode(sf); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}
	return nil
}

func readGobArtifact(path string, target interface{}) error {
	f, err := os.Open(path) //nolint:gosec // path is within the configured models directory
	if err != nil {
		return fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return fmt.Errorf("read model file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Checksum {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(target); err != nil {
		return fmt.Errorf("decode model: %w", err)
	}
	return nil
}

// Register concrete regressor types so the MultiOutput interface slice
// survives gob round trips.
//
//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(&Forest{})
	gob.Register(&GBM{})
	gob.Register(&XGB{})
	gob.Register(&LGBM{})
}
