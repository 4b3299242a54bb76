// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package features

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/engageai/engageai/internal/dataset"
)

func basicRecord() dataset.PostRecord {
	return dataset.PostRecord{
		PostID:         "p1",
		PostText:       "Check out our amazing new platform! What do you think? https://example.com @partner",
		MediaType:      "video",
		Hashtags:       "innovation,tech",
		Timestamp:      time.Date(2026, 3, 7, 14, 30, 0, 0, time.UTC), // Saturday afternoon
		UserID:         "user001",
		FollowersCount: 100,
		FollowingCount: 0,
		AccountAge:     365,
	}
}

func TestExtractCompleteAndFinite(t *testing.T) {
	rec := basicRecord()
	raw := Extract(&rec)

	for _, name := range NumericNames {
		v, ok := raw.Numeric[name]
		if !ok {
			t.Errorf("numeric feature %q missing", name)
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("numeric feature %q = %v, want finite", name, v)
		}
	}
	for _, name := range CategoricalNames {
		if _, ok := raw.Categorical[name]; !ok {
			t.Errorf("categorical feature %q missing", name)
		}
	}
}

func TestExtractValues(t *testing.T) {
	rec := basicRecord()
	raw := Extract(&rec)

	cases := []struct {
		name string
		want float64
	}{
		{"hashtag_count", 2},
		{"avg_hashtag_length", 7}, // mean(len("innovation"), len("tech"))
		{"follower_following_ratio", 100},
		{"mention_count", 1},
		{"url_count", 1},
		{"exclamation_count", 1},
		{"question_count", 1},
		{"hour_of_day", 14},
		{"day_of_week", 5}, // Saturday, Monday=0
		{"month", 3},
	}
	for _, tc := range cases {
		if got := raw.Numeric[tc.name]; got != tc.want {
			t.Errorf("%s = %v, want %v", tc.name, got, tc.want)
		}
	}

	if raw.Categorical["time_category"] != "afternoon" {
		t.Errorf("time_category = %q, want afternoon", raw.Categorical["time_category"])
	}
	if raw.Categorical["is_weekend"] != "1" {
		t.Errorf("is_weekend = %q, want 1", raw.Categorical["is_weekend"])
	}
	if raw.Categorical["media_type"] != "video" {
		t.Errorf("media_type = %q, want video", raw.Categorical["media_type"])
	}
}

func TestExtractEmptyRecord(t *testing.T) {
	rec := dataset.PostRecord{}
	raw := Extract(&rec)

	for _, name := range []string{"text_length", "word_count", "avg_word_length", "hashtag_count", "avg_hashtag_length"} {
		if raw.Numeric[name] != 0 {
			t.Errorf("%s = %v, want 0 for empty record", name, raw.Numeric[name])
		}
	}
	if got := raw.Numeric["sentiment_neutral"]; got < 0.99 {
		t.Errorf("sentiment_neutral = %v, want ~1.0 for empty text", got)
	}
	if got := raw.Numeric["sentiment_compound"]; got != 0 {
		t.Errorf("sentiment_compound = %v, want 0 for empty text", got)
	}
	if raw.Categorical["media_type"] != "unknown" {
		t.Errorf("media_type = %q, want unknown", raw.Categorical["media_type"])
	}
}

func TestTimeCategory(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{4, "night"}, {5, "morning"}, {11, "morning"},
		{12, "afternoon"}, {16, "afternoon"},
		{17, "evening"}, {20, "evening"},
		{21, "night"}, {0, "night"},
	}
	for _, tc := range cases {
		if got := TimeCategory(tc.hour); got != tc.want {
			t.Errorf("TimeCategory(%d) = %q, want %q", tc.hour, got, tc.want)
		}
	}
}

func TestDayOfWeek(t *testing.T) {
	if got := DayOfWeek(time.Monday); got != 0 {
		t.Errorf("DayOfWeek(Monday) = %d, want 0", got)
	}
	if got := DayOfWeek(time.Sunday); got != 6 {
		t.Errorf("DayOfWeek(Sunday) = %d, want 6", got)
	}
	if got := DayOfWeek(time.Saturday); got != 5 {
		t.Errorf("DayOfWeek(Saturday) = %d, want 5", got)
	}
}

func TestAnalyzeSentimentPolarity(t *testing.T) {
	pos := AnalyzeSentiment("This is an amazing, wonderful product. We love it!")
	neg := AnalyzeSentiment("Terrible update. The app is broken and support failed us.")
	neu := AnalyzeSentiment("The meeting is scheduled for Thursday.")

	if pos.Compound <= 0 {
		t.Errorf("positive text compound = %v, want > 0", pos.Compound)
	}
	if neg.Compound >= 0 {
		t.Errorf("negative text compound = %v, want < 0", neg.Compound)
	}
	if math.Abs(neu.Compound) > 0.3 {
		t.Errorf("neutral text compound = %v, want near 0", neu.Compound)
	}
	if pos.Compound < -1 || pos.Compound > 1 || neg.Compound < -1 || neg.Compound > 1 {
		t.Error("compound scores outside [-1, 1]")
	}

	for name, s := range map[string]SentimentScores{"pos": pos, "neg": neg, "neu": neu} {
		sum := s.Positive + s.Negative + s.Neutral
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("%s proportions sum to %v, want 1", name, sum)
		}
	}
}

func TestVectorizerFitRules(t *testing.T) {
	docs := []string{
		"growth strategy for digital marketing",
		"growth tips and marketing strategy",
		"growth mindset wins",
		"growth growth growth",
		"single mention of quarterly here",
	}
	v := NewTextVectorizer()
	v.Fit(docs)

	vocab := make(map[string]bool, len(v.Vocabulary))
	for _, term := range v.Vocabulary {
		vocab[term] = true
	}

	// df("growth") = 4/5 = 0.8 exactly; max_df is inclusive.
	if !vocab["growth"] {
		t.Error("expected growth in vocabulary at the max_df boundary")
	}
	if !vocab["strategy"] || !vocab["marketing"] {
		t.Error("expected strategy and marketing (df=2) in vocabulary")
	}
	if vocab["quarterly"] {
		t.Error("term with df=1 should be excluded by min_df")
	}
	if vocab["and"] || vocab["for"] || vocab["of"] {
		t.Error("stop words should be excluded")
	}

	for i := 1; i < len(v.Vocabulary); i++ {
		if v.Vocabulary[i-1] >= v.Vocabulary[i] {
			t.Fatal("vocabulary not sorted")
		}
	}

	names := v.FeatureNames()
	for _, n := range names {
		if len(n) < 7 || n[:6] != "tfidf_" {
			t.Errorf("feature name %q missing tfidf_ prefix", n)
		}
	}
}

func TestVectorizerTransformNormalized(t *testing.T) {
	docs := []string{
		"marketing strategy growth",
		"marketing growth tips",
		"strategy tips session",
	}
	v := NewTextVectorizer()
	v.Fit(docs)

	vec := v.Transform("marketing strategy with unseen vocabulary")
	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if math.Abs(norm-1) > 1e-9 {
		t.Errorf("transform L2 norm^2 = %v, want 1", norm)
	}

	zero := v.Transform("completely disjoint wording")
	for i, x := range zero {
		if x != 0 {
			t.Errorf("out-of-vocabulary doc has nonzero weight at %d", i)
		}
	}
}

func trainingRecords() []dataset.PostRecord {
	recs, _ := dataset.Generate(dataset.GenerateOptions{
		NumPosts: 60, NumUsers: 8, Seed: 3,
		End: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	return recs
}

func TestPipelineNotFitted(t *testing.T) {
	p := NewPipeline()
	rec := basicRecord()
	if _, err := p.Transform([]Raw{Extract(&rec)}); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Transform on unfitted pipeline: err = %v, want ErrNotFitted", err)
	}
	if err := p.Save("unused"); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Save on unfitted pipeline: err = %v, want ErrNotFitted", err)
	}
}

func TestPipelineColumnStability(t *testing.T) {
	raws := ExtractAll(trainingRecords())
	p := NewPipeline()
	frame, err := p.FitTransform(raws)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if len(frame.Columns) != len(p.FeatureNames()) {
		t.Fatalf("frame has %d columns, FeatureNames has %d", len(frame.Columns), len(p.FeatureNames()))
	}
	for _, row := range frame.Rows {
		if len(row) != len(frame.Columns) {
			t.Fatal("ragged row in transformed frame")
		}
	}

	// A single serve-time record with an unseen category must produce the
	// same columns, with the unseen category encoded as all zeros.
	rec := basicRecord()
	rec.MediaType = "livestream"
	single, err := p.Transform([]Raw{Extract(&rec)})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if len(single.Columns) != len(frame.Columns) {
		t.Fatalf("serve columns = %d, fit columns = %d", len(single.Columns), len(frame.Columns))
	}
	for i := range single.Columns {
		if single.Columns[i] != frame.Columns[i] {
			t.Fatalf("column order drift at %d: %q vs %q", i, single.Columns[i], frame.Columns[i])
		}
	}
	for _, col := range frame.Columns {
		if len(col) > 11 && col[:11] == "media_type_" {
			if v := single.Rows[0][single.Column(col)]; v != 0 {
				t.Errorf("unseen category set %s = %v, want 0", col, v)
			}
		}
	}
}

func TestPipelineScaling(t *testing.T) {
	raws := ExtractAll(trainingRecords())
	p := NewPipeline()
	frame, err := p.FitTransform(raws)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	// Scaled training columns have zero mean and unit variance.
	j := frame.Column("followers_count")
	var mean float64
	for _, row := range frame.Rows {
		mean += row[j]
	}
	mean /= float64(len(frame.Rows))
	if math.Abs(mean) > 1e-9 {
		t.Errorf("scaled column mean = %v, want 0", mean)
	}

	var variance float64
	for _, row := range frame.Rows {
		variance += (row[j] - mean) * (row[j] - mean)
	}
	variance /= float64(len(frame.Rows))
	if math.Abs(variance-1) > 1e-6 {
		t.Errorf("scaled column variance = %v, want 1", variance)
	}
}

func TestPipelineSaveLoadRoundTrip(t *testing.T) {
	raws := ExtractAll(trainingRecords())
	p := NewPipeline()
	if _, err := p.FitTransform(raws); err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "feature_engineering_20260501_120000.gob.gz")
	if err := p.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadPipeline(path)
	if err != nil {
		t.Fatalf("LoadPipeline failed: %v", err)
	}

	rec := basicRecord()
	before, err := p.Transform([]Raw{Extract(&rec)})
	if err != nil {
		t.Fatalf("Transform before save failed: %v", err)
	}
	after, err := loaded.Transform([]Raw{Extract(&rec)})
	if err != nil {
		t.Fatalf("Transform after load failed: %v", err)
	}

	if len(before.Columns) != len(after.Columns) {
		t.Fatalf("column count changed across round trip: %d vs %d", len(before.Columns), len(after.Columns))
	}
	for i := range before.Rows[0] {
		if math.Abs(before.Rows[0][i]-after.Rows[0][i]) > 1e-12 {
			t.Fatalf("value drift at column %s: %v vs %v",
				before.Columns[i], before.Rows[0][i], after.Rows[0][i])
		}
	}

	if _, err := LoadPipeline(filepath.Join(t.TempDir(), "missing.gob.gz")); err == nil {
		t.Error("expected error loading missing pipeline file")
	}
}

func TestFrameReconcile(t *testing.T) {
	src := &Frame{
		Columns: []string{"a", "b", "c"},
		Rows:    [][]float64{{1, 2, 3}},
	}
	out, report := src.Reconcile([]string{"c", "a", "d"})

	if !report.Changed() {
		t.Error("expected reconciliation report to record changes")
	}
	if len(report.Missing) != 1 || report.Missing[0] != "d" {
		t.Errorf("Missing = %v, want [d]", report.Missing)
	}
	if len(report.Extra) != 1 || report.Extra[0] != "b" {
		t.Errorf("Extra = %v, want [b]", report.Extra)
	}
	want := []float64{3, 1, 0}
	for i, v := range want {
		if out.Rows[0][i] != v {
			t.Errorf("reconciled row = %v, want %v", out.Rows[0], want)
			break
		}
	}

	same, report := src.Reconcile([]string{"a", "b", "c"})
	if report.Changed() {
		t.Error("identical schema should report no changes")
	}
	for i, v := range []float64{1, 2, 3} {
		if same.Rows[0][i] != v {
			t.Errorf("identity reconcile row = %v", same.Rows[0])
			break
		}
	}
}
