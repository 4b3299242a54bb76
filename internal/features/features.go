// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

// Package features converts raw post records into model-ready numeric
// vectors.
//
// Extraction is a pure function from a PostRecord to a fixed set of named
// numeric and categorical values. The transform pipeline then freezes
// scaling parameters, category sets, and a text vocabulary at fit time and
// applies that exact frozen state at serve time. The column set and order
// produced by a fitted pipeline never change for its lifetime; serving
// reconciles any drift by zero-filling missing columns and dropping
// extras.
package features

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/engageai/engageai/internal/dataset"
)

// ErrNotFitted is returned when Transform is called on a pipeline that
// has not been fitted. Callers on the prediction path treat this as
// recoverable and fall back to raw features.
var ErrNotFitted = errors.New("pipeline not fitted")

// NumericNames lists the raw numeric features in their canonical order.
var NumericNames = []string{
	"followers_count", "following_count", "account_age",
	"text_length", "word_count", "avg_word_length",
	"sentiment_compound", "sentiment_positive", "sentiment_negative", "sentiment_neutral",
	"mention_count", "url_count", "exclamation_count", "question_count",
	"hashtag_count", "avg_hashtag_length", "follower_following_ratio",
	"hour_of_day", "day_of_week", "month",
}

// CategoricalNames lists the raw categorical features in their canonical
// order.
var CategoricalNames = []string{"media_type", "time_category", "is_weekend"}

var (
	mentionRe = regexp.MustCompile(`@\w+`)
	urlRe     = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// Raw holds the extracted, untransformed features of a single post.
type Raw struct {
	Numeric     map[string]float64
	Categorical map[string]string
	Text        string
}

// Extract derives the full raw feature set from a post record. It never
// fails: absent text yields zero counts and neutral sentiment, a zero
// timestamp yields zero temporal features, and the follower ratio guards
// against a zero following count.
func Extract(rec *dataset.PostRecord) Raw {
	num := make(map[string]float64, len(NumericNames))
	cat := make(map[string]string, len(CategoricalNames))

	num["followers_count"] = float64(rec.FollowersCount)
	num["following_count"] = float64(rec.FollowingCount)
	num["account_age"] = float64(rec.AccountAge)

	following := rec.FollowingCount
	if following < 1 {
		following = 1
	}
	num["follower_following_ratio"] = float64(rec.FollowersCount) / float64(following)

	extractText(rec.PostText, num)
	extractHashtags(rec.Hashtags, num)
	extractTemporal(rec, num, cat)

	mediaType := rec.MediaType
	if mediaType == "" {
		mediaType = "unknown"
	}
	cat["media_type"] = mediaType

	return Raw{Numeric: num, Categorical: cat, Text: rec.PostText}
}

// ExtractAll extracts raw features for every record.
func ExtractAll(records []dataset.PostRecord) []Raw {
	out := make([]Raw, len(records))
	for i := range records {
		out[i] = Extract(&records[i])
	}
	return out
}

func extractText(text string, num map[string]float64) {
	num["text_length"] = float64(len(text))

	words := strings.Fields(text)
	num["word_count"] = float64(len(words))

	var avgLen float64
	if len(words) > 0 {
		total := 0
		for _, w := range words {
			total += len(w)
		}
		avgLen = float64(total) / float64(len(words))
	}
	num["avg_word_length"] = avgLen

	s := AnalyzeSentiment(text)
	num["sentiment_compound"] = s.Compound
	num["sentiment_positive"] = s.Positive
	num["sentiment_negative"] = s.Negative
	num["sentiment_neutral"] = s.Neutral

	num["mention_count"] = float64(len(mentionRe.FindAllString(text, -1)))
	num["url_count"] = float64(len(urlRe.FindAllString(text, -1)))
	num["exclamation_count"] = float64(strings.Count(text, "!"))
	num["question_count"] = float64(strings.Count(text, "?"))
}

func extractHashtags(hashtags string, num map[string]float64) {
	if hashtags == "" {
		num["hashtag_count"] = 0
		num["avg_hashtag_length"] = 0
		return
	}

	tags := strings.Split(hashtags, ",")
	total := 0
	for _, t := range tags {
		total += len(strings.TrimSpace(t))
	}
	num["hashtag_count"] = float64(len(tags))
	num["avg_hashtag_length"] = float64(total) / float64(len(tags))
}

func extractTemporal(rec *dataset.PostRecord, num map[string]float64, cat map[string]string) {
	ts := rec.Timestamp

	hour := ts.Hour()
	dow := DayOfWeek(ts.Weekday())
	num["hour_of_day"] = float64(hour)
	num["day_of_week"] = float64(dow)
	if ts.IsZero() {
		num["month"] = 0
	} else {
		num["month"] = float64(ts.Month())
	}

	isWeekend := 0
	if dow >= 5 {
		isWeekend = 1
	}
	cat["is_weekend"] = strconv.Itoa(isWeekend)
	cat["time_category"] = TimeCategory(hour)
}

// TimeCategory buckets an hour of day into morning, afternoon, evening,
// or night.
func TimeCategory(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 21:
		return "evening"
	default:
		return "night"
	}
}

// DayOfWeek converts Go's Sunday-based weekday to the Monday=0 index
// used throughout the feature space.
func DayOfWeek(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// sanitize replaces NaN and infinities with zero so the feature matrix
// stays finite regardless of input.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
