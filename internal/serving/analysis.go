// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package serving

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/engageai/engageai/internal/dataset"
	"github.com/engageai/engageai/internal/features"
)

// EngagementAverages holds mean per-target engagement for one slice of
// the corpus.
type EngagementAverages struct {
	AvgLikes    float64 `json:"avg_likes"`
	AvgShares   float64 `json:"avg_shares"`
	AvgComments float64 `json:"avg_comments"`
}

// SentimentAnalysis summarizes the sentiment mix of a dataset and the
// engagement each sentiment bucket earns. Percentages are of all posts.
type SentimentAnalysis struct {
	PositivePosts           float64            `json:"positive_posts"`
	NegativePosts           float64            `json:"negative_posts"`
	NeutralPosts            float64            `json:"neutral_posts"`
	PositivePostsEngagement EngagementAverages `json:"positive_posts_engagement"`
	NegativePostsEngagement EngagementAverages `json:"negative_posts_engagement"`
	NeutralPostsEngagement  EngagementAverages `json:"neutral_posts_engagement"`
}

// TextFeatureAnalysis summarizes text-shape statistics.
type TextFeatureAnalysis struct {
	AvgPostLength   float64  `json:"avg_post_length"`
	AvgHashtags     float64  `json:"avg_hashtags"`
	PopularHashtags []string `json:"popular_hashtags"`
}

// PeriodEngagement names a day or hour with its average total
// engagement.
type PeriodEngagement struct {
	Period        string  `json:"period"`
	AvgEngagement float64 `json:"avg_engagement"`
}

// TemporalPatterns ranks posting periods by observed engagement.
type TemporalPatterns struct {
	BestDays   []PeriodEngagement `json:"best_days"`
	BestHours  []PeriodEngagement `json:"best_hours"`
	WorstDays  []string           `json:"worst_days"`
	WorstHours []string           `json:"worst_hours"`
}

// MediaTypeStats summarizes one media type's share and engagement.
type MediaTypeStats struct {
	Percentage    float64 `json:"percentage"`
	AvgEngagement float64 `json:"avg_engagement"`
}

// ContentTypeAnalysis breaks engagement down by media type and URL
// presence.
type ContentTypeAnalysis struct {
	ByMediaType        map[string]MediaTypeStats `json:"by_media_type"`
	URLPostsPercentage float64                   `json:"url_posts_percentage"`
}

// ContentAnalysis is the aggregate content statistics document computed
// over the training corpus and persisted alongside a training run.
type ContentAnalysis struct {
	SentimentAnalysis   SentimentAnalysis   `json:"sentiment_analysis"`
	TextFeatures        TextFeatureAnalysis `json:"text_features"`
	TemporalPatterns    TemporalPatterns    `json:"temporal_patterns"`
	ContentTypeAnalysis ContentTypeAnalysis `json:"content_type_analysis"`
}

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// AnalyzeContent computes aggregate sentiment, text, temporal, and
// content-type statistics over a labeled corpus. Records without
// targets contribute zero engagement. Compound sentiment within
// (-0.05, 0.05) counts as neutral.
//
//nolint:gocyclo // one linear pass per statistic family
func AnalyzeContent(records []dataset.PostRecord) ContentAnalysis {
	var out ContentAnalysis
	n := len(records)
	if n == 0 {
		return out
	}

	raws := features.ExtractAll(records)
	totals := make([]float64, n)
	for i := range records {
		if records[i].Targets != nil {
			totals[i] = records[i].Targets.Total()
		}
	}
	pct := func(c int) float64 { return round2(100 * float64(c) / float64(n)) }

	// Sentiment buckets.
	type bucket struct {
		count                   int
		likes, shares, comments float64
	}
	var pos, neg, neu bucket
	for i := range raws {
		b := &neu
		switch compound := raws[i].Numeric["sentiment_compound"]; {
		case compound >= 0.05:
			b = &pos
		case compound <= -0.05:
			b = &neg
		}
		b.count++
		if t := records[i].Targets; t != nil {
			b.likes += t.Likes
			b.shares += t.Shares
			b.comments += t.Comments
		}
	}
	avg := func(b bucket) EngagementAverages {
		if b.count == 0 {
			return EngagementAverages{}
		}
		c := float64(b.count)
		return EngagementAverages{
			AvgLikes:    round2(b.likes / c),
			AvgShares:   round2(b.shares / c),
			AvgComments: round2(b.comments / c),
		}
	}
	out.SentimentAnalysis = SentimentAnalysis{
		PositivePosts:           pct(pos.count),
		NegativePosts:           pct(neg.count),
		NeutralPosts:            pct(neu.count),
		PositivePostsEngagement: avg(pos),
		NegativePostsEngagement: avg(neg),
		NeutralPostsEngagement:  avg(neu),
	}

	// Text shape.
	var lengthSum, hashtagSum float64
	tagCounts := make(map[string]int)
	urlPosts := 0
	for i := range raws {
		lengthSum += raws[i].Numeric["text_length"]
		hashtagSum += raws[i].Numeric["hashtag_count"]
		if raws[i].Numeric["url_count"] > 0 {
			urlPosts++
		}
		for _, tag := range strings.Split(records[i].Hashtags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tagCounts[tag]++
			}
		}
	}
	out.TextFeatures = TextFeatureAnalysis{
		AvgPostLength:   round2(lengthSum / float64(n)),
		AvgHashtags:     round2(hashtagSum / float64(n)),
		PopularHashtags: topHashtags(tagCounts, 5),
	}

	// Temporal patterns over observed totals.
	daySum := make([]float64, 7)
	dayCount := make([]int, 7)
	hourSum := make([]float64, 24)
	hourCount := make([]int, 24)
	for i := range raws {
		day := int(raws[i].Numeric["day_of_week"])
		hour := int(raws[i].Numeric["hour_of_day"])
		if day >= 0 && day < 7 {
			daySum[day] += totals[i]
			dayCount[day]++
		}
		if hour >= 0 && hour < 24 {
			hourSum[hour] += totals[i]
			hourCount[hour]++
		}
	}
	out.TemporalPatterns = temporalPatterns(daySum, dayCount, hourSum, hourCount)

	// Content types.
	type mediaBucket struct {
		count int
		total float64
	}
	mediaBuckets := make(map[string]*mediaBucket)
	for i := range raws {
		mt := raws[i].Categorical["media_type"]
		b := mediaBuckets[mt]
		if b == nil {
			b = &mediaBucket{}
			mediaBuckets[mt] = b
		}
		b.count++
		b.total += totals[i]
	}
	byMedia := make(map[string]MediaTypeStats, len(mediaBuckets))
	for mt, b := range mediaBuckets {
		byMedia[mt] = MediaTypeStats{
			Percentage:    pct(b.count),
			AvgEngagement: round2(b.total / float64(b.count)),
		}
	}
	out.ContentTypeAnalysis = ContentTypeAnalysis{
		ByMediaType:        byMedia,
		URLPostsPercentage: pct(urlPosts),
	}
	return out
}

func temporalPatterns(daySum []float64, dayCount []int, hourSum []float64, hourCount []int) TemporalPatterns {
	var days []PeriodEngagement
	for d := 0; d < 7; d++ {
		if dayCount[d] == 0 {
			continue
		}
		days = append(days, PeriodEngagement{
			Period:        dayNames[d],
			AvgEngagement: round2(daySum[d] / float64(dayCount[d])),
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].AvgEngagement > days[j].AvgEngagement })

	var hours []PeriodEngagement
	for h := 0; h < 24; h++ {
		if hourCount[h] == 0 {
			continue
		}
		hours = append(hours, PeriodEngagement{
			Period:        fmt.Sprintf("%02d:00", h),
			AvgEngagement: round2(hourSum[h] / float64(hourCount[h])),
		})
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].AvgEngagement > hours[j].AvgEngagement })

	tp := TemporalPatterns{
		BestDays:  topPeriods(days, 3),
		BestHours: topPeriods(hours, 3),
	}
	for _, p := range bottomPeriods(days, 2) {
		tp.WorstDays = append(tp.WorstDays, p.Period)
	}
	for _, p := range bottomPeriods(hours, 3) {
		tp.WorstHours = append(tp.WorstHours, p.Period)
	}
	return tp
}

func topPeriods(sorted []PeriodEngagement, k int) []PeriodEngagement {
	if len(sorted) < k {
		k = len(sorted)
	}
	return append([]PeriodEngagement(nil), sorted[:k]...)
}

func bottomPeriods(sorted []PeriodEngagement, k int) []PeriodEngagement {
	if len(sorted) < k {
		k = len(sorted)
	}
	return append([]PeriodEngagement(nil), sorted[len(sorted)-k:]...)
}

func topHashtags(counts map[string]int, k int) []string {
	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > k {
		tags = tags[:k]
	}
	return tags
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
