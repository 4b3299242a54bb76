// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package serving

import (
	"testing"
	"time"

	"github.com/engageai/engageai/internal/dataset"
)

func analysisCorpus() []dataset.PostRecord {
	// Monday 10:00 and Saturday 20:00 slots, two media types, one URL post.
	monday := time.Date(2026, 7, 6, 10, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 7, 11, 20, 0, 0, 0, time.UTC)
	return []dataset.PostRecord{
		{
			PostText:  "This launch is amazing, we love it",
			MediaType: "video",
			Hashtags:  "tech,ai",
			Timestamp: monday,
			Targets:   &dataset.Engagement{Likes: 100, Shares: 50, Comments: 30},
		},
		{
			PostText:  "Terrible outage, awful experience",
			MediaType: "text",
			Hashtags:  "tech",
			Timestamp: saturday,
			Targets:   &dataset.Engagement{Likes: 10, Shares: 2, Comments: 1},
		},
		{
			PostText:  "Weekly report attached https://example.com/report",
			MediaType: "text",
			Hashtags:  "",
			Timestamp: monday,
			Targets:   &dataset.Engagement{Likes: 20, Shares: 8, Comments: 4},
		},
		{
			PostText:  "Quarterly numbers published",
			MediaType: "video",
			Hashtags:  "ai",
			Timestamp: saturday,
			Targets:   &dataset.Engagement{Likes: 60, Shares: 30, Comments: 10},
		},
	}
}

func TestAnalyzeContentSentiment(t *testing.T) {
	ca := AnalyzeContent(analysisCorpus())

	sa := ca.SentimentAnalysis
	if sa.PositivePosts != 25 {
		t.Errorf("PositivePosts = %g, want 25", sa.PositivePosts)
	}
	if sa.NegativePosts != 25 {
		t.Errorf("NegativePosts = %g, want 25", sa.NegativePosts)
	}
	if sa.NeutralPosts != 50 {
		t.Errorf("NeutralPosts = %g, want 50", sa.NeutralPosts)
	}
	if sa.PositivePostsEngagement.AvgLikes != 100 {
		t.Errorf("positive AvgLikes = %g, want 100", sa.PositivePostsEngagement.AvgLikes)
	}
	if sa.NeutralPostsEngagement.AvgLikes != 40 {
		t.Errorf("neutral AvgLikes = %g, want 40", sa.NeutralPostsEngagement.AvgLikes)
	}
}

func TestAnalyzeContentTextFeatures(t *testing.T) {
	ca := AnalyzeContent(analysisCorpus())

	tf := ca.TextFeatures
	if tf.AvgHashtags != 1.0 {
		t.Errorf("AvgHashtags = %g, want 1.0", tf.AvgHashtags)
	}
	if len(tf.PopularHashtags) != 2 {
		t.Fatalf("PopularHashtags = %v, want 2 tags", tf.PopularHashtags)
	}
	// tech and ai both appear twice; alphabetical tie-break puts ai first.
	if tf.PopularHashtags[0] != "ai" || tf.PopularHashtags[1] != "tech" {
		t.Errorf("PopularHashtags = %v", tf.PopularHashtags)
	}
}

func TestAnalyzeContentTemporal(t *testing.T) {
	ca := AnalyzeContent(analysisCorpus())

	tp := ca.TemporalPatterns
	if len(tp.BestDays) != 2 {
		t.Fatalf("BestDays = %v", tp.BestDays)
	}
	// Monday totals (180+32)/2 = 106, Saturday (13+100)/2 = 56.5.
	if tp.BestDays[0].Period != "Monday" || tp.BestDays[0].AvgEngagement != 106 {
		t.Errorf("BestDays[0] = %+v", tp.BestDays[0])
	}
	if len(tp.WorstDays) != 2 || tp.WorstDays[len(tp.WorstDays)-1] != "Saturday" {
		t.Errorf("WorstDays = %v", tp.WorstDays)
	}
	if len(tp.BestHours) != 2 || tp.BestHours[0].Period != "10:00" {
		t.Errorf("BestHours = %v", tp.BestHours)
	}
}

func TestAnalyzeContentContentTypes(t *testing.T) {
	ca := AnalyzeContent(analysisCorpus())

	ct := ca.ContentTypeAnalysis
	if ct.URLPostsPercentage != 25 {
		t.Errorf("URLPostsPercentage = %g, want 25", ct.URLPostsPercentage)
	}
	video, ok := ct.ByMediaType["video"]
	if !ok {
		t.Fatalf("no video stats: %v", ct.ByMediaType)
	}
	if video.Percentage != 50 {
		t.Errorf("video Percentage = %g, want 50", video.Percentage)
	}
	// Video totals (180+100)/2 = 140.
	if video.AvgEngagement != 140 {
		t.Errorf("video AvgEngagement = %g, want 140", video.AvgEngagement)
	}
}

func TestAnalyzeContentEmpty(t *testing.T) {
	ca := AnalyzeContent(nil)
	if ca.SentimentAnalysis.PositivePosts != 0 || len(ca.TextFeatures.PopularHashtags) != 0 {
		t.Errorf("empty corpus should produce zero analysis: %+v", ca)
	}
}
