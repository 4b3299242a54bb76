// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

// Package dataset provides the raw post/user data model, CSV ingestion,
// train/test splitting and synthetic sample-data generation.
package dataset

import (
	"errors"
	"time"
)

// ErrMissingTarget indicates required target columns are absent from the
// training data. Fatal to the training run.
var ErrMissingTarget = errors.New("missing target columns")

// Target column names, in canonical order.
var TargetNames = []string{"likes", "shares", "comments"}

// Media types accepted for a post.
var MediaTypes = []string{"image", "video", "text"}

// PostRecord is a single raw social-media post with its account metadata.
// Immutable once extracted from source.
type PostRecord struct {
	// PostID identifies the post within its dataset.
	PostID string `json:"post_id,omitempty"`

	// PostText is the free-form post body. May be empty.
	PostText string `json:"post_text"`

	// MediaType is one of image, video, text.
	MediaType string `json:"media_type"`

	// Hashtags is a comma-joined hashtag string ("innovation,tech").
	// Empty means no hashtags.
	Hashtags string `json:"hashtags"`

	// Timestamp is when the post was published.
	Timestamp time.Time `json:"timestamp"`

	// UserID identifies the posting account.
	UserID string `json:"user_id,omitempty"`

	// FollowersCount is the account's follower count.
	FollowersCount int `json:"followers_count"`

	// FollowingCount is how many accounts this account follows.
	FollowingCount int `json:"following_count"`

	// AccountAge is the account age in days.
	AccountAge int `json:"account_age"`

	// Targets holds likes/shares/comments when present in the source.
	Targets *Engagement `json:"targets,omitempty"`
}

// Engagement holds the three target values for a post.
type Engagement struct {
	Likes    float64 `json:"likes"`
	Shares   float64 `json:"shares"`
	Comments float64 `json:"comments"`
}

// Total returns the summed engagement.
func (e Engagement) Total() float64 {
	return e.Likes + e.Shares + e.Comments
}

// Values returns the targets in canonical order (likes, shares, comments).
func (e Engagement) Values() []float64 {
	return []float64{e.Likes, e.Shares, e.Comments}
}
