// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package api

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/engageai/engageai/internal/dataset"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PredictRequest is the request body for POST /api/v1/predict.
// Account fields default to zero when omitted.
type PredictRequest struct {
	PostText       string `json:"post_text" validate:"required,max=10000"`
	MediaType      string `json:"media_type" validate:"required,oneof=image video text"`
	Hashtags       string `json:"hashtags" validate:"max=1000"`
	Timestamp      string `json:"timestamp" validate:"omitempty,max=64"`
	UserID         string `json:"user_id" validate:"omitempty,max=128"`
	FollowersCount int    `json:"followers_count" validate:"gte=0"`
	FollowingCount int    `json:"following_count" validate:"gte=0"`
	AccountAge     int    `json:"account_age" validate:"gte=0"`
}

// Validate checks field constraints and returns per-field messages.
func (r *PredictRequest) Validate() []string {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		out = append(out, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
	}
	return out
}

// ToRecord converts the request into a post record. An unparseable or
// absent timestamp yields the zero time, which extraction treats as
// no temporal signal.
func (r *PredictRequest) ToRecord() dataset.PostRecord {
	rec := dataset.PostRecord{
		PostText:       r.PostText,
		MediaType:      r.MediaType,
		Hashtags:       r.Hashtags,
		UserID:         r.UserID,
		FollowersCount: r.FollowersCount,
		FollowingCount: r.FollowingCount,
		AccountAge:     r.AccountAge,
	}
	if r.Timestamp != "" {
		if ts, err := dataset.ParseTimestamp(r.Timestamp); err == nil {
			rec.Timestamp = ts
		}
	}
	return rec
}
