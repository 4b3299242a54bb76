// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// timestampLayouts are the accepted timestamp formats, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LoadCSV reads post records from a CSV file with a header row.
//
// Recognized columns: post_id, post_text, media_type, hashtags, timestamp,
// user_id, followers_count, following_count, account_age, likes, shares,
// comments. Unrecognized columns are ignored. Missing numeric fields
// default to zero and missing text fields to the empty string; records are
// never rejected for absent optional fields.
func LoadCSV(path string) ([]PostRecord, error) {
	f, err := os.Open(path) //nolint:gosec // path is an operator-supplied dataset location
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	return ReadCSV(f)
}

// ReadCSV reads post records from CSV data with a header row.
func ReadCSV(r io.Reader) ([]PostRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	hasTargets := hasAll(col, TargetNames)

	var records []PostRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}

		rec := PostRecord{
			PostID:         field(row, col, "post_id"),
			PostText:       field(row, col, "post_text"),
			MediaType:      field(row, col, "media_type"),
			Hashtags:       field(row, col, "hashtags"),
			UserID:         field(row, col, "user_id"),
			FollowersCount: intField(row, col, "followers_count"),
			FollowingCount: intField(row, col, "following_count"),
			AccountAge:     intField(row, col, "account_age"),
		}

		if ts := field(row, col, "timestamp"); ts != "" {
			rec.Timestamp, _ = ParseTimestamp(ts)
		}

		if hasTargets {
			rec.Targets = &Engagement{
				Likes:    floatField(row, col, "likes"),
				Shares:   floatField(row, col, "shares"),
				Comments: floatField(row, col, "comments"),
			}
		}

		records = append(records, rec)
	}

	return records, nil
}

// WriteCSV writes post records, including targets, as CSV with a header row.
func WriteCSV(w io.Writer, records []PostRecord) error {
	cw := csv.NewWriter(w)

	header := []string{
		"post_id", "post_text", "media_type", "hashtags", "timestamp",
		"user_id", "followers_count", "following_count", "account_age",
		"likes", "shares", "comments",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range records {
		rec := &records[i]
		var likes, shares, comments float64
		if rec.Targets != nil {
			likes, shares, comments = rec.Targets.Likes, rec.Targets.Shares, rec.Targets.Comments
		}
		row := []string{
			rec.PostID,
			rec.PostText,
			rec.MediaType,
			rec.Hashtags,
			rec.Timestamp.Format("2006-01-02T15:04:05"),
			rec.UserID,
			strconv.Itoa(rec.FollowersCount),
			strconv.Itoa(rec.FollowingCount),
			strconv.Itoa(rec.AccountAge),
			strconv.FormatFloat(likes, 'f', -1, 64),
			strconv.FormatFloat(shares, 'f', -1, 64),
			strconv.FormatFloat(comments, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseTimestamp parses a timestamp in any accepted layout.
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, lastErr)
}

func hasAll(col map[string]int, names []string) bool {
	for _, n := range names {
		if _, ok := col[n]; !ok {
			return false
		}
	}
	return true
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func intField(row []string, col map[string]int, name string) int {
	v, err := strconv.Atoi(field(row, col, name))
	if err != nil {
		return 0
	}
	return v
}

func floatField(row []string, col map[string]int, name string) float64 {
	v, err := strconv.ParseFloat(field(row, col, name), 64)
	if err != nil {
		return 0
	}
	return v
}
