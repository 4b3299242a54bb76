// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package features

import (
	"math"
	"strings"
)

// SentimentScores holds the four lexicon-derived polarity scores for a
// text. Compound is in [-1, 1]; Positive, Negative, and Neutral are
// proportions in [0, 1] that sum to 1 for non-empty text.
type SentimentScores struct {
	Compound float64
	Positive float64
	Negative float64
	Neutral  float64
}

// sentimentLexicon maps lowercase tokens to valence in [-4, 4].
// Coverage is tuned to marketing and product-announcement vocabulary.
var sentimentLexicon = map[string]float64{
	"amazing": 2.8, "awesome": 3.1, "excellent": 2.7, "great": 3.1,
	"good": 1.9, "best": 3.2, "better": 1.9, "fantastic": 2.6,
	"wonderful": 2.7, "perfect": 2.7, "love": 3.2, "loved": 2.9,
	"like": 1.5, "enjoy": 2.2, "happy": 2.7, "glad": 2.0,
	"excited": 2.2, "exciting": 2.2, "thrilled": 2.8, "proud": 2.1,
	"win": 2.8, "winning": 2.4, "success": 2.7, "successful": 2.6,
	"celebrate": 2.7, "celebrating": 2.7, "congratulations": 2.9,
	"thank": 1.9, "thanks": 1.9, "grateful": 2.3, "appreciate": 2.0,
	"free": 1.8, "easy": 1.7, "helpful": 1.8, "valuable": 2.1,
	"insightful": 2.0, "essential": 1.3, "practical": 1.2,
	"innovative": 2.0, "innovation": 1.8, "revolutionize": 2.3,
	"growth": 1.6, "improve": 1.7, "improved": 1.8, "boost": 1.7,
	"exclusive": 1.4, "top": 1.9, "launch": 1.1, "new": 1.0,
	"milestone": 1.8, "achievement": 2.3, "achievements": 2.3,
	"opportunity": 1.6, "powerful": 1.8, "strong": 1.6,
	"smart": 1.8, "beautiful": 2.7, "brilliant": 2.8, "incredible": 2.4,
	"outstanding": 2.8, "impressive": 2.3, "favorite": 2.3,
	"recommend": 1.7, "recommended": 1.7, "trusted": 1.9, "trust": 1.7,
	"bad": -2.5, "worst": -3.1, "worse": -2.1, "terrible": -2.1,
	"awful": -2.0, "horrible": -2.5, "hate": -2.7, "hated": -2.6,
	"poor": -1.9, "fail": -2.5, "failed": -2.3, "failure": -2.5,
	"problem": -1.7, "problems": -1.7, "issue": -0.8, "issues": -0.8,
	"broken": -1.8, "bug": -1.3, "bugs": -1.3, "error": -1.6,
	"slow": -1.2, "difficult": -1.5, "hard": -0.4, "confusing": -1.4,
	"disappointed": -2.1, "disappointing": -2.2, "sad": -2.1,
	"angry": -2.3, "annoying": -1.9, "frustrating": -2.1,
	"expensive": -0.9, "waste": -1.8, "wrong": -2.1, "lost": -1.3,
	"risk": -1.1, "crisis": -2.5, "decline": -1.4, "cancel": -1.3,
	"cancelled": -1.4, "delay": -1.2, "delayed": -1.3, "missed": -1.4,
	"no": -1.2, "not": -1.2, "never": -1.5, "nothing": -1.3,
}

// boosterWords scale the valence of the following lexicon word.
var boosterWords = map[string]float64{
	"very": 0.293, "really": 0.293, "extremely": 0.293, "incredibly": 0.293,
	"absolutely": 0.293, "truly": 0.293, "so": 0.293, "super": 0.293,
	"slightly": -0.293, "somewhat": -0.293, "barely": -0.293, "hardly": -0.293,
}

var negationWords = map[string]bool{
	"not": true, "no": true, "never": true, "neither": true,
	"nobody": true, "none": true, "cannot": true, "cant": true,
	"dont": true, "doesnt": true, "didnt": true, "wont": true,
	"isnt": true, "arent": true, "wasnt": true, "werent": true,
}

// AnalyzeSentiment scores a text with a lexicon-based polarity analyzer.
// Empty or whitespace-only text is fully neutral.
func AnalyzeSentiment(text string) SentimentScores {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return SentimentScores{Neutral: 1}
	}

	var posSum, negSum float64
	neutralCount := 0

	for i, tok := range tokens {
		word := strings.Trim(tok, ".,!?;:'\"()#@")
		valence, ok := sentimentLexicon[word]
		if !ok {
			if _, booster := boosterWords[word]; !booster {
				neutralCount++
			}
			continue
		}

		// Look back for boosters and negations within a 2-word window.
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			prev := strings.Trim(tokens[j], ".,!?;:'\"()#@")
			if b, ok := boosterWords[prev]; ok {
				if valence > 0 {
					valence += b
				} else {
					valence -= b
				}
			}
			if negationWords[prev] {
				valence *= -0.74
			}
		}

		switch {
		case valence > 0:
			posSum += valence + 1
		case valence < 0:
			negSum += valence - 1
		default:
			neutralCount++
		}
	}

	// Exclamation emphasis, capped at 4 marks.
	excl := float64(strings.Count(text, "!"))
	if excl > 4 {
		excl = 4
	}
	emphasis := excl * 0.292
	if posSum > math.Abs(negSum) {
		posSum += emphasis
	} else if posSum < math.Abs(negSum) {
		negSum -= emphasis
	}

	total := posSum + math.Abs(negSum) + float64(neutralCount)
	var scores SentimentScores
	if total > 0 {
		scores.Positive = posSum / total
		scores.Negative = math.Abs(negSum) / total
		scores.Neutral = float64(neutralCount) / total
	} else {
		scores.Neutral = 1
	}

	sum := posSum + negSum
	scores.Compound = sum / math.Sqrt(sum*sum+15)
	return scores
}
