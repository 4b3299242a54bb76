// EngageAI - Social Media Engagement Prediction Service
// Copyright 2026 EngageAI Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/engageai/engageai

package features

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Vectorizer defaults. Terms must appear in at least MinDocFreq documents
// and at most MaxDocShare of them; the vocabulary keeps the MaxTerms most
// frequent survivors.
const (
	DefaultMaxTerms    = 100
	DefaultMinDocFreq  = 2
	DefaultMaxDocShare = 0.8
)

var wordRe = regexp.MustCompile(`\b\w\w+\b`)

// englishStopWords excludes common function words from the vocabulary.
var englishStopWords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"against": true, "all": true, "am": true, "an": true, "and": true,
	"any": true, "are": true, "as": true, "at": true, "be": true,
	"because": true, "been": true, "before": true, "being": true,
	"below": true, "between": true, "both": true, "but": true, "by": true,
	"can": true, "could": true, "did": true, "do": true, "does": true,
	"doing": true, "down": true, "during": true, "each": true, "few": true,
	"for": true, "from": true, "further": true, "had": true, "has": true,
	"have": true, "having": true, "he": true, "her": true, "here": true,
	"hers": true, "herself": true, "him": true, "himself": true,
	"his": true, "how": true, "i": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "its": true, "itself": true,
	"just": true, "me": true, "more": true, "most": true, "my": true,
	"myself": true, "no": true, "nor": true, "not": true, "now": true,
	"of": true, "off": true, "on": true, "once": true, "only": true,
	"or": true, "other": true, "our": true, "ours": true,
	"ourselves": true, "out": true, "over": true, "own": true,
	"same": true, "she": true, "should": true, "so": true, "some": true,
	"such": true, "than": true, "that": true, "the": true, "their": true,
	"theirs": true, "them": true, "themselves": true, "then": true,
	"there": true, "these": true, "they": true, "this": true,
	"those": true, "through": true, "to": true, "too": true,
	"under": true, "until": true, "up": true, "very": true, "was": true,
	"we": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "who": true, "whom": true, "why": true,
	"will": true, "with": true, "you": true, "your": true, "yours": true,
	"yourself": true, "yourselves": true,
}

// TextVectorizer converts free text into a fixed-width TF-IDF vector
// over a vocabulary frozen at fit time. After fit, Vocabulary holds the
// alphabetically sorted terms and IDF the matching inverse document
// frequency weights (smoothed log, plus one).
type TextVectorizer struct {
	MaxTerms    int
	MinDocFreq  int
	MaxDocShare float64

	Vocabulary []string
	IDF        []float64

	index map[string]int
}

// NewTextVectorizer returns an unfitted vectorizer with default limits.
func NewTextVectorizer() *TextVectorizer {
	return &TextVectorizer{
		MaxTerms:    DefaultMaxTerms,
		MinDocFreq:  DefaultMinDocFreq,
		MaxDocShare: DefaultMaxDocShare,
	}
}

// Fitted reports whether the vocabulary has been frozen.
func (v *TextVectorizer) Fitted() bool {
	return len(v.Vocabulary) > 0
}

func tokenize(text string) []string {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	out := words[:0]
	for _, w := range words {
		if !englishStopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// Fit builds the vocabulary and IDF weights from a training corpus.
// A corpus whose every term falls below the document-frequency floor
// yields an empty vocabulary; Transform then produces zero columns.
func (v *TextVectorizer) Fit(docs []string) {
	docFreq := make(map[string]int)
	termFreq := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, w := range tokenize(doc) {
			termFreq[w]++
			if !seen[w] {
				seen[w] = true
				docFreq[w]++
			}
		}
	}

	maxDocs := int(v.MaxDocShare * float64(len(docs)))
	var candidates []string
	for term, df := range docFreq {
		if df >= v.MinDocFreq && df <= maxDocs {
			candidates = append(candidates, term)
		}
	}

	// Keep the most frequent terms, ties broken alphabetically.
	sort.Slice(candidates, func(i, j int) bool {
		if termFreq[candidates[i]] != termFreq[candidates[j]] {
			return termFreq[candidates[i]] > termFreq[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > v.MaxTerms {
		candidates = candidates[:v.MaxTerms]
	}
	sort.Strings(candidates)

	v.Vocabulary = candidates
	v.IDF = make([]float64, len(candidates))
	n := float64(len(docs))
	for i, term := range candidates {
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	v.buildIndex()
}

func (v *TextVectorizer) buildIndex() {
	v.index = make(map[string]int, len(v.Vocabulary))
	for i, term := range v.Vocabulary {
		v.index[term] = i
	}
}

// Transform converts a document into its L2-normalized TF-IDF vector
// over the fitted vocabulary. Out-of-vocabulary terms are ignored.
func (v *TextVectorizer) Transform(doc string) []float64 {
	if v.index == nil {
		v.buildIndex()
	}

	vec := make([]float64, len(v.Vocabulary))
	for _, w := range tokenize(doc) {
		if i, ok := v.index[w]; ok {
			vec[i] += v.IDF[i]
		}
	}

	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// FeatureNames returns the vocabulary terms with the tfidf_ prefix, in
// vocabulary order.
func (v *TextVectorizer) FeatureNames() []string {
	names := make([]string, len(v.Vocabulary))
	for i, term := range v.Vocabulary {
		names[i] = "tfidf_" + term
	}
	return names
}
