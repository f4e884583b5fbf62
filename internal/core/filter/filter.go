package filter

import (
	"github.com/reviewgap/analyzer/internal/core/model"
)

// NegativeRatingMax is the highest rating still counted as a complaint on
// the normalized 1-5 scale.
const NegativeRatingMax = 2

// negativePolarity is the sentiment score below which unrated text counts
// as a complaint.
const negativePolarity = -0.02

// Filter selects the negative subset of a normalized review batch. Reviews
// with a rating use the rating threshold; unrated reviews fall back to the
// sentiment heuristic so platforms without star ratings still participate.
type Filter struct {
	sentiment Sentiment
}

func New(sentiment Sentiment) *Filter {
	if sentiment == nil {
		sentiment = LexiconSentiment{}
	}
	return &Filter{sentiment: sentiment}
}

// IsNegative reports whether a single review qualifies as a complaint.
func (f *Filter) IsNegative(r model.NormalizedReview) bool {
	if r.Rating != nil {
		return *r.Rating <= NegativeRatingMax
	}
	return f.sentiment.Score(r.CleanedText) < negativePolarity
}

// Negative returns the complaint subset, preserving input order.
func (f *Filter) Negative(reviews []model.NormalizedReview) []model.NormalizedReview {
	out := make([]model.NormalizedReview, 0, len(reviews))
	for _, r := range reviews {
		if f.IsNegative(r) {
			out = append(out, r)
		}
	}
	return out
}
