package model

import "time"

// Review is the immutable input unit produced by the scraping layer.
type Review struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	Rating         *int      `json:"rating,omitempty"` // 1-5, nil for platforms without star ratings
	Date           time.Time `json:"date"`
	Locale         string    `json:"locale,omitempty"`
	SourcePlatform string    `json:"source_platform,omitempty"`
}

// NormalizedReview carries the cleaned text derived from a Review.
// CleanedText is always non-empty; reviews that clean down to nothing
// are dropped by the normalizer and never reach this type.
type NormalizedReview struct {
	Review
	CleanedText string `json:"cleaned_text"`
}

// EmbeddedReview pairs a normalized review with its embedding vector.
// The vector dimension is constant within a single analysis run and the
// vector is never mutated after creation.
type EmbeddedReview struct {
	NormalizedReview
	Vector []float32 `json:"-"`
}
