package normalize

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/reviewgap/analyzer/internal/core/model"
)

const (
	// MinWords is the minimum cleaned-text length; shorter reviews carry no
	// clusterable signal and are dropped.
	MinWords = 3
	// MaxWords caps cleaned text so one rambling review cannot dominate
	// keyword extraction.
	MaxWords = 300
)

var (
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	emailPattern = regexp.MustCompile(`\S+@\S+`)
	emojiPattern = regexp.MustCompile(`[\x{1F300}-\x{1F6FF}\x{1F900}-\x{1F9FF}\x{2600}-\x{27BF}\x{2190}-\x{21FF}\x{FE0F}]`)
	punctPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

	// Platform boilerplate that scrapers leave glued to the end of reviews.
	boilerplateSuffixes = []string{"full review", "read more", "show more"}
)

// Normalizer cleans raw review text into the canonical form the rest of the
// pipeline consumes. Pure transform, no state across batches.
type Normalizer struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Clean lowercases text, strips URLs, emails, emoji, control characters and
// punctuation, collapses whitespace, and removes trailing platform
// boilerplate. Clean is a fixed point: Clean(Clean(s)) == Clean(s).
func (n *Normalizer) Clean(text string) string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, " ")
	text = emailPattern.ReplaceAllString(text, " ")
	text = emojiPattern.ReplaceAllString(text, "")
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)
	text = punctPattern.ReplaceAllString(text, " ")

	words := strings.Fields(text)
	words = trimBoilerplate(words)
	if len(words) > MaxWords {
		words = words[:MaxWords]
	}
	return strings.Join(words, " ")
}

func trimBoilerplate(words []string) []string {
	for {
		trimmed := false
		for _, suffix := range boilerplateSuffixes {
			parts := strings.Fields(suffix)
			if hasSuffix(words, parts) {
				words = words[:len(words)-len(parts)]
				trimmed = true
			}
		}
		if !trimmed {
			return words
		}
	}
}

func hasSuffix(words, parts []string) bool {
	if len(words) < len(parts) {
		return false
	}
	tail := words[len(words)-len(parts):]
	for i := range parts {
		if tail[i] != parts[i] {
			return false
		}
	}
	return true
}

// Normalize cleans each review and drops the ones that come out too short,
// plus exact duplicates of already-seen cleaned text within the batch.
// It returns the surviving reviews and the number dropped. A malformed
// review never aborts the batch.
func (n *Normalizer) Normalize(reviews []model.Review) ([]model.NormalizedReview, int) {
	out := make([]model.NormalizedReview, 0, len(reviews))
	seen := make(map[string]struct{}, len(reviews))
	dropped := 0

	for _, r := range reviews {
		cleaned := n.Clean(r.Text)
		if len(strings.Fields(cleaned)) < MinWords {
			n.log.Warn("dropping review: too short after cleaning", "review_id", r.ID)
			dropped++
			continue
		}
		if _, dup := seen[cleaned]; dup {
			n.log.Warn("dropping review: duplicate text", "review_id", r.ID)
			dropped++
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, model.NormalizedReview{Review: r, CleanedText: cleaned})
	}

	return out, dropped
}
