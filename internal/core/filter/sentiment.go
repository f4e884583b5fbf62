package filter

import "strings"

// Sentiment scores text polarity in [-1, 1]. It backs the negative filter
// for reviews arriving without a star rating.
type Sentiment interface {
	Score(text string) float64
}

// LexiconSentiment is a lightweight lexicon heuristic: count polar terms,
// flip polarity after a negation word. Good enough to split complaints from
// praise; anything subtler belongs to an external capability.
type LexiconSentiment struct{}

var negationWords = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "cant": {}, "cannot": {},
	"dont": {}, "doesnt": {}, "didnt": {}, "wont": {}, "isnt": {}, "wasnt": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "horrible": {}, "worst": {},
	"broken": {}, "crash": {}, "crashes": {}, "crashed": {}, "bug": {}, "buggy": {},
	"slow": {}, "laggy": {}, "lag": {}, "freeze": {}, "freezes": {}, "frozen": {},
	"useless": {}, "annoying": {}, "frustrating": {}, "disappointing": {},
	"disappointed": {}, "hate": {}, "garbage": {}, "trash": {}, "scam": {},
	"waste": {}, "fail": {}, "fails": {}, "failed": {}, "error": {}, "errors": {},
	"problem": {}, "problems": {}, "issue": {}, "issues": {}, "unusable": {},
	"refund": {}, "uninstall": {}, "uninstalled": {}, "avoid": {}, "poor": {},
	"expensive": {}, "overpriced": {}, "misleading": {}, "spam": {}, "ads": {},
}

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "amazing": {}, "awesome": {},
	"love": {}, "loved": {}, "perfect": {}, "best": {}, "fantastic": {},
	"wonderful": {}, "helpful": {}, "smooth": {}, "fast": {}, "reliable": {},
	"easy": {}, "nice": {}, "recommend": {}, "recommended": {}, "beautiful": {},
	"intuitive": {}, "works": {}, "solid": {}, "stable": {}, "useful": {},
}

func (LexiconSentiment) Score(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	score := 0.0
	negated := false
	for _, w := range words {
		w = strings.Trim(w, ".,!?'\"")
		if _, ok := negationWords[w]; ok {
			negated = true
			continue
		}

		polarity := 0.0
		if _, ok := negativeWords[w]; ok {
			polarity = -1
		} else if _, ok := positiveWords[w]; ok {
			polarity = 1
		}
		if negated {
			polarity = -polarity
			negated = false
		}
		score += polarity
	}

	// Normalize by length so long reviews do not saturate.
	norm := score / float64(len(words))
	if norm > 1 {
		norm = 1
	}
	if norm < -1 {
		norm = -1
	}
	return norm
}
