package label

import (
	"math"
	"sort"
	"strings"
)

// ExtractKeywords returns up to max keywords ranked by mean TF-IDF across
// the cluster's member texts, stopwords excluded. Ties are broken
// alphabetically so the output is deterministic.
func ExtractKeywords(texts []string, max int) []string {
	if len(texts) == 0 || max <= 0 {
		return nil
	}

	docFreq := make(map[string]int)
	termFreqs := make([]map[string]float64, len(texts))

	for i, text := range texts {
		words := strings.Fields(text)
		tf := make(map[string]float64)
		for _, w := range words {
			if len(w) < 3 || isStopword(w) {
				continue
			}
			tf[w]++
		}
		for w := range tf {
			tf[w] /= float64(len(words))
			docFreq[w]++
		}
		termFreqs[i] = tf
	}

	n := float64(len(texts))
	scores := make(map[string]float64)
	for _, tf := range termFreqs {
		for w, f := range tf {
			idf := math.Log((n+1)/(float64(docFreq[w])+1)) + 1
			scores[w] += f * idf / n
		}
	}

	type scored struct {
		word  string
		score float64
	}
	ranked := make([]scored, 0, len(scores))
	for w, s := range scores {
		ranked = append(ranked, scored{w, s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].word < ranked[j].word
	})

	if len(ranked) > max {
		ranked = ranked[:max]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.word
	}
	return out
}
