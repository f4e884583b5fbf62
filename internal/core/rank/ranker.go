package rank

import (
	"math"
	"sort"
	"time"

	"github.com/reviewgap/analyzer/internal/core/model"
)

const (
	// recencyFloor keeps very old reviews from vanishing entirely.
	recencyFloor = 0.1
	// RecentClusterThreshold marks a cluster as actively growing.
	RecentClusterThreshold = 70.0
)

// Weights combines frequency and recency into the composite rank. The
// defaults favor frequency: the biggest problems first, but a
// small-and-growing complaint still outranks a big stale one.
type Weights struct {
	Frequency float64
	Recency   float64
}

// Ranker scores and orders labeled clusters. Numeric fields are computed
// once; ordering is the only thing Rank decides after that.
type Ranker struct {
	weights  Weights
	halfLife time.Duration
}

func NewRanker(w Weights, halfLifeDays int) *Ranker {
	if w.Frequency <= 0 && w.Recency <= 0 {
		w = Weights{Frequency: 0.7, Recency: 0.3}
	}
	if halfLifeDays <= 0 {
		halfLifeDays = 90
	}
	return &Ranker{
		weights:  w,
		halfLife: time.Duration(halfLifeDays) * 24 * time.Hour,
	}
}

// Rank computes each cluster's metrics against the negative review total
// and returns them in descending composite-score order. Ties break by
// review count, then by cluster creation order.
func (r *Ranker) Rank(clusters []model.Cluster, negativeCount int, now time.Time) []model.RankedCluster {
	ranked := make([]model.RankedCluster, len(clusters))
	for i, c := range clusters {
		count := len(c.Members)
		pct := 0.0
		if negativeCount > 0 {
			pct = round2(float64(count) / float64(negativeCount) * 100)
		}
		recency := round2(r.RecencyScore(c.Members, now))
		ranked[i] = model.RankedCluster{
			Cluster:           c,
			ReviewCount:       count,
			PercentageOfTotal: pct,
			RecencyScore:      recency,
			CompositeScore:    round2(r.weights.Frequency*pct + r.weights.Recency*recency),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CompositeScore != ranked[j].CompositeScore {
			return ranked[i].CompositeScore > ranked[j].CompositeScore
		}
		return ranked[i].ReviewCount > ranked[j].ReviewCount
	})

	return ranked
}

// RecencyScore measures how concentrated a cluster's volume is in recent
// time, on a 0-100 scale. Each review weighs 1.0 inside the half-life
// window, decays linearly to a small floor at twice the half-life, and
// stays at the floor beyond that.
func (r *Ranker) RecencyScore(members []model.EmbeddedReview, now time.Time) float64 {
	if len(members) == 0 {
		return 0
	}

	total := 0.0
	for _, m := range members {
		total += r.reviewWeight(now.Sub(m.Date))
	}
	score := total / float64(len(members)) * 100
	return math.Min(100, math.Max(0, score))
}

func (r *Ranker) reviewWeight(age time.Duration) float64 {
	if age <= r.halfLife {
		return 1.0
	}
	if age >= 2*r.halfLife {
		return recencyFloor
	}
	frac := float64(age-r.halfLife) / float64(r.halfLife)
	return 1.0 - frac*(1.0-recencyFloor)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
