package rank

import (
	"fmt"
	"math"
	"time"

	"github.com/reviewgap/analyzer/internal/core/model"
)

// BuildSummary aggregates run-level counts for the reporting layer.
func BuildSummary(totalReviews, negativeCount, noiseCount, droppedCount int, ranked []model.RankedCluster) model.SummaryStats {
	negativePct := 0.0
	if totalReviews > 0 {
		negativePct = math.Round(float64(negativeCount)/float64(totalReviews)*10000) / 100
	}

	recent := 0
	for _, c := range ranked {
		if c.RecencyScore > RecentClusterThreshold {
			recent++
		}
	}

	return model.SummaryStats{
		TotalReviews:       totalReviews,
		NegativeReviews:    negativeCount,
		NegativePercentage: negativePct,
		NoiseReviews:       noiseCount,
		RecentClusters:     recent,
		DroppedReviews:     droppedCount,
	}
}

// BuildInsights derives trend analysis and actionable recommendations from
// the ranked clusters and the negative review dates.
func BuildInsights(ranked []model.RankedCluster, negatives []model.NormalizedReview, now time.Time) model.Insights {
	insights := model.Insights{TrendDirection: "stable"}

	if len(negatives) > 0 {
		monthAgo := now.AddDate(0, -1, 0)
		recent := 0
		for _, r := range negatives {
			if !r.Date.Before(monthAgo) {
				recent++
			}
		}
		insights.RecentActivityPct = math.Round(float64(recent)/float64(len(negatives))*10000) / 100
		if insights.RecentActivityPct > 40 {
			insights.TrendDirection = "increasing"
		} else if insights.RecentActivityPct < 20 {
			insights.TrendDirection = "decreasing"
		}
	}

	for i, c := range ranked {
		if i >= 3 {
			break
		}
		if c.RecencyScore > 50 {
			insights.MostRecentIssues = append(insights.MostRecentIssues, c.Name)
		}
	}

	insights.Recommendations = recommendations(ranked)
	return insights
}

func recommendations(ranked []model.RankedCluster) []string {
	if len(ranked) == 0 {
		return []string{"Insufficient data for recommendations. Collect more reviews for analysis."}
	}

	var recs []string
	top := ranked[0]
	if top.PercentageOfTotal > 30 {
		recs = append(recs, fmt.Sprintf("High priority: address '%s', affecting %.1f%% of negative reviews", top.Name, top.PercentageOfTotal))
	}
	if top.RecencyScore > RecentClusterThreshold {
		recs = append(recs, fmt.Sprintf("Urgent: '%s' shows high recent activity", top.Name))
	}

	if len(ranked) >= 3 {
		topThree := ranked[0].PercentageOfTotal + ranked[1].PercentageOfTotal + ranked[2].PercentageOfTotal
		if topThree > 60 {
			recs = append(recs, fmt.Sprintf("Focus on the top 3 issues, which cover %.1f%% of complaints", topThree))
		}
	}

	active := 0
	for _, c := range ranked {
		if c.RecencyScore > 60 {
			active++
		}
	}
	if active > 0 {
		recs = append(recs, fmt.Sprintf("Monitor recent trends: %d issue categories show increasing activity", active))
	}

	if len(recs) == 0 {
		recs = append(recs, "Continue monitoring user feedback and address issues as they emerge")
	}
	return recs
}
