package model

import "time"

// Status is the terminal state of an analysis run.
type Status string

const (
	StatusCompleted        Status = "completed"
	StatusInsufficientData Status = "insufficient_data"
	StatusFailed           Status = "failed"
	StatusCancelled        Status = "cancelled"
)

// SummaryStats aggregates run-level counts for the reporting layer.
type SummaryStats struct {
	TotalReviews       int     `json:"total_reviews"`
	NegativeReviews    int     `json:"negative_reviews"`
	NegativePercentage float64 `json:"negative_percentage"`
	NoiseReviews       int     `json:"noise_reviews"`
	RecentClusters     int     `json:"recent_clusters"`
	DroppedReviews     int     `json:"dropped_reviews"`
}

// Insights holds trend analysis and recommendations derived from the
// ranked clusters.
type Insights struct {
	RecentActivityPct float64  `json:"recent_activity_pct"`
	TrendDirection    string   `json:"trend_direction"` // increasing, stable, decreasing
	MostRecentIssues  []string `json:"most_recent_issues"`
	Recommendations   []string `json:"recommendations"`
}

// AnalysisResult is the final output of one analysis run, handed off whole
// to the surrounding persistence/API layer.
type AnalysisResult struct {
	RunID          string          `json:"run_id"`
	Status         Status          `json:"status"`
	StatusMessage  string          `json:"status_message,omitempty"`
	TotalReviews   int             `json:"total_reviews"`
	NegativeCount  int             `json:"negative_review_count"`
	RankedClusters []RankedCluster `json:"ranked_clusters"`
	Summary        SummaryStats    `json:"summary_stats"`
	Insights       Insights        `json:"insights"`
	CompletedAt    time.Time       `json:"completed_at"`
}
