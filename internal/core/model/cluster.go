package model

// NoiseClusterID is the reserved ID of the pseudo-cluster holding reviews
// the engine could not confidently group. It is excluded from ranking but
// its member count feeds the summary statistics.
const NoiseClusterID = "noise"

// Cluster is a group of semantically similar negative reviews representing
// one complaint theme. Created once per analysis run, named by the labeler,
// never merged or split afterwards.
type Cluster struct {
	ID            string    `json:"id"`
	MemberIDs     []string  `json:"member_review_ids"`
	Centroid      []float32 `json:"-"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Keywords      []string  `json:"keywords"`
	SampleReviews []string  `json:"sample_reviews"`

	// Members holds the embedded reviews backing MemberIDs. Kept off the
	// wire; the labeler and ranker read it during the run.
	Members []EmbeddedReview `json:"-"`
}

// RankedCluster freezes a labeled cluster's metrics. Only its position in
// the ranked list is decided after construction.
type RankedCluster struct {
	Cluster
	ReviewCount       int     `json:"review_count"`
	PercentageOfTotal float64 `json:"percentage_of_total"`
	RecencyScore      float64 `json:"recency_score"`
	CompositeScore    float64 `json:"composite_score"`
}
