package cluster

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/reviewgap/analyzer/internal/core/model"
)

const (
	noiseLabel     = -1
	unvisitedLabel = -2

	// defaultMinClusterFraction sizes clusters relative to the negative
	// review count when no explicit minimum is configured.
	defaultMinClusterFraction = 0.04

	// maxEpsilon caps the estimated neighborhood radius. A cosine distance
	// near 1 means unrelated texts; letting epsilon grow that far would
	// merge everything into one cluster when the data has no dense region.
	maxEpsilon = 0.5
)

// Engine groups embedding vectors into complaint clusters using
// density-based clustering (DBSCAN over cosine distance). Complaint topics
// are unknown in number, so a density approach beats fixed-k: it finds as
// many clusters as the data supports and sends low-density points to a
// noise bucket instead of forcing them into an ill-fitting cluster.
//
// The engine is a pure function of the vector set: identical input vectors
// produce identical partitions (points are visited in index order).
type Engine struct {
	log            *slog.Logger
	minClusterSize int
	epsilon        float64 // 0 means estimate from the data
}

func NewEngine(log *slog.Logger, minClusterSize int, epsilon float64) *Engine {
	return &Engine{log: log, minClusterSize: minClusterSize, epsilon: epsilon}
}

// MinPoints resolves the effective minimum cluster size for n reviews:
// the configured value, or ~4% of n with a floor of 2.
func (e *Engine) MinPoints(n int) int {
	if e.minClusterSize > 0 {
		return e.minClusterSize
	}
	m := int(defaultMinClusterFraction * float64(n))
	if m < 2 {
		m = 2
	}
	return m
}

// Cluster partitions the reviews into zero or more clusters plus a noise
// bucket. Every input index lands in exactly one of them. Fewer than two
// reviews, or no dense region at all, yields zero clusters, a valid
// outcome the orchestrator reports as insufficient pattern.
func (e *Engine) Cluster(reviews []model.EmbeddedReview) ([]model.Cluster, model.Cluster) {
	noise := model.Cluster{ID: model.NoiseClusterID, Name: "Noise"}

	if len(reviews) < 2 {
		noise.Members = reviews
		for _, r := range reviews {
			noise.MemberIDs = append(noise.MemberIDs, r.ID)
		}
		return nil, noise
	}

	minPts := e.MinPoints(len(reviews))
	eps := e.epsilon
	if eps <= 0 {
		eps = estimateEpsilon(reviews, minPts)
	}
	e.log.Info("clustering reviews", "count", len(reviews), "min_points", minPts, "epsilon", eps)

	labels := e.dbscan(reviews, eps, minPts)

	byLabel := make(map[int][]int)
	maxLabel := noiseLabel
	for i, l := range labels {
		byLabel[l] = append(byLabel[l], i)
		if l > maxLabel {
			maxLabel = l
		}
	}

	var clusters []model.Cluster
	for label := 0; label <= maxLabel; label++ {
		indices := byLabel[label]
		if len(indices) == 0 {
			continue
		}
		c := model.Cluster{ID: uuid.New().String()}
		vectors := make([][]float32, 0, len(indices))
		for _, i := range indices {
			c.Members = append(c.Members, reviews[i])
			c.MemberIDs = append(c.MemberIDs, reviews[i].ID)
			vectors = append(vectors, reviews[i].Vector)
		}
		c.Centroid = Centroid(vectors)
		clusters = append(clusters, c)
	}

	for _, i := range byLabel[noiseLabel] {
		noise.Members = append(noise.Members, reviews[i])
		noise.MemberIDs = append(noise.MemberIDs, reviews[i].ID)
	}

	e.log.Info("clustering done", "clusters", len(clusters), "noise", len(noise.Members))
	return clusters, noise
}

// dbscan labels each point with a cluster index or noiseLabel. Standard
// DBSCAN with index-ordered expansion for determinism. The density test
// counts the point itself, so minPts mutually close members suffice to
// form a cluster.
func (e *Engine) dbscan(reviews []model.EmbeddedReview, eps float64, minPts int) []int {
	n := len(reviews)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisitedLabel
	}

	clusterID := 0
	for i := 0; i < n; i++ {
		if labels[i] != unvisitedLabel {
			continue
		}
		neighbors := regionQuery(reviews, i, eps)
		if len(neighbors)+1 < minPts {
			labels[i] = noiseLabel
			continue
		}

		labels[i] = clusterID
		queue := append([]int(nil), neighbors...)
		for head := 0; head < len(queue); head++ {
			j := queue[head]
			if labels[j] == noiseLabel {
				labels[j] = clusterID // border point reclaimed from noise
			}
			if labels[j] != unvisitedLabel {
				continue
			}
			labels[j] = clusterID
			jNeighbors := regionQuery(reviews, j, eps)
			if len(jNeighbors)+1 >= minPts {
				queue = append(queue, jNeighbors...)
			}
		}
		clusterID++
	}

	return labels
}

func regionQuery(reviews []model.EmbeddedReview, i int, eps float64) []int {
	var neighbors []int
	for j := range reviews {
		if j == i {
			continue
		}
		if CosineDistance(reviews[i].Vector, reviews[j].Vector) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// estimateEpsilon picks a neighborhood radius from the k-nearest-neighbour
// distance distribution: the median k-distance, slightly widened. Keeps the
// engine usable without per-dataset tuning.
func estimateEpsilon(reviews []model.EmbeddedReview, minPts int) float64 {
	k := minPts - 1
	if k < 1 {
		k = 1
	}

	kDistances := make([]float64, 0, len(reviews))
	for i := range reviews {
		dists := make([]float64, 0, len(reviews)-1)
		for j := range reviews {
			if j == i {
				continue
			}
			dists = append(dists, CosineDistance(reviews[i].Vector, reviews[j].Vector))
		}
		sort.Float64s(dists)
		idx := k - 1
		if idx >= len(dists) {
			idx = len(dists) - 1
		}
		kDistances = append(kDistances, dists[idx])
	}

	sort.Float64s(kDistances)
	eps := kDistances[len(kDistances)/2] * 1.05
	if eps <= 0 {
		eps = 0.05 // identical vectors; any tiny radius groups them
	}
	if eps > maxEpsilon {
		eps = maxEpsilon
	}
	return eps
}
