package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/reviewgap/analyzer/internal/config"
	"github.com/reviewgap/analyzer/internal/core/cluster"
	"github.com/reviewgap/analyzer/internal/core/embed"
	"github.com/reviewgap/analyzer/internal/core/filter"
	"github.com/reviewgap/analyzer/internal/core/label"
	"github.com/reviewgap/analyzer/internal/core/model"
	"github.com/reviewgap/analyzer/internal/core/normalize"
	"github.com/reviewgap/analyzer/internal/core/rank"
	"github.com/reviewgap/analyzer/internal/llm"
)

// ProgressFunc receives (stage, percent, message) checkpoints at the start
// and end of each stage. The core does not own how progress is persisted or
// polled; this is a side channel for the surrounding job system.
type ProgressFunc func(stage Stage, percent int, message string)

// Analyzer orchestrates one analysis run: filter negative reviews, embed
// them, cluster the vectors, label the clusters, rank them. Each run owns
// its working set; only the injected capability clients are shared across
// concurrent runs.
type Analyzer struct {
	cfg        config.AnalysisConfig
	normalizer *normalize.Normalizer
	filter     *filter.Filter
	generator  *embed.Generator
	labeler    *label.Labeler
	ranker     *rank.Ranker
	log        *slog.Logger
	progress   ProgressFunc
	now        func() time.Time
}

type Option func(*Analyzer)

// WithProgress registers the progress side channel.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Analyzer) { a.progress = fn }
}

// WithSentiment swaps the text-based negativity heuristic used for reviews
// without a star rating.
func WithSentiment(s filter.Sentiment) Option {
	return func(a *Analyzer) { a.filter = filter.New(s) }
}

// WithClock fixes the reference time for recency scoring.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer wires the pipeline. embedder is required for any run to get
// past the embedding stage; namer is optional and only improves cluster
// names.
func NewAnalyzer(embedder llm.EmbedderClient, namer llm.LLMClient, cfg config.AnalysisConfig, prompts config.LabelPrompts, log *slog.Logger, opts ...Option) *Analyzer {
	cfg = cfg.Normalize()
	if log == nil {
		log = slog.Default()
	}

	a := &Analyzer{
		cfg:        cfg,
		normalizer: normalize.New(log),
		filter:     filter.New(nil),
		generator:  embed.NewGenerator(embedder, log, cfg.EmbedBatchSize, cfg.EmbedConcurrency),
		labeler:    label.NewLabeler(namer, prompts.NameCluster, log, cfg.MaxKeywords, cfg.MaxSampleReviews),
		ranker:     rank.NewRanker(rank.Weights{Frequency: cfg.FrequencyWeight, Recency: cfg.RecencyWeight}, cfg.RecencyHalfLifeDays),
		log:        log,
		progress:   func(Stage, int, string) {},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the full pipeline over one review batch. The returned result
// is always non-nil with a terminal Status; err is non-nil only when the
// run Failed (a *StageError) or was Cancelled (context.Canceled). An
// insufficient-data outcome is a successful completion, not an error.
func (a *Analyzer) Analyze(ctx context.Context, reviews []model.Review) (*model.AnalysisResult, error) {
	result := &model.AnalysisResult{
		RunID:          uuid.New().String(),
		TotalReviews:   len(reviews),
		RankedClusters: []model.RankedCluster{},
	}
	dropped := 0

	// Filtering
	var negatives []model.NormalizedReview
	err := a.runStage(ctx, StageFiltering, fmt.Sprintf("Filtering %d reviews", len(reviews)), func(context.Context) error {
		normalized, nDropped := a.normalizer.Normalize(reviews)
		dropped += nDropped
		negatives = a.filter.Negative(normalized)
		return nil
	})
	if err != nil {
		return a.terminate(result, err)
	}
	result.NegativeCount = len(negatives)

	if len(negatives) < a.cfg.MinNegativeReviews {
		return a.insufficient(result, negatives, nil, 0, dropped,
			fmt.Sprintf("only %d negative reviews, need at least %d", len(negatives), a.cfg.MinNegativeReviews))
	}

	// Embedding
	var embedded []model.EmbeddedReview
	err = a.runStage(ctx, StageEmbedding, fmt.Sprintf("Embedding %d negative reviews", len(negatives)), func(sctx context.Context) error {
		var eDropped int
		var embedErr error
		embedded, eDropped, embedErr = a.generator.Generate(sctx, negatives)
		dropped += eDropped
		return embedErr
	})
	if err != nil {
		return a.terminate(result, err)
	}

	// Clustering
	var clusters []model.Cluster
	var noise model.Cluster
	err = a.runStage(ctx, StageClustering, fmt.Sprintf("Clustering %d vectors", len(embedded)), func(context.Context) error {
		engine := cluster.NewEngine(a.log, a.cfg.MinClusterSize, 0)
		clusters, noise = engine.Cluster(embedded)
		return nil
	})
	if err != nil {
		return a.terminate(result, err)
	}

	if len(clusters) == 0 {
		return a.insufficient(result, negatives, nil, len(noise.Members), dropped,
			"no clusters met the minimum size; complaints show no recurring pattern")
	}

	// Labeling
	err = a.runStage(ctx, StageLabeling, fmt.Sprintf("Labeling %d clusters", len(clusters)), func(sctx context.Context) error {
		for i := range clusters {
			a.labeler.Label(sctx, &clusters[i], i+1)
		}
		return nil
	})
	if err != nil {
		return a.terminate(result, err)
	}

	// Ranking
	err = a.runStage(ctx, StageRanking, fmt.Sprintf("Ranking %d clusters", len(clusters)), func(context.Context) error {
		now := a.now()
		result.RankedClusters = a.ranker.Rank(clusters, len(negatives), now)
		result.Summary = rank.BuildSummary(len(reviews), len(negatives), len(noise.Members), dropped, result.RankedClusters)
		result.Insights = rank.BuildInsights(result.RankedClusters, negatives, now)
		return nil
	})
	if err != nil {
		return a.terminate(result, err)
	}

	result.Status = model.StatusCompleted
	result.StatusMessage = fmt.Sprintf("analysis completed with %d complaint clusters", len(clusters))
	result.CompletedAt = a.now()
	a.log.Info("analysis completed", "run_id", result.RunID, "clusters", len(clusters), "noise", len(noise.Members))
	return result, nil
}

// runStage enforces the between-stage cancellation check and the per-stage
// soft timeout, and emits the start/end progress checkpoints.
func (a *Analyzer) runStage(ctx context.Context, stage Stage, message string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.progress(stage, 0, message)

	sctx, cancel := context.WithTimeout(ctx, a.cfg.StageTimeout())
	defer cancel()

	err := fn(sctx)
	if err == nil && sctx.Err() != nil {
		err = sctx.Err() // stage finished past its deadline or under cancellation
	}
	if err != nil {
		if ctx.Err() == context.Canceled || errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("stage timed out after %s: %w", a.cfg.StageTimeout(), err)
		}
		return &StageError{Stage: stage, Err: err}
	}

	a.progress(stage, 100, message+" done")
	return nil
}

// terminate maps a stage error to the Failed or Cancelled terminal state.
// Partially computed clusters are discarded, never reported.
func (a *Analyzer) terminate(result *model.AnalysisResult, err error) (*model.AnalysisResult, error) {
	result.RankedClusters = []model.RankedCluster{}
	result.CompletedAt = a.now()

	if errors.Is(err, context.Canceled) {
		result.Status = model.StatusCancelled
		result.StatusMessage = "analysis cancelled"
		a.log.Info("analysis cancelled", "run_id", result.RunID)
		return result, context.Canceled
	}

	result.Status = model.StatusFailed
	result.StatusMessage = err.Error()
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		a.log.Error("analysis failed", "run_id", result.RunID, "stage", string(stageErr.Stage), "error", stageErr.Err)
	} else {
		a.log.Error("analysis failed", "run_id", result.RunID, "error", err)
	}
	return result, err
}

// insufficient is the terminal success state for runs without enough
// negative reviews or without any dense complaint pattern.
func (a *Analyzer) insufficient(result *model.AnalysisResult, negatives []model.NormalizedReview, ranked []model.RankedCluster, noiseCount, dropped int, reason string) (*model.AnalysisResult, error) {
	result.Status = model.StatusInsufficientData
	result.StatusMessage = reason
	result.RankedClusters = []model.RankedCluster{}
	result.Summary = rank.BuildSummary(result.TotalReviews, len(negatives), noiseCount, dropped, ranked)
	result.Insights = rank.BuildInsights(ranked, negatives, a.now())
	result.CompletedAt = a.now()
	a.log.Info("analysis completed with insufficient data", "run_id", result.RunID, "reason", reason)
	return result, nil
}
