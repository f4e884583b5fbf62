package embed

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/reviewgap/analyzer/internal/core/model"
	"github.com/reviewgap/analyzer/internal/llm"
)

// Generator turns normalized reviews into embedded reviews by calling the
// injected embedding capability in bounded-concurrency batches. Vectors are
// written once and never mutated afterwards.
type Generator struct {
	embedder    llm.EmbedderClient
	log         *slog.Logger
	batchSize   int
	concurrency int
}

func NewGenerator(embedder llm.EmbedderClient, log *slog.Logger, batchSize, concurrency int) *Generator {
	if batchSize <= 0 {
		batchSize = 64
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Generator{
		embedder:    embedder,
		log:         log,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

// Generate embeds every review and enforces a constant vector dimension
// across the run. Reviews whose vector comes back empty or with a mismatched
// dimension are dropped with a warning; a batch-level embedding error fails
// the whole call so the orchestrator can mark the stage failed.
func (g *Generator) Generate(ctx context.Context, reviews []model.NormalizedReview) ([]model.EmbeddedReview, int, error) {
	if g.embedder == nil {
		return nil, 0, fmt.Errorf("no embedding capability configured")
	}
	if len(reviews) == 0 {
		return nil, 0, nil
	}

	vectors := make([][]float32, len(reviews))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(g.concurrency)

	for start := 0; start < len(reviews); start += g.batchSize {
		start := start
		end := min(start+g.batchSize, len(reviews))
		group.Go(func() error {
			texts := make([]string, end-start)
			for i, r := range reviews[start:end] {
				texts[i] = r.CleanedText
			}
			batch, err := g.embedder.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
			}
			if len(batch) != len(texts) {
				return fmt.Errorf("embed batch [%d:%d]: got %d vectors for %d texts", start, end, len(batch), len(texts))
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, 0, err
	}

	dim := 0
	for _, v := range vectors {
		if len(v) > 0 {
			dim = len(v)
			break
		}
	}
	if dim == 0 {
		return nil, 0, fmt.Errorf("embedder returned no usable vectors")
	}

	out := make([]model.EmbeddedReview, 0, len(reviews))
	dropped := 0
	for i, v := range vectors {
		if len(v) != dim {
			g.log.Warn("dropping review: bad embedding dimension",
				"review_id", reviews[i].ID, "got", len(v), "want", dim)
			dropped++
			continue
		}
		out = append(out, model.EmbeddedReview{NormalizedReview: reviews[i], Vector: v})
	}

	return out, dropped, nil
}
