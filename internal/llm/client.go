package llm

import (
	"context"
	"errors"
	"fmt"
)

// LLMClient generates free-form text from a prompt. The labeler uses it to
// name clusters; it is optional and the pipeline falls back to a heuristic
// when it is absent or erroring.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedderClient maps texts to fixed-dimension vectors where cosine
// similarity approximates topical similarity. Implementations must be
// deterministic per text and return exactly one vector per input, or an
// error. Never silent zero vectors.
type EmbedderClient interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrNoEmbedder marks providers that cannot produce embeddings.
var ErrNoEmbedder = errors.New("provider does not support embeddings")

func checkEmbeddingCount(got, want int) error {
	if got != want {
		return fmt.Errorf("embedding count mismatch: got %d vectors for %d texts", got, want)
	}
	return nil
}
