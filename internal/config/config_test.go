package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[llm]
provider = "openai"
model = "gpt-4o-mini"
embedding_model = "text-embedding-3-small"

[analysis]
min_cluster_size = 4
min_negative_reviews = 10
recency_half_life_days = 30

[prompts]
name_cluster = "Keywords: %s\nSamples:\n%s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.LLM.EmbeddingModel)
	assert.Equal(t, 4, cfg.Analysis.MinClusterSize)
	assert.Equal(t, 10, cfg.Analysis.MinNegativeReviews)
	assert.Equal(t, 30, cfg.Analysis.RecencyHalfLifeDays)
	assert.Contains(t, cfg.Prompts.NameCluster, "Keywords")
	// Unset fields pick up defaults.
	assert.InDelta(t, 0.7, cfg.Analysis.FrequencyWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Analysis.RecencyWeight, 1e-9)
	assert.Equal(t, 120, cfg.Analysis.StageTimeoutSeconds)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "[llm\nprovider = ")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalize_FillsDefaults(t *testing.T) {
	a := AnalysisConfig{}.Normalize()

	assert.Equal(t, DefaultAnalysis(), a)
	assert.Equal(t, 120*time.Second, a.StageTimeout())
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	a := AnalysisConfig{
		MinClusterSize:   6,
		FrequencyWeight:  0.5,
		RecencyWeight:    0.5,
		EmbedBatchSize:   16,
		EmbedConcurrency: 2,
	}.Normalize()

	assert.Equal(t, 6, a.MinClusterSize)
	assert.InDelta(t, 0.5, a.FrequencyWeight, 1e-9)
	assert.InDelta(t, 0.5, a.RecencyWeight, 1e-9)
	assert.Equal(t, 16, a.EmbedBatchSize)
	assert.Equal(t, 2, a.EmbedConcurrency)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("LLM_MODEL", "llama3.1")
	t.Setenv("LLM_BASE_URL", "http://localhost:11434")
	t.Setenv("LLM_API_KEY", "secret")

	cfg := &Config{}
	cfg.LLM.Provider = "openai"
	cfg.ApplyEnv()

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3.1", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
}
