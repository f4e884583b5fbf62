package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

// LabelPrompts are fmt templates for the naming capability. NameCluster
// receives the keyword list and the sample reviews, in that order.
type LabelPrompts struct {
	NameCluster string `toml:"name_cluster"`
}

// AnalysisConfig tunes the clustering pipeline. Zero values mean "use the
// default"; Normalize fills them in.
type AnalysisConfig struct {
	MinClusterSize      int     `toml:"min_cluster_size"`
	MinNegativeReviews  int     `toml:"min_negative_reviews"`
	RecencyHalfLifeDays int     `toml:"recency_half_life_days"`
	FrequencyWeight     float64 `toml:"frequency_weight"`
	RecencyWeight       float64 `toml:"recency_weight"`
	MaxKeywords         int     `toml:"max_keywords_per_cluster"`
	MaxSampleReviews    int     `toml:"max_sample_reviews_per_cluster"`
	StageTimeoutSeconds int     `toml:"stage_timeout_seconds"`
	EmbedBatchSize      int     `toml:"embed_batch_size"`
	EmbedConcurrency    int     `toml:"embed_concurrency"`
}

type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Analysis AnalysisConfig `toml:"analysis"`
	Prompts  LabelPrompts   `toml:"prompts"`
	LogLevel string         `toml:"log_level"`
}

// DefaultAnalysis returns the tuning defaults used when no config file is
// present or a field is left unset.
func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		MinClusterSize:      0, // derived from negative count at run time
		MinNegativeReviews:  5,
		RecencyHalfLifeDays: 90,
		FrequencyWeight:     0.7,
		RecencyWeight:       0.3,
		MaxKeywords:         5,
		MaxSampleReviews:    3,
		StageTimeoutSeconds: 120,
		EmbedBatchSize:      64,
		EmbedConcurrency:    4,
	}
}

// Normalize fills unset fields with defaults.
func (a AnalysisConfig) Normalize() AnalysisConfig {
	def := DefaultAnalysis()
	if a.MinNegativeReviews <= 0 {
		a.MinNegativeReviews = def.MinNegativeReviews
	}
	if a.RecencyHalfLifeDays <= 0 {
		a.RecencyHalfLifeDays = def.RecencyHalfLifeDays
	}
	if a.FrequencyWeight <= 0 && a.RecencyWeight <= 0 {
		a.FrequencyWeight = def.FrequencyWeight
		a.RecencyWeight = def.RecencyWeight
	}
	if a.MaxKeywords <= 0 {
		a.MaxKeywords = def.MaxKeywords
	}
	if a.MaxSampleReviews <= 0 {
		a.MaxSampleReviews = def.MaxSampleReviews
	}
	if a.StageTimeoutSeconds <= 0 {
		a.StageTimeoutSeconds = def.StageTimeoutSeconds
	}
	if a.EmbedBatchSize <= 0 {
		a.EmbedBatchSize = def.EmbedBatchSize
	}
	if a.EmbedConcurrency <= 0 {
		a.EmbedConcurrency = def.EmbedConcurrency
	}
	return a
}

// StageTimeout returns the per-stage soft timeout as a duration.
func (a AnalysisConfig) StageTimeout() time.Duration {
	return time.Duration(a.StageTimeoutSeconds) * time.Second
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	cfg.Analysis = cfg.Analysis.Normalize()

	return &cfg, nil
}

// ApplyEnv overrides LLM settings from the environment so deployments can
// keep keys out of the config file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		c.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
}
