package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/reviewgap/analyzer/internal/config"
	"github.com/reviewgap/analyzer/internal/core"
	"github.com/reviewgap/analyzer/internal/core/model"
	"github.com/reviewgap/analyzer/internal/llm"
)

func main() {
	configPath := flag.String("config", "config/config.toml", "path to TOML config")
	inputPath := flag.String("input", "", "path to a JSON array of reviews")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment as-is")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Run with defaults when no config file is present; env still
		// carries the LLM credentials.
		cfg = &config.Config{Analysis: config.DefaultAnalysis()}
	}
	cfg.ApplyEnv()

	log := newLogger(cfg.LogLevel)

	if *inputPath == "" {
		log.Error("missing -input flag")
		os.Exit(2)
	}

	reviews, err := loadReviews(*inputPath)
	if err != nil {
		log.Error("failed to load reviews", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	namer, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Error("failed to initialize llm client", "error", err)
		os.Exit(1)
	}
	if embedder == nil {
		log.Error("configured provider has no embedding support; choose openai, gemini, or ollama", "provider", cfg.LLM.Provider)
		os.Exit(1)
	}

	analyzer := core.NewAnalyzer(embedder, namer, cfg.Analysis, cfg.Prompts, log,
		core.WithProgress(func(stage core.Stage, percent int, message string) {
			log.Info("progress", "stage", string(stage), "percent", percent, "message", message)
		}))

	result, err := analyzer.Analyze(ctx, reviews)
	if err != nil {
		log.Error("analysis did not complete", "status", string(result.Status), "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func loadReviews(path string) ([]model.Review, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var reviews []model.Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return reviews, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
