package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewgap/analyzer/internal/config"
	"github.com/reviewgap/analyzer/internal/core/model"
	"github.com/reviewgap/analyzer/internal/llm"
)

var analysisNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// topicEmbedder maps each text onto a fixed axis per complaint topic, so
// reviews about the same topic embed identically and distinct topics are
// orthogonal.
type topicEmbedder struct {
	err error
}

var topicAxes = []struct {
	word string
	axis int
}{
	{"crash", 0},
	{"battery", 1},
	{"login", 2},
	{"love", 3},
}

func (e *topicEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, 8)
		v[7] = 1 // default direction for unmatched text
		for _, t := range topicAxes {
			if strings.Contains(text, t.word) {
				v[7] = 0
				v[t.axis] = 1
				break
			}
		}
		vectors[i] = v
	}
	return vectors, nil
}

type staticNamer struct {
	response string
}

func (n *staticNamer) Generate(context.Context, string) (string, error) {
	return n.response, nil
}

func intPtr(v int) *int { return &v }

func review(id, text string, rating int, date time.Time) model.Review {
	return model.Review{ID: id, Text: text, Rating: intPtr(rating), Date: date}
}

func crashReviews(n int, rating int, date time.Time) []model.Review {
	fillers := []string{"today", "yesterday", "constantly", "again", "every single time", "on startup", "after the update", "when opening photos", "right away", "without warning"}
	reviews := make([]model.Review, n)
	for i := 0; i < n; i++ {
		reviews[i] = review(
			fmt.Sprintf("crash-%d", i),
			fmt.Sprintf("the app keeps crashing %s", fillers[i%len(fillers)]),
			rating, date)
	}
	return reviews
}

func topicReviews(topic string, n int, date time.Time) []model.Review {
	reviews := make([]model.Review, n)
	for i := 0; i < n; i++ {
		reviews[i] = review(
			fmt.Sprintf("%s-%d", topic, i),
			fmt.Sprintf("%s problem number %d keeps happening", topic, i),
			1, date)
	}
	return reviews
}

func testConfig() config.AnalysisConfig {
	cfg := config.DefaultAnalysis()
	cfg.MinClusterSize = 3
	return cfg
}

type progressEvent struct {
	stage   Stage
	percent int
}

func newTestAnalyzer(t *testing.T, embedder llm.EmbedderClient, events *[]progressEvent) *Analyzer {
	t.Helper()
	opts := []Option{WithClock(func() time.Time { return analysisNow })}
	if events != nil {
		opts = append(opts, WithProgress(func(stage Stage, percent int, _ string) {
			*events = append(*events, progressEvent{stage, percent})
		}))
	}
	return NewAnalyzer(embedder, nil, testConfig(), config.LabelPrompts{}, testLogger(), opts...)
}

func TestAnalyze_SingleComplaintCluster(t *testing.T) {
	reviews := crashReviews(6, 1, analysisNow.AddDate(0, 0, -7))
	for i := 0; i < 4; i++ {
		reviews = append(reviews, review(
			fmt.Sprintf("happy-%d", i),
			fmt.Sprintf("love this thing so helpful number %d", i),
			5, analysisNow))
	}

	var events []progressEvent
	a := newTestAnalyzer(t, &topicEmbedder{}, &events)

	result, err := a.Analyze(context.Background(), reviews)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, result.Status)
	assert.Equal(t, 10, result.TotalReviews)
	assert.Equal(t, 6, result.NegativeCount)
	require.Len(t, result.RankedClusters, 1)

	top := result.RankedClusters[0]
	assert.Equal(t, 6, top.ReviewCount)
	assert.InDelta(t, 100.0, top.PercentageOfTotal, 1e-9)
	assert.Equal(t, "App Crashes", top.Name)
	require.NotEmpty(t, top.Keywords)
	assert.Contains(t, top.Keywords[0], "crash")
	assert.NotEmpty(t, top.SampleReviews)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, analysisNow, result.CompletedAt)

	// Every stage reports a start and an end checkpoint, in order.
	want := []progressEvent{
		{StageFiltering, 0}, {StageFiltering, 100},
		{StageEmbedding, 0}, {StageEmbedding, 100},
		{StageClustering, 0}, {StageClustering, 100},
		{StageLabeling, 0}, {StageLabeling, 100},
		{StageRanking, 0}, {StageRanking, 100},
	}
	assert.Equal(t, want, events)
}

func TestAnalyze_TwoEqualClusters(t *testing.T) {
	date := analysisNow.AddDate(0, 0, -3)
	reviews := append(topicReviews("battery", 10, date), topicReviews("login", 10, date)...)

	a := newTestAnalyzer(t, &topicEmbedder{}, nil)

	result, err := a.Analyze(context.Background(), reviews)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, result.Status)
	require.Len(t, result.RankedClusters, 2)
	assert.InDelta(t, 50.0, result.RankedClusters[0].PercentageOfTotal, 1e-9)
	assert.InDelta(t, 50.0, result.RankedClusters[1].PercentageOfTotal, 1e-9)
	// Equal scores keep cluster creation order.
	assert.Equal(t, "Battery Drain", result.RankedClusters[0].Name)
	assert.Equal(t, "Authentication Problems", result.RankedClusters[1].Name)
	assert.Equal(t, 0, result.Summary.NoiseReviews)
	assert.Equal(t, "increasing", result.Insights.TrendDirection)
}

func TestAnalyze_NamerResponseUsedForClusterName(t *testing.T) {
	reviews := crashReviews(6, 1, analysisNow)

	a := NewAnalyzer(&topicEmbedder{}, &staticNamer{response: `{"name": "Launch Failures", "description": "Crashes at startup."}`},
		testConfig(), config.LabelPrompts{}, testLogger(),
		WithClock(func() time.Time { return analysisNow }))

	result, err := a.Analyze(context.Background(), reviews)
	require.NoError(t, err)

	require.Len(t, result.RankedClusters, 1)
	assert.Equal(t, "Launch Failures", result.RankedClusters[0].Name)
	assert.Equal(t, "Crashes at startup.", result.RankedClusters[0].Description)
}

func TestAnalyze_InsufficientNegativeReviews(t *testing.T) {
	reviews := crashReviews(3, 1, analysisNow)
	for i := 0; i < 5; i++ {
		reviews = append(reviews, review(
			fmt.Sprintf("happy-%d", i),
			fmt.Sprintf("love this thing number %d", i),
			5, analysisNow))
	}

	a := newTestAnalyzer(t, &topicEmbedder{}, nil)

	result, err := a.Analyze(context.Background(), reviews)
	require.NoError(t, err)

	assert.Equal(t, model.StatusInsufficientData, result.Status)
	assert.Contains(t, result.StatusMessage, "need at least 5")
	assert.Empty(t, result.RankedClusters)
	assert.Equal(t, 8, result.Summary.TotalReviews)
	assert.Equal(t, 3, result.Summary.NegativeReviews)
	require.Len(t, result.Insights.Recommendations, 1)
	assert.Contains(t, result.Insights.Recommendations[0], "Insufficient data")
}

func TestAnalyze_NoRecurringPattern(t *testing.T) {
	// Six negatives on six different topics: everything ends up as noise.
	topics := []string{"battery", "login", "crash", "payment", "sound", "screen"}
	var reviews []model.Review
	for i, topic := range topics {
		reviews = append(reviews, review(
			fmt.Sprintf("r-%d", i),
			fmt.Sprintf("%s issue ruins everything completely", topic),
			1, analysisNow))
	}

	a := newTestAnalyzer(t, &orthogonalEmbedder{}, nil)

	result, err := a.Analyze(context.Background(), reviews)
	require.NoError(t, err)

	assert.Equal(t, model.StatusInsufficientData, result.Status)
	assert.Contains(t, result.StatusMessage, "no recurring pattern")
	assert.Empty(t, result.RankedClusters)
	assert.Equal(t, 6, result.Summary.NoiseReviews)
}

func TestAnalyze_EmbedderFailureFailsRun(t *testing.T) {
	a := newTestAnalyzer(t, &topicEmbedder{err: errors.New("connection refused")}, nil)

	result, err := a.Analyze(context.Background(), crashReviews(6, 1, analysisNow))
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageEmbedding, stageErr.Stage)
	assert.Equal(t, model.StatusFailed, result.Status)
	assert.Empty(t, result.RankedClusters)
}

func TestAnalyze_CancelledBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events []progressEvent
	a := NewAnalyzer(&topicEmbedder{}, nil, testConfig(), config.LabelPrompts{}, testLogger(),
		WithClock(func() time.Time { return analysisNow }),
		WithProgress(func(stage Stage, percent int, _ string) {
			events = append(events, progressEvent{stage, percent})
			if stage == StageClustering && percent == 100 {
				cancel()
			}
		}))

	result, err := a.Analyze(ctx, crashReviews(6, 1, analysisNow))

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.StatusCancelled, result.Status)
	assert.Empty(t, result.RankedClusters)
	for _, e := range events {
		assert.NotEqual(t, StageLabeling, e.stage, "no stage may start after cancellation")
	}
}

func TestAnalyze_NoReviews(t *testing.T) {
	a := newTestAnalyzer(t, &topicEmbedder{}, nil)

	result, err := a.Analyze(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, model.StatusInsufficientData, result.Status)
	assert.Equal(t, 0, result.TotalReviews)
	assert.Empty(t, result.RankedClusters)
}

// orthogonalEmbedder gives every text its own axis, so no two reviews are
// ever close.
type orthogonalEmbedder struct {
	next int
}

func (e *orthogonalEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, 64)
		v[e.next%64] = 1
		e.next++
		vectors[i] = v
	}
	return vectors, nil
}
