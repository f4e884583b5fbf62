package normalize

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reviewgap/analyzer/internal/core/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClean_StripsNoise(t *testing.T) {
	n := New(testLogger())

	cleaned := n.Clean("TERRIBLE app!! 😡 it keeps crashing, see https://example.com/bug or mail me@example.com")
	assert.Equal(t, "terrible app it keeps crashing see or mail", cleaned)
}

func TestClean_Idempotent(t *testing.T) {
	n := New(testLogger())

	inputs := []string{
		"The App CRASHES every time!!! http://t.co/x 😡",
		"slow   and\n\nlaggy... Full Review",
		"already clean text here",
	}
	for _, in := range inputs {
		once := n.Clean(in)
		assert.Equal(t, once, n.Clean(once), "Clean must be a fixed point for %q", in)
	}
}

func TestClean_TrimsBoilerplate(t *testing.T) {
	n := New(testLogger())

	assert.Equal(t, "battery drains overnight", n.Clean("Battery drains overnight ... Full Review"))
	assert.Equal(t, "battery drains overnight", n.Clean("Battery drains overnight Read More Show More"))
}

func TestNormalize_DropsShortAndDuplicates(t *testing.T) {
	n := New(testLogger())

	reviews := []model.Review{
		{ID: "1", Text: "The login page never loads"},
		{ID: "2", Text: "ok"},                            // too short after cleaning
		{ID: "3", Text: "The LOGIN page never loads!!!"}, // duplicate of 1 once cleaned
		{ID: "4", Text: "https://spam.example 😀"},        // empty after cleaning
		{ID: "5", Text: "Battery drain is out of control"},
	}

	out, dropped := n.Normalize(reviews)

	assert.Len(t, out, 2)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "the login page never loads", out[0].CleanedText)
	assert.Equal(t, "5", out[1].ID)
}

func TestNormalize_CapsLength(t *testing.T) {
	n := New(testLogger())

	var b strings.Builder
	for i := 0; i < MaxWords+50; i++ {
		fmt.Fprintf(&b, "word%d ", i)
	}
	out, dropped := n.Normalize([]model.Review{{ID: "1", Text: b.String(), Date: time.Now()}})

	assert.Zero(t, dropped)
	assert.Len(t, out, 1)
	assert.Len(t, strings.Fields(out[0].CleanedText), MaxWords)
}
