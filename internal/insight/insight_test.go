package insight_test

import (
	"context"
	"strings"
	"testing"

	"github.com/limbo/zenjournal/internal/insight"
	"github.com/limbo/zenjournal/internal/mood"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var summary = insight.Summary{
	TotalEntries: 4,
	Days:         30,
	Counts: []insight.LabelCount{
		{Label: mood.Happy, Count: 3},
		{Label: mood.Sad, Count: 0},
		{Label: mood.Calm, Count: 1},
	},
	Dominant: mood.Happy,
	Recent: []insight.Excerpt{
		{Title: "Walk", Text: "went for a walk"},
		{Title: "Work", Text: "long day"},
	},
}

func TestFallback(t *testing.T) {
	text := insight.Fallback(summary)
	assert.True(t, strings.HasPrefix(text, "Based on your 4 journal entries over the last 30 days"))
	assert.Contains(t, text, "**Emotional Patterns:** happy: 3 entries, calm: 1 entries")
	assert.NotContains(t, text, "sad: 0")
	assert.Contains(t, text, "Your most frequent mood has been **happy**")
	assert.Equal(t, text, insight.Fallback(summary))
}

func TestPrompt(t *testing.T) {
	p := insight.Prompt(summary)
	assert.Contains(t, p, "last 30 days")
	assert.Contains(t, p, "Mood Distribution: happy: 3 entries, calm: 1 entries")
	assert.Contains(t, p, "Total Entries: 4")
	assert.Contains(t, p, "1. Walk: went for a walk...")
	assert.Contains(t, p, "2. Work: long day...")
	assert.Contains(t, p, "under 300 words")
}

func TestNewExcerpt(t *testing.T) {
	long := strings.Repeat("é", 250)
	e := insight.NewExcerpt("t", long)
	assert.Equal(t, 200, len([]rune(e.Text)))

	short := insight.NewExcerpt("t", "short")
	assert.Equal(t, "short", short.Text)
}

func TestRecent(t *testing.T) {
	in := make([]insight.Excerpt, 8)
	for i := range in {
		in[i] = insight.Excerpt{Title: string(rune('a' + i))}
	}
	out := insight.Recent(in)
	require.Len(t, out, 5)
	assert.Equal(t, "a", out[0].Title)
	assert.Len(t, insight.Recent(in[:2]), 2)
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := insight.NewGeminiGenerator(context.Background(), "", "")
	assert.Error(t, err)
}
