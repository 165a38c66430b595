// Package insight turns a mood summary into narrative text, either through a
// language model or through a fixed rule-based template.
package insight

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/limbo/zenjournal/internal/mood"
)

const (
	LookbackDays    = 30
	maxExcerpts     = 5
	maxExcerptRunes = 200

	// EmptyMessage is returned instead of an insight when there is nothing to analyze.
	EmptyMessage = "Start journaling to receive personalized mood insights!"
)

//go:generate mockgen -source=insight.go -destination=mocks/mock_insight.go -package=mocks

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Excerpt struct {
	Title string
	Text  string
}

// Summary is everything the prompt and the fallback are built from.
type Summary struct {
	TotalEntries int
	Days         int
	Counts       []LabelCount
	Dominant     mood.Label
	Recent       []Excerpt
}

type LabelCount struct {
	Label mood.Label
	Count int
}

// NewExcerpt keeps the first 200 characters of content.
func NewExcerpt(title, content string) Excerpt {
	if utf8.RuneCountInString(content) > maxExcerptRunes {
		content = string([]rune(content)[:maxExcerptRunes])
	}
	return Excerpt{Title: title, Text: content}
}

// Recent returns at most five excerpts, keeping input order.
func Recent(excerpts []Excerpt) []Excerpt {
	if len(excerpts) > maxExcerpts {
		return excerpts[:maxExcerpts]
	}
	return excerpts
}

func (s Summary) moodLine() string {
	parts := make([]string, 0, len(s.Counts))
	for _, c := range s.Counts {
		if c.Count == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %d entries", c.Label, c.Count))
	}
	return strings.Join(parts, ", ")
}

func Prompt(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As a compassionate mental health assistant, analyze the following journal data from the last %d days and provide supportive, actionable insights:\n\n", s.Days)
	fmt.Fprintf(&b, "Mood Distribution: %s\n", s.moodLine())
	fmt.Fprintf(&b, "Total Entries: %d\n\n", s.TotalEntries)
	b.WriteString("Recent Entry Samples:\n")
	for i, e := range s.Recent {
		fmt.Fprintf(&b, "%d. %s: %s...\n", i+1, e.Title, e.Text)
	}
	b.WriteString(`
Provide:
1. A brief overview of their emotional patterns
2. Positive observations and strengths
3. Areas that might need attention
4. 2-3 practical suggestions for emotional well-being
5. Encouraging words

Keep the response warm, supportive, and under 300 words.`)
	return b.String()
}

// Fallback renders the rule-based insight. Output depends only on s.
func Fallback(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on your %d journal entries over the last %d days, here's what we observed:\n\n", s.TotalEntries, s.Days)
	fmt.Fprintf(&b, "**Emotional Patterns:** %s\n\n", s.moodLine())
	fmt.Fprintf(&b, "Your most frequent mood has been **%s**. This shows you've been actively reflecting on your experiences.\n\n", s.Dominant)
	b.WriteString("**Positive Observations:** You're maintaining a consistent journaling practice, which is excellent for mental health awareness and emotional processing.\n\n")
	b.WriteString("**Suggestions for Well-being:**\n")
	b.WriteString("1. Continue your journaling routine - consistency is key\n")
	b.WriteString("2. Try to identify patterns between your daily activities and moods\n")
	b.WriteString("3. Practice gratitude by noting positive moments each day\n\n")
	b.WriteString("Keep up the great work with your self-reflection journey!")
	return b.String()
}
