package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/zenjournal/internal/analytics"
	errorvalues "github.com/limbo/zenjournal/internal/error_values"
	"github.com/limbo/zenjournal/internal/insight"
	"github.com/limbo/zenjournal/internal/mood"
	"github.com/limbo/zenjournal/internal/repository"
	"github.com/limbo/zenjournal/pkg/entity"
)

const DefaultInsightTimeout = 15 * time.Second

type InsightSource string

const (
	SourceAI       InsightSource = "ai"
	SourceFallback InsightSource = "fallback"
	SourceNone     InsightSource = "none"
)

type Insights struct {
	Insights         string                 `json:"insights"`
	Source           InsightSource          `json:"source"`
	MoodDistribution analytics.Distribution `json:"mood_distribution"`
	TotalEntries     int                    `json:"total_entries"`
	AnalyzedPeriod   string                 `json:"analyzed_period"`
	DateRange        analytics.StatsRange   `json:"date_range"`
	// Why the generator was bypassed, if it was
	UpstreamErr error `json:"-"`
}

type InsightsService struct {
	repo      repository.EntriesRepositoryI
	agg       *analytics.Aggregator
	generator insight.Generator
	timeout   time.Duration
}

// generator may be nil, then every request gets the rule-based text.
func NewInsightsService(repo repository.EntriesRepositoryI, agg *analytics.Aggregator, generator insight.Generator, timeout time.Duration) *InsightsService {
	if repo == nil || agg == nil {
		log.Fatal("nil dependency passed to insights service")
	}
	if timeout <= 0 {
		timeout = DefaultInsightTimeout
	}
	return &InsightsService{
		repo:      repo,
		agg:       agg,
		generator: generator,
		timeout:   timeout,
	}
}

func (is *InsightsService) Insights(ctx context.Context, uid uuid.UUID) (*Insights, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrUnauthenticated
	}
	window := is.agg.Window(insight.LookbackDays)
	entries, err := is.repo.ListByOwner(ctx, uid, window, false)
	if err != nil {
		return nil, errors.New("repository searching error: " + err.Error())
	}
	stats := is.agg.Stats(entries, insight.LookbackDays)
	res := &Insights{
		MoodDistribution: stats.MoodDistribution,
		TotalEntries:     stats.TotalEntries,
		AnalyzedPeriod:   "30 days",
		DateRange:        stats.DateRange,
	}
	if stats.TotalEntries == 0 {
		res.Insights, res.Source = insight.EmptyMessage, SourceNone
		return res, nil
	}

	summary := summarize(stats, entries)
	if is.generator == nil {
		res.Insights, res.Source = insight.Fallback(summary), SourceFallback
		res.UpstreamErr = errorvalues.ErrUpstreamUnavailable
		return res, nil
	}
	genCtx, cancel := context.WithTimeout(ctx, is.timeout)
	defer cancel()
	text, err := is.generator.Generate(genCtx, insight.Prompt(summary))
	if err != nil {
		res.Insights, res.Source = insight.Fallback(summary), SourceFallback
		res.UpstreamErr = errors.Join(errorvalues.ErrUpstreamUnavailable, err)
		return res, nil
	}
	res.Insights, res.Source = text, SourceAI
	return res, nil
}

// entries are expected newest first, so excerpts are the latest ones.
func summarize(stats analytics.Stats, entries []*entity.Entry) insight.Summary {
	s := insight.Summary{
		TotalEntries: stats.TotalEntries,
		Days:         stats.Days,
		Dominant:     stats.DominantMood,
	}
	for _, l := range mood.All() {
		s.Counts = append(s.Counts, insight.LabelCount{Label: l, Count: stats.MoodDistribution[l]})
	}
	excerpts := make([]insight.Excerpt, 0, len(entries))
	for _, e := range entries {
		excerpts = append(excerpts, insight.NewExcerpt(e.Title, e.Content))
	}
	s.Recent = insight.Recent(excerpts)
	return s
}
