package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/limbo/zenjournal/internal/analytics"
	errorvalues "github.com/limbo/zenjournal/internal/error_values"
	"github.com/limbo/zenjournal/internal/repository"
	"github.com/limbo/zenjournal/pkg/entity"
)

type AnalyticsService struct {
	repo repository.EntriesRepositoryI
	agg  *analytics.Aggregator
}

func NewAnalyticsService(repo repository.EntriesRepositoryI, agg *analytics.Aggregator) *AnalyticsService {
	if repo == nil || agg == nil {
		log.Fatal("nil dependency passed to analytics service")
	}
	return &AnalyticsService{
		repo: repo,
		agg:  agg,
	}
}

func (as *AnalyticsService) entries(ctx context.Context, uid uuid.UUID, period entity.DateRange) ([]*entity.Entry, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrUnauthenticated
	}
	entries, err := as.repo.ListByOwner(ctx, uid, period, false)
	if err != nil {
		return nil, errors.New("repository searching error: " + err.Error())
	}
	return entries, nil
}

func (as *AnalyticsService) Overview(ctx context.Context, uid uuid.UUID) (*analytics.Overview, error) {
	entries, err := as.entries(ctx, uid, entity.DateRange{})
	if err != nil {
		return nil, err
	}
	ov := as.agg.Overview(entries)
	return &ov, nil
}

func (as *AnalyticsService) Trends(ctx context.Context, uid uuid.UUID, days int) (*analytics.Trends, error) {
	days = analytics.NormalizeDays(days)
	entries, err := as.entries(ctx, uid, as.agg.Window(days))
	if err != nil {
		return nil, err
	}
	tr := as.agg.Trends(entries, days)
	return &tr, nil
}

func (as *AnalyticsService) Calendar(ctx context.Context, uid uuid.UUID, month, year int) (*analytics.Calendar, error) {
	period, _ := as.agg.MonthRange(month, year)
	entries, err := as.entries(ctx, uid, period)
	if err != nil {
		return nil, err
	}
	cal := as.agg.Calendar(entries)
	return &cal, nil
}

func (as *AnalyticsService) Stats(ctx context.Context, uid uuid.UUID, days int) (*analytics.Stats, error) {
	days = analytics.NormalizeDays(days)
	entries, err := as.entries(ctx, uid, as.agg.Window(days))
	if err != nil {
		return nil, err
	}
	st := as.agg.Stats(entries, days)
	return &st, nil
}

func (as *AnalyticsService) Activity(ctx context.Context, uid uuid.UUID) ([]analytics.ActivityDay, error) {
	entries, err := as.entries(ctx, uid, entity.DateRange{})
	if err != nil {
		return nil, err
	}
	return as.agg.Activity(entries), nil
}
