package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/zenjournal/internal/error_values"
	"github.com/limbo/zenjournal/internal/mood"
	"github.com/limbo/zenjournal/internal/repository"
	"github.com/limbo/zenjournal/pkg/entity"
)

const (
	DefaultPageLimit   = 10
	DefaultRecentLimit = 12
	MaxPageLimit       = 50
)

type EntriesService struct {
	repo repository.EntriesRepositoryI
	loc  *time.Location
	now  func() time.Time
}

type EntriesOption func(*EntriesService)

// Clock used for created/updated stamps and mood log titles.
func WithEntriesClock(now func() time.Time) EntriesOption {
	return func(es *EntriesService) {
		es.now = now
	}
}

func NewEntriesService(repo repository.EntriesRepositoryI, loc *time.Location, opts ...EntriesOption) *EntriesService {
	if repo == nil {
		log.Fatal("nil repository passed to entries service")
	}
	if loc == nil {
		loc = time.UTC
	}
	es := &EntriesService{
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(es)
	}
	return es
}

func (es *EntriesService) Create(ctx context.Context, uid uuid.UUID, req *CreateEntryRequest) (*entity.Entry, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrUnauthenticated
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	return es.store(ctx, uid, req.Title, req.Content)
}

func (es *EntriesService) store(ctx context.Context, uid uuid.UUID, title, content string) (*entity.Entry, error) {
	now := es.now().UTC()
	entry := &entity.Entry{
		OwnerID:   uid,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := es.repo.Create(ctx, entry)
	if err != nil {
		return nil, errors.New("repository creating error: " + err.Error())
	}
	entry.ID = id
	return entry, nil
}

func normalizeListOpts(opts ListEntriesOpts) ListEntriesOpts {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = DefaultPageLimit
	}
	if opts.Limit > MaxPageLimit {
		opts.Limit = MaxPageLimit
	}
	switch opts.Sort {
	case repository.SortNewest, repository.SortOldest, repository.SortTitle, repository.SortUpdated:
	default:
		opts.Sort = repository.SortNewest
	}
	opts.Search = strings.TrimSpace(opts.Search)
	return opts
}

func (es *EntriesService) List(ctx context.Context, uid uuid.UUID, opts ListEntriesOpts) (*EntriesPage, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrUnauthenticated
	}
	opts = normalizeListOpts(opts)
	total, err := es.repo.Count(ctx, uid, opts.Search)
	if err != nil {
		return nil, errors.New("repository counting error: " + err.Error())
	}
	totalPages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	// Pages past the end collapse onto the last one, keeping the offset in range.
	if opts.Page > totalPages {
		opts.Page = max(totalPages, 1)
	}
	entries, err := es.repo.Find(ctx, uid, repository.FindOpts{
		Search: opts.Search,
		Sort:   opts.Sort,
		Limit:  opts.Limit,
		Offset: (opts.Page - 1) * opts.Limit,
	})
	if err != nil {
		return nil, errors.New("repository searching error: " + err.Error())
	}
	if entries == nil {
		entries = make([]*entity.Entry, 0)
	}
	return &EntriesPage{
		Entries: entries,
		Pagination: Pagination{
			CurrentPage:    opts.Page,
			TotalPages:     totalPages,
			TotalEntries:   total,
			EntriesPerPage: opts.Limit,
			HasNextPage:    opts.Page < totalPages,
			HasPrevPage:    opts.Page > 1,
		},
		Filters: EntryFilters{Search: opts.Search, Sort: opts.Sort},
	}, nil
}

// owned loads the entry and hides entries of other users behind ErrWrongOwner.
func (es *EntriesService) owned(ctx context.Context, uid uuid.UUID, id string) (*entity.Entry, error) {
	entry, err := es.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrEntryNotFound) {
			return nil, errorvalues.ErrEntryNotFound
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	if entry.OwnerID != uid {
		return nil, errorvalues.ErrWrongOwner
	}
	return entry, nil
}

func (es *EntriesService) Update(ctx context.Context, uid uuid.UUID, id string, req *UpdateEntryRequest) (*entity.Entry, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrUnauthenticated
	}
	if req.Title == nil && req.Content == nil {
		return nil, errorvalues.ErrEmptyUpdate
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be blank", errorvalues.ErrValidation)
		}
		req.Title = &title
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, fmt.Errorf("%w: content must not be blank", errorvalues.ErrValidation)
		}
		req.Content = &content
	}
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	entry, err := es.owned(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		entry.Title = *req.Title
	}
	if req.Content != nil {
		entry.Content = *req.Content
	}
	entry.UpdatedAt = es.now().UTC()
	if err = es.repo.Update(ctx, entry); err != nil {
		if errors.Is(err, errorvalues.ErrEntryNotFound) {
			return nil, errorvalues.ErrEntryNotFound
		}
		return nil, errors.New("repository updating error: " + err.Error())
	}
	return entry, nil
}

func (es *EntriesService) Delete(ctx context.Context, uid uuid.UUID, id string) error {
	if uid == uuid.Nil {
		return errorvalues.ErrUnauthenticated
	}
	if _, err := es.owned(ctx, uid, id); err != nil {
		return err
	}
	if err := es.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, errorvalues.ErrEntryNotFound) {
			return errorvalues.ErrEntryNotFound
		}
		return errors.New("repository deletion error: " + err.Error())
	}
	return nil
}

func (es *EntriesService) LogMood(ctx context.Context, uid uuid.UUID, req *LogMoodRequest) (*entity.Entry, error) {
	if uid == uuid.Nil {
		return nil, errorvalues.ErrUnauthenticated
	}
	req.Mood = strings.TrimSpace(strings.ToLower(req.Mood))
	req.Note = strings.TrimSpace(req.Note)
	label, err := mood.Parse(req.Mood)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Mood Check - %s", es.now().In(es.loc).Format("2006-01-02"))
	content := req.Note
	if content == "" {
		content = fmt.Sprintf("Feeling %s today.", label)
	}
	return es.store(ctx, uid, title, content)
}
