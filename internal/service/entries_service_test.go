package service_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/zenjournal/internal/error_values"
	"github.com/limbo/zenjournal/internal/repository"
	"github.com/limbo/zenjournal/internal/repository/mocks"
	"github.com/limbo/zenjournal/internal/service"
	"github.com/limbo/zenjournal/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)

func newEntriesService(repo repository.EntriesRepositoryI) *service.EntriesService {
	return service.NewEntriesService(repo, time.UTC, service.WithEntriesClock(func() time.Time { return fixedNow }))
}

func TestCreateEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockEntriesRepositoryI(ctrl)
	serv := newEntriesService(repo)
	uid := uuid.New()

	testCases := []struct {
		Desc         string
		Error        error
		UID          uuid.UUID
		Req          service.CreateEntryRequest
		MockPrepFunc func()
	}{
		{
			Desc: "success",
			UID:  uid,
			Req:  service.CreateEntryRequest{Title: "  Morning  ", Content: "I feel happy today"},
			MockPrepFunc: func() {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *entity.Entry) (string, error) {
					assert.Equal(t, uid, e.OwnerID)
					assert.Equal(t, "Morning", e.Title)
					assert.Equal(t, fixedNow, e.CreatedAt)
					assert.Equal(t, fixedNow, e.UpdatedAt)
					return "65f0c0ffee", nil
				})
			},
		},
		{
			Desc:         "blank title",
			Error:        errorvalues.ErrValidation,
			UID:          uid,
			Req:          service.CreateEntryRequest{Title: "   ", Content: "text"},
			MockPrepFunc: func() {},
		},
		{
			Desc:         "title too long",
			Error:        errorvalues.ErrValidation,
			UID:          uid,
			Req:          service.CreateEntryRequest{Title: strings.Repeat("a", 201), Content: "text"},
			MockPrepFunc: func() {},
		},
		{
			Desc:         "empty content",
			Error:        errorvalues.ErrValidation,
			UID:          uid,
			Req:          service.CreateEntryRequest{Title: "title", Content: ""},
			MockPrepFunc: func() {},
		},
		{
			Desc:         "unauthenticated",
			Error:        errorvalues.ErrUnauthenticated,
			UID:          uuid.Nil,
			Req:          service.CreateEntryRequest{Title: "title", Content: "text"},
			MockPrepFunc: func() {},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			req := tc.Req
			res, err := serv.Create(context.Background(), tc.UID, &req)
			if tc.Error != nil {
				assert.ErrorIs(t, err, tc.Error)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "65f0c0ffee", res.ID)
		})
	}
}

func TestListEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockEntriesRepositoryI(ctrl)
	serv := newEntriesService(repo)
	uid := uuid.New()

	t.Run("normalizes options", func(t *testing.T) {
		repo.EXPECT().Find(gomock.Any(), uid, repository.FindOpts{
			Search: "rain",
			Sort:   repository.SortNewest,
			Limit:  service.MaxPageLimit,
			Offset: 0,
		}).Return([]*entity.Entry{{ID: "1"}}, nil)
		repo.EXPECT().Count(gomock.Any(), uid, "rain").Return(int64(120), nil)
		page, err := serv.List(context.Background(), uid, service.ListEntriesOpts{
			Page:   -3,
			Limit:  500,
			Search: " rain ",
			Sort:   "bogus",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Pagination.CurrentPage)
		assert.Equal(t, 3, page.Pagination.TotalPages)
		assert.Equal(t, int64(120), page.Pagination.TotalEntries)
		assert.True(t, page.Pagination.HasNextPage)
		assert.False(t, page.Pagination.HasPrevPage)
		assert.Equal(t, repository.SortNewest, page.Filters.Sort)
	})
	t.Run("second page", func(t *testing.T) {
		repo.EXPECT().Find(gomock.Any(), uid, repository.FindOpts{
			Sort:   repository.SortTitle,
			Limit:  10,
			Offset: 10,
		}).Return(nil, nil)
		repo.EXPECT().Count(gomock.Any(), uid, "").Return(int64(11), nil)
		page, err := serv.List(context.Background(), uid, service.ListEntriesOpts{Page: 2, Sort: repository.SortTitle})
		require.NoError(t, err)
		assert.NotNil(t, page.Entries)
		assert.Equal(t, 2, page.Pagination.TotalPages)
		assert.False(t, page.Pagination.HasNextPage)
		assert.True(t, page.Pagination.HasPrevPage)
	})
	t.Run("page past the end is clamped to the last page", func(t *testing.T) {
		repo.EXPECT().Count(gomock.Any(), uid, "").Return(int64(25), nil)
		repo.EXPECT().Find(gomock.Any(), uid, repository.FindOpts{
			Sort:   repository.SortNewest,
			Limit:  10,
			Offset: 20,
		}).Return([]*entity.Entry{{ID: "21"}}, nil)
		page, err := serv.List(context.Background(), uid, service.ListEntriesOpts{Page: math.MaxInt})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Pagination.CurrentPage)
		assert.False(t, page.Pagination.HasNextPage)
		assert.True(t, page.Pagination.HasPrevPage)
	})
	t.Run("any page of an empty journal is the first", func(t *testing.T) {
		repo.EXPECT().Count(gomock.Any(), uid, "").Return(int64(0), nil)
		repo.EXPECT().Find(gomock.Any(), uid, repository.FindOpts{
			Sort:   repository.SortNewest,
			Limit:  10,
			Offset: 0,
		}).Return(nil, nil)
		page, err := serv.List(context.Background(), uid, service.ListEntriesOpts{Page: 7})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Pagination.CurrentPage)
		assert.Equal(t, 0, page.Pagination.TotalPages)
		assert.Empty(t, page.Entries)
	})
	t.Run("count error", func(t *testing.T) {
		repo.EXPECT().Count(gomock.Any(), uid, "").Return(int64(0), errors.New("db error"))
		_, err := serv.List(context.Background(), uid, service.ListEntriesOpts{})
		assert.Error(t, err)
	})
	t.Run("find error", func(t *testing.T) {
		repo.EXPECT().Count(gomock.Any(), uid, "").Return(int64(3), nil)
		repo.EXPECT().Find(gomock.Any(), uid, gomock.Any()).Return(nil, errors.New("db error"))
		_, err := serv.List(context.Background(), uid, service.ListEntriesOpts{})
		assert.Error(t, err)
	})
}

func TestUpdateEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockEntriesRepositoryI(ctrl)
	serv := newEntriesService(repo)
	uid := uuid.New()
	title := "New title"
	blank := "  "
	stored := func(owner uuid.UUID) *entity.Entry {
		return &entity.Entry{
			ID:        "e1",
			OwnerID:   owner,
			Title:     "Old title",
			Content:   "Old content",
			CreatedAt: fixedNow.Add(-48 * time.Hour),
			UpdatedAt: fixedNow.Add(-48 * time.Hour),
		}
	}

	testCases := []struct {
		Desc         string
		Error        error
		Req          service.UpdateEntryRequest
		MockPrepFunc func()
	}{
		{
			Desc: "success",
			Req:  service.UpdateEntryRequest{Title: &title},
			MockPrepFunc: func() {
				repo.EXPECT().GetByID(gomock.Any(), "e1").Return(stored(uid), nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			Desc:         "empty update",
			Error:        errorvalues.ErrEmptyUpdate,
			Req:          service.UpdateEntryRequest{},
			MockPrepFunc: func() {},
		},
		{
			Desc:         "blank title",
			Error:        errorvalues.ErrValidation,
			Req:          service.UpdateEntryRequest{Title: &blank},
			MockPrepFunc: func() {},
		},
		{
			Desc:  "wrong owner",
			Error: errorvalues.ErrWrongOwner,
			Req:   service.UpdateEntryRequest{Title: &title},
			MockPrepFunc: func() {
				repo.EXPECT().GetByID(gomock.Any(), "e1").Return(stored(uuid.New()), nil)
			},
		},
		{
			Desc:  "not found",
			Error: errorvalues.ErrEntryNotFound,
			Req:   service.UpdateEntryRequest{Title: &title},
			MockPrepFunc: func() {
				repo.EXPECT().GetByID(gomock.Any(), "e1").Return(nil, errorvalues.ErrEntryNotFound)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			req := tc.Req
			res, err := serv.Update(context.Background(), uid, "e1", &req)
			if tc.Error != nil {
				assert.ErrorIs(t, err, tc.Error)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, title, res.Title)
			assert.Equal(t, "Old content", res.Content)
			assert.Equal(t, fixedNow, res.UpdatedAt)
			assert.True(t, res.CreatedAt.Before(res.UpdatedAt))
		})
	}
}

func TestDeleteEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockEntriesRepositoryI(ctrl)
	serv := newEntriesService(repo)
	uid := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), "e1").Return(&entity.Entry{ID: "e1", OwnerID: uid}, nil)
		repo.EXPECT().Delete(gomock.Any(), "e1").Return(nil)
		assert.NoError(t, serv.Delete(context.Background(), uid, "e1"))
	})
	t.Run("wrong owner", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), "e1").Return(&entity.Entry{ID: "e1", OwnerID: uuid.New()}, nil)
		assert.ErrorIs(t, serv.Delete(context.Background(), uid, "e1"), errorvalues.ErrWrongOwner)
	})
	t.Run("not found", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), "nope").Return(nil, errorvalues.ErrEntryNotFound)
		assert.ErrorIs(t, serv.Delete(context.Background(), uid, "nope"), errorvalues.ErrEntryNotFound)
	})
}

func TestLogMood(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockEntriesRepositoryI(ctrl)
	serv := newEntriesService(repo)
	uid := uuid.New()

	t.Run("without note", func(t *testing.T) {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return("m1", nil)
		res, err := serv.LogMood(context.Background(), uid, &service.LogMoodRequest{Mood: "Happy"})
		require.NoError(t, err)
		assert.Equal(t, "Mood Check - 2025-03-15", res.Title)
		assert.Equal(t, "Feeling happy today.", res.Content)
	})
	t.Run("with note", func(t *testing.T) {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return("m2", nil)
		res, err := serv.LogMood(context.Background(), uid, &service.LogMoodRequest{Mood: "calm", Note: " quiet walk "})
		require.NoError(t, err)
		assert.Equal(t, "quiet walk", res.Content)
	})
	t.Run("invalid mood", func(t *testing.T) {
		_, err := serv.LogMood(context.Background(), uid, &service.LogMoodRequest{Mood: "ecstatic"})
		assert.ErrorIs(t, err, errorvalues.ErrInvalidMood)
	})
	t.Run("title uses configured timezone", func(t *testing.T) {
		tokyo, err := time.LoadLocation("Asia/Tokyo")
		require.NoError(t, err)
		s := service.NewEntriesService(repo, tokyo, service.WithEntriesClock(func() time.Time { return fixedNow }))
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return("m3", nil)
		res, err := s.LogMood(context.Background(), uid, &service.LogMoodRequest{Mood: "tired"})
		require.NoError(t, err)
		assert.Equal(t, "Mood Check - 2025-03-16", res.Title)
	})
}
