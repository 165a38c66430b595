package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang/mock/gomock"
	"github.com/limbo/zenjournal/internal/analytics"
	"github.com/limbo/zenjournal/internal/api"
	errorvalues "github.com/limbo/zenjournal/internal/error_values"
	"github.com/limbo/zenjournal/internal/mood"
	"github.com/limbo/zenjournal/internal/repository"
	"github.com/limbo/zenjournal/internal/service"
	"github.com/limbo/zenjournal/internal/service/mocks"
	"github.com/limbo/zenjournal/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry() *entity.Entry {
	created := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)
	return &entity.Entry{
		ID:        "65f4a1c2e13f4b0a9c1d2e3f",
		OwnerID:   userID,
		Title:     "Morning pages",
		Content:   "I feel calm and grateful",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestCreateEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	eService := mocks.NewMockEntriesServiceI(ctrl)
	serv := api.New(&api.ServicesList{EntriesService: eService})
	expectedReq := &service.CreateEntryRequest{Title: "Morning pages", Content: "I feel calm and grateful"}

	testCases := []struct {
		Desc         string
		ExpectedCode int
		Body         func() io.Reader
		Auth         bool
		MockPrepFunc func()
	}{
		{
			Desc:         "created",
			ExpectedCode: http.StatusCreated,
			Body:         func() io.Reader { return jsonBody(t, api.CreateEntryRequest{Title: "Morning pages", Content: "I feel calm and grateful"}) },
			Auth:         true,
			MockPrepFunc: func() {
				eService.EXPECT().Create(gomock.Any(), userID, expectedReq).Return(testEntry(), nil)
			},
		},
		{
			Desc:         "blank content",
			ExpectedCode: http.StatusBadRequest,
			Body:         func() io.Reader { return jsonBody(t, api.CreateEntryRequest{Title: "Morning pages", Content: "I feel calm and grateful"}) },
			Auth:         true,
			MockPrepFunc: func() {
				eService.EXPECT().Create(gomock.Any(), userID, expectedReq).Return(nil, errorvalues.ErrValidation)
			},
		},
		{
			Desc:         "service error",
			ExpectedCode: http.StatusInternalServerError,
			Body:         func() io.Reader { return jsonBody(t, api.CreateEntryRequest{Title: "Morning pages", Content: "I feel calm and grateful"}) },
			Auth:         true,
			MockPrepFunc: func() {
				eService.EXPECT().Create(gomock.Any(), userID, expectedReq).Return(nil, errors.New("mocked error"))
			},
		},
		{
			Desc:         "invalid body",
			ExpectedCode: http.StatusBadRequest,
			Body:         func() io.Reader { return strings.NewReader("{") },
			Auth:         true,
			MockPrepFunc: func() {},
		},
		{
			Desc:         "unauthorized",
			ExpectedCode: http.StatusUnauthorized,
			Body:         func() io.Reader { return http.NoBody },
			MockPrepFunc: func() {},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/journal", tc.Body())
			if tc.Auth {
				req = withUID(req, userID)
			}
			serv.CreateEntry(rr, req)
			assert.Equal(t, tc.ExpectedCode, rr.Result().StatusCode)
		})
	}
}

func TestListEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	eService := mocks.NewMockEntriesServiceI(ctrl)
	serv := api.New(&api.ServicesList{EntriesService: eService})
	page := &service.EntriesPage{
		Entries: []*entity.Entry{testEntry()},
		Pagination: service.Pagination{
			CurrentPage:    2,
			TotalPages:     3,
			TotalEntries:   25,
			EntriesPerPage: 10,
			HasNextPage:    true,
			HasPrevPage:    true,
		},
		Filters: service.EntryFilters{Search: "calm", Sort: repository.SortOldest},
	}

	t.Run("query parameters are passed through", func(t *testing.T) {
		eService.EXPECT().List(gomock.Any(), userID, service.ListEntriesOpts{
			Page:   2,
			Limit:  10,
			Search: "calm",
			Sort:   repository.SortOldest,
		}).Return(page, nil)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/journal?page=2&search=calm&sort=oldest", nil)
		serv.ListEntries(rr, withUID(req, userID))
		require.Equal(t, http.StatusOK, rr.Result().StatusCode)
		var resp service.EntriesPage
		require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&resp))
		assert.Len(t, resp.Entries, 1)
		assert.Equal(t, int64(25), resp.Pagination.TotalEntries)
		assert.True(t, resp.Pagination.HasNextPage)
	})
	t.Run("recent uses a larger default limit", func(t *testing.T) {
		eService.EXPECT().List(gomock.Any(), userID, service.ListEntriesOpts{
			Limit: service.DefaultRecentLimit,
		}).Return(&service.EntriesPage{Entries: []*entity.Entry{}}, nil)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/journal/recent", nil)
		serv.RecentEntries(rr, withUID(req, userID))
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	})
	t.Run("malformed numbers fall back to defaults", func(t *testing.T) {
		eService.EXPECT().List(gomock.Any(), userID, service.ListEntriesOpts{
			Limit: service.DefaultPageLimit,
		}).Return(&service.EntriesPage{Entries: []*entity.Entry{}}, nil)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/journal?page=abc&limit=-4", nil)
		serv.ListEntries(rr, withUID(req, userID))
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	})
	t.Run("service error", func(t *testing.T) {
		eService.EXPECT().List(gomock.Any(), userID, gomock.Any()).Return(nil, errors.New("mocked error"))
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/journal", nil)
		serv.ListEntries(rr, withUID(req, userID))
		assert.Equal(t, http.StatusInternalServerError, rr.Result().StatusCode)
	})
}

func TestUpdateEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	eService := mocks.NewMockEntriesServiceI(ctrl)
	serv := api.New(&api.ServicesList{EntriesService: eService})
	id := testEntry().ID
	title := "Evening pages"

	testCases := []struct {
		Desc         string
		ExpectedCode int
		PathID       string
		MockPrepFunc func()
	}{
		{
			Desc:         "updated",
			ExpectedCode: http.StatusOK,
			PathID:       id,
			MockPrepFunc: func() {
				updated := testEntry()
				updated.Title = title
				eService.EXPECT().Update(gomock.Any(), userID, id, &service.UpdateEntryRequest{Title: &title}).Return(updated, nil)
			},
		},
		{
			Desc:         "entry not found",
			ExpectedCode: http.StatusNotFound,
			PathID:       id,
			MockPrepFunc: func() {
				eService.EXPECT().Update(gomock.Any(), userID, id, gomock.Any()).Return(nil, errorvalues.ErrEntryNotFound)
			},
		},
		{
			Desc:         "foreign entry looks missing",
			ExpectedCode: http.StatusNotFound,
			PathID:       id,
			MockPrepFunc: func() {
				eService.EXPECT().Update(gomock.Any(), userID, id, gomock.Any()).Return(nil, errorvalues.ErrWrongOwner)
			},
		},
		{
			Desc:         "empty update",
			ExpectedCode: http.StatusBadRequest,
			PathID:       id,
			MockPrepFunc: func() {
				eService.EXPECT().Update(gomock.Any(), userID, id, gomock.Any()).Return(nil, errorvalues.ErrEmptyUpdate)
			},
		},
		{
			Desc:         "no id",
			ExpectedCode: http.StatusBadRequest,
			MockPrepFunc: func() {},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/api/v1/journal/"+tc.PathID, jsonBody(t, api.UpdateEntryRequest{Title: &title}))
			req.SetPathValue("id", tc.PathID)
			serv.UpdateEntry(rr, withUID(req, userID))
			assert.Equal(t, tc.ExpectedCode, rr.Result().StatusCode)
		})
	}
}

func TestDeleteEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	eService := mocks.NewMockEntriesServiceI(ctrl)
	serv := api.New(&api.ServicesList{EntriesService: eService})
	id := testEntry().ID

	testCases := []struct {
		Desc         string
		ExpectedCode int
		Err          error
	}{
		{Desc: "deleted", ExpectedCode: http.StatusOK},
		{Desc: "entry not found", ExpectedCode: http.StatusNotFound, Err: errorvalues.ErrEntryNotFound},
		{Desc: "foreign entry", ExpectedCode: http.StatusNotFound, Err: errorvalues.ErrWrongOwner},
		{Desc: "service error", ExpectedCode: http.StatusInternalServerError, Err: errors.New("mocked error")},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			eService.EXPECT().Delete(gomock.Any(), userID, id).Return(tc.Err)
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/journal/"+id, nil)
			req.SetPathValue("id", id)
			serv.DeleteEntry(rr, withUID(req, userID))
			assert.Equal(t, tc.ExpectedCode, rr.Result().StatusCode)
		})
	}
}

func TestLogMood(t *testing.T) {
	ctrl := gomock.NewController(t)
	eService := mocks.NewMockEntriesServiceI(ctrl)
	serv := api.New(&api.ServicesList{EntriesService: eService})

	testCases := []struct {
		Desc         string
		ExpectedCode int
		Mood         string
		Err          error
	}{
		{Desc: "logged", ExpectedCode: http.StatusCreated, Mood: "happy"},
		{Desc: "unknown mood", ExpectedCode: http.StatusBadRequest, Mood: "furious", Err: errorvalues.ErrInvalidMood},
		{Desc: "note too long", ExpectedCode: http.StatusBadRequest, Mood: "calm", Err: errorvalues.ErrValidation},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			var entry *entity.Entry
			if tc.Err == nil {
				entry = testEntry()
				entry.Title = "Mood Check - 2025-03-15"
				entry.Content = "Feeling happy today."
			}
			eService.EXPECT().LogMood(gomock.Any(), userID, &service.LogMoodRequest{Mood: tc.Mood}).Return(entry, tc.Err)
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/mood/log", jsonBody(t, api.LogMoodRequest{Mood: tc.Mood}))
			serv.LogMood(rr, withUID(req, userID))
			assert.Equal(t, tc.ExpectedCode, rr.Result().StatusCode)
		})
	}
}

func TestAnalyticsHandlers(t *testing.T) {
	ctrl := gomock.NewController(t)
	aService := mocks.NewMockAnalyticsServiceI(ctrl)
	serv := api.New(&api.ServicesList{AnalyticsService: aService})

	t.Run("overview", func(t *testing.T) {
		aService.EXPECT().Overview(gomock.Any(), userID).Return(&analytics.Overview{
			TotalEntries:          3,
			CurrentStreak:         2,
			LongestStreak:         2,
			MostProductiveDayName: "Saturday",
		}, nil)
		rr := httptest.NewRecorder()
		serv.Overview(rr, withUID(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/overview", nil), userID))
		require.Equal(t, http.StatusOK, rr.Result().StatusCode)
		var resp analytics.Overview
		require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, 3, resp.TotalEntries)
		assert.Equal(t, "Saturday", resp.MostProductiveDayName)
	})
	t.Run("distribution keys are sorted", func(t *testing.T) {
		dist := analytics.Distribution{mood.Tired: 1, mood.Happy: 2, mood.Calm: 0, mood.Angry: 3}
		for range 10 {
			aService.EXPECT().Overview(gomock.Any(), userID).Return(&analytics.Overview{MoodDistribution: dist}, nil)
			rr := httptest.NewRecorder()
			serv.Overview(rr, withUID(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/overview", nil), userID))
			assert.Contains(t, rr.Body.String(), `"mood_distribution":{"angry":3,"calm":0,"happy":2,"tired":1}`)
		}
	})
	t.Run("trends period", func(t *testing.T) {
		aService.EXPECT().Trends(gomock.Any(), userID, 7).Return(&analytics.Trends{Days: 7}, nil)
		rr := httptest.NewRecorder()
		serv.Trends(rr, withUID(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/trends?period=7", nil), userID))
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	})
	t.Run("calendar month and year", func(t *testing.T) {
		aService.EXPECT().Calendar(gomock.Any(), userID, 3, 2025).Return(&analytics.Calendar{
			Days:         []analytics.CalendarDay{{Date: "2025-03-15", Mood: mood.Happy, HasEntry: true}},
			TotalEntries: 1,
		}, nil)
		rr := httptest.NewRecorder()
		serv.MoodCalendar(rr, withUID(httptest.NewRequest(http.MethodGet, "/api/v1/mood/calendar?month=3&year=2025", nil), userID))
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	})
	t.Run("stats without days", func(t *testing.T) {
		aService.EXPECT().Stats(gomock.Any(), userID, 0).Return(&analytics.Stats{Days: 30, DominantMood: mood.Neutral}, nil)
		rr := httptest.NewRecorder()
		serv.MoodStats(rr, withUID(httptest.NewRequest(http.MethodGet, "/api/v1/mood/stats", nil), userID))
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	})
	t.Run("activity", func(t *testing.T) {
		aService.EXPECT().Activity(gomock.Any(), userID).Return([]analytics.ActivityDay{{Date: "2025-03-15", Count: 2, WordCount: 9}}, nil)
		rr := httptest.NewRecorder()
		serv.Activity(rr, withUID(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/activity", nil), userID))
		require.Equal(t, http.StatusOK, rr.Result().StatusCode)
		var resp struct {
			Activity []analytics.ActivityDay `json:"activity"`
		}
		require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&resp))
		require.Len(t, resp.Activity, 1)
		assert.Equal(t, 9, resp.Activity[0].WordCount)
	})
	t.Run("service error", func(t *testing.T) {
		aService.EXPECT().Overview(gomock.Any(), userID).Return(nil, errors.New("mocked error"))
		rr := httptest.NewRecorder()
		serv.Overview(rr, withUID(httptest.NewRequest(http.MethodGet, "/api/v1/analytics/overview", nil), userID))
		assert.Equal(t, http.StatusInternalServerError, rr.Result().StatusCode)
	})
	t.Run("unauthorized", func(t *testing.T) {
		rr := httptest.NewRecorder()
		serv.MoodStats(rr, httptest.NewRequest(http.MethodGet, "/api/v1/mood/stats", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Result().StatusCode)
	})
}

func TestMoodInsights(t *testing.T) {
	ctrl := gomock.NewController(t)
	iService := mocks.NewMockInsightsServiceI(ctrl)
	limiter := mocks.NewMockLimiterI(ctrl)
	serv := api.New(&api.ServicesList{InsightsService: iService, InsightsLimiter: limiter})
	handler := serv.InsightsLimitMiddleware(http.HandlerFunc(serv.MoodInsights))
	key := "insights:" + userID.String()

	testCases := []struct {
		Desc         string
		ExpectedCode int
		Source       service.InsightSource
		MockPrepFunc func()
	}{
		{
			Desc:         "ai insights",
			ExpectedCode: http.StatusOK,
			Source:       service.SourceAI,
			MockPrepFunc: func() {
				limiter.EXPECT().Allow(gomock.Any(), key).Return(true, nil)
				iService.EXPECT().Insights(gomock.Any(), userID).Return(&service.Insights{
					Insights:       "You have been calm lately.",
					Source:         service.SourceAI,
					TotalEntries:   4,
					AnalyzedPeriod: "30 days",
				}, nil)
			},
		},
		{
			Desc:         "fallback still succeeds",
			ExpectedCode: http.StatusOK,
			Source:       service.SourceFallback,
			MockPrepFunc: func() {
				limiter.EXPECT().Allow(gomock.Any(), key).Return(true, nil)
				iService.EXPECT().Insights(gomock.Any(), userID).Return(&service.Insights{
					Insights:    "Keep writing.",
					Source:      service.SourceFallback,
					UpstreamErr: errorvalues.ErrUpstreamUnavailable,
				}, nil)
			},
		},
		{
			Desc:         "limited",
			ExpectedCode: http.StatusTooManyRequests,
			MockPrepFunc: func() {
				limiter.EXPECT().Allow(gomock.Any(), key).Return(false, nil)
			},
		},
		{
			Desc:         "limiter store down lets request through",
			ExpectedCode: http.StatusOK,
			Source:       service.SourceNone,
			MockPrepFunc: func() {
				limiter.EXPECT().Allow(gomock.Any(), key).Return(true, errors.New("redis down"))
				iService.EXPECT().Insights(gomock.Any(), userID).Return(&service.Insights{
					Source: service.SourceNone,
				}, nil)
			},
		},
		{
			Desc:         "service error",
			ExpectedCode: http.StatusInternalServerError,
			MockPrepFunc: func() {
				limiter.EXPECT().Allow(gomock.Any(), key).Return(true, nil)
				iService.EXPECT().Insights(gomock.Any(), userID).Return(nil, errors.New("mocked error"))
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/mood/insights", nil)
			handler.ServeHTTP(rr, withUID(req, userID))
			require.Equal(t, tc.ExpectedCode, rr.Result().StatusCode)
			if tc.ExpectedCode == http.StatusOK {
				var resp service.Insights
				require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tc.Source, resp.Source)
			}
		})
	}
}

func TestMoodInsightsWithoutLimiter(t *testing.T) {
	ctrl := gomock.NewController(t)
	iService := mocks.NewMockInsightsServiceI(ctrl)
	serv := api.New(&api.ServicesList{InsightsService: iService})
	handler := serv.InsightsLimitMiddleware(http.HandlerFunc(serv.MoodInsights))

	iService.EXPECT().Insights(gomock.Any(), userID).Return(&service.Insights{Source: service.SourceNone}, nil).Times(3)
	for range 3 {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/mood/insights", nil)
		handler.ServeHTTP(rr, withUID(req.WithContext(context.Background()), userID))
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	}
}
