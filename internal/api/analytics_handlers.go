package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	errorvalues "github.com/limbo/zenjournal/internal/error_values"
	"github.com/limbo/zenjournal/pkg/httputil"
)

func writeAnalyticsError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	if errors.Is(err, errorvalues.ErrUnauthenticated) {
		logger.Error(op + " error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	logger.Error(op+" error: service error", slog.String("error", err.Error()))
	httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while building "+op, nil)
}

func (s *Server) Overview(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeAnalyticsError(w, logger, "overview", errorvalues.ErrUnauthenticated)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	ov, err := s.analyticsService.Overview(ctx, uid)
	if err != nil {
		writeAnalyticsError(w, logger, "overview", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, ov)
}

func (s *Server) Trends(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeAnalyticsError(w, logger, "trends", errorvalues.ErrUnauthenticated)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	tr, err := s.analyticsService.Trends(ctx, uid, queryInt(r, "period"))
	if err != nil {
		writeAnalyticsError(w, logger, "trends", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, tr)
}

func (s *Server) Activity(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeAnalyticsError(w, logger, "activity", errorvalues.ErrUnauthenticated)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	days, err := s.analyticsService.Activity(ctx, uid)
	if err != nil {
		writeAnalyticsError(w, logger, "activity", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"activity": days})
}

func (s *Server) MoodCalendar(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeAnalyticsError(w, logger, "calendar", errorvalues.ErrUnauthenticated)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	cal, err := s.analyticsService.Calendar(ctx, uid, queryInt(r, "month"), queryInt(r, "year"))
	if err != nil {
		writeAnalyticsError(w, logger, "calendar", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, cal)
}

func (s *Server) MoodStats(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeAnalyticsError(w, logger, "stats", errorvalues.ErrUnauthenticated)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	st, err := s.analyticsService.Stats(ctx, uid, queryInt(r, "days"))
	if err != nil {
		writeAnalyticsError(w, logger, "stats", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, st)
}

// The request context is passed on so the model call stops when the client leaves.
func (s *Server) MoodInsights(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		writeAnalyticsError(w, logger, "insights", errorvalues.ErrUnauthenticated)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*30)
	defer cancel()
	res, err := s.insightsService.Insights(ctx, uid)
	if err != nil {
		writeAnalyticsError(w, logger, "insights", err)
		return
	}
	if res.UpstreamErr != nil {
		logger.Warn("insights served from fallback", slog.String("error", res.UpstreamErr.Error()))
	}
	httputil.WriteJSONResponse(w, http.StatusOK, res)
	logger.Info("insights provided", slog.String("source", string(res.Source)))
}
