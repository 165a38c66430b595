package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	errorvalues "github.com/limbo/zenjournal/internal/error_values"
	"github.com/limbo/zenjournal/internal/repository"
	"github.com/limbo/zenjournal/internal/service"
	"github.com/limbo/zenjournal/pkg/httputil"
)

type CreateEntryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdateEntryRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type LogMoodRequest struct {
	Mood string `json:"mood"`
	Note string `json:"note"`
}

// queryInt returns 0 for a missing or malformed parameter.
func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

func (s *Server) CreateEntry(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create entry error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateEntryRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create entry error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	entry, err := s.entriesService.Create(ctx, uid, &service.CreateEntryRequest{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("create entry error: invalid data", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "title and content are required", err)
		default:
			logger.Error("create entry error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating entry", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, entry)
	logger.Info("entry created", slog.String("entry_id", entry.ID))
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request, defaultLimit int) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get entries error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	limit := queryInt(r, "limit")
	if limit < 1 {
		limit = defaultLimit
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	page, err := s.entriesService.List(ctx, uid, service.ListEntriesOpts{
		Page:   queryInt(r, "page"),
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
		Sort:   repository.EntrySort(r.URL.Query().Get("sort")),
	})
	if err != nil {
		logger.Error("getting entries list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting entries list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, page)
	logger.Info("entries provided")
}

func (s *Server) ListEntries(w http.ResponseWriter, r *http.Request) {
	s.listEntries(w, r, service.DefaultPageLimit)
}

func (s *Server) RecentEntries(w http.ResponseWriter, r *http.Request) {
	s.listEntries(w, r, service.DefaultRecentLimit)
}

func (s *Server) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("entry update error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		logger.Error("entry update error: empty id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid entry id in path value", nil)
		return
	}
	var req UpdateEntryRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("entry update error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	entry, err := s.entriesService.Update(ctx, uid, id, &service.UpdateEntryRequest{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrEmptyUpdate), errors.Is(err, errorvalues.ErrValidation):
			logger.Error("entry update error: invalid data", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid entry data", err)
		case errors.Is(err, errorvalues.ErrEntryNotFound):
			logger.Error("entry update error: unexist entry")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "entry doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongOwner):
			logger.Error("entry update error: entry has different owner")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "entry doesn't exist", nil)
		default:
			logger.Error("entry update error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating entry", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, entry)
	logger.Info("entry updated", slog.String("entry_id", entry.ID))
}

func (s *Server) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("entry deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		logger.Error("entry deletion error: empty id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid entry id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.entriesService.Delete(ctx, uid, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrEntryNotFound):
			logger.Error("entry deletion error: unexist entry")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "entry doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongOwner):
			logger.Error("entry deletion error: entry has different owner")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "entry doesn't exist", nil)
		default:
			logger.Error("entry deletion error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting entry", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"message": "entry deleted"})
	logger.Info("entry deleted", slog.String("entry_id", id))
}

func (s *Server) LogMood(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("mood log error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req LogMoodRequest
	defer r.Body.Close()
	if err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("mood log error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	entry, err := s.entriesService.LogMood(ctx, uid, &service.LogMoodRequest{
		Mood: req.Mood,
		Note: req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrInvalidMood):
			logger.Error("mood log error: invalid mood", slog.String("mood", req.Mood))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid mood value", err)
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("mood log error: invalid data", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid mood log data", err)
		default:
			logger.Error("mood log error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while logging mood", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, entry)
	logger.Info("mood logged", slog.String("entry_id", entry.ID))
}
