package httputil_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/limbo/zenjournal/pkg/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	httputil.WriteErrorResponse(rr, http.StatusBadRequest, "invalid request body", errors.New("unexpected EOF"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var resp httputil.ErrorResponse
	require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, httputil.ErrorResponse{Code: 400, Message: "invalid request body", Details: "unexpected EOF"}, resp)
}

func TestWriteJSONResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	httputil.WriteJSONResponse(rr, http.StatusCreated, map[string]any{"id": "abc"})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":"abc"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	httputil.WriteJSONResponse(rr, http.StatusNoContent, nil)
	assert.Empty(t, rr.Body.String())
}

func TestWriteJSONResponseSortsMapKeys(t *testing.T) {
	body := map[string]any{
		"mood_distribution": map[string]int{"tired": 1, "happy": 2, "sad": 0, "calm": 4, "angry": 3},
		"total_entries":     10,
	}
	expected := `{"mood_distribution":{"angry":3,"calm":4,"happy":2,"sad":0,"tired":1},"total_entries":10}`
	for i := 0; i < 20; i++ {
		rr := httptest.NewRecorder()
		httputil.WriteJSONResponse(rr, http.StatusOK, body)
		assert.Equal(t, expected, strings.TrimSpace(rr.Body.String()))
	}
}

func TestWriteAttachment(t *testing.T) {
	rr := httptest.NewRecorder()
	httputil.WriteAttachment(rr, "text/csv", "entries.csv", []byte("a,b\n"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="entries.csv"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", rr.Body.String())
}
