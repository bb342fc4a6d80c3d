package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/fundnav/internal/modules/market_hours"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleGetStatus(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	handler := NewHandler(market_hours.NewDefaultClock(), logger)
	handler.now = func() time.Time {
		return time.Date(2024, 1, 16, 4, 0, 0, 0, time.UTC) // Tuesday 12:00 CST
	}

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)

	req := httptest.NewRequest("GET", "/api/market-hours/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "LUNCH_BREAK", data["phase"])
	assert.Equal(t, "XSHG", data["exchange"])
	assert.Equal(t, "12:00:00", data["local_time"])

	metadata := response["metadata"].(map[string]interface{})
	assert.Equal(t, true, metadata["session_started"])
}
