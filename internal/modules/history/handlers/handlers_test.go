package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/fundnav/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	points []domain.NAVPoint
	err    error
}

func (s stubProvider) Series(_ context.Context, _ domain.FundID) ([]domain.NAVPoint, error) {
	return s.points, s.err
}

func get(t *testing.T, provider domain.HistoryProvider) []interface{} {
	router := chi.NewRouter()
	router.Route("/api", NewHandler(provider, zerolog.Nop()).RegisterRoutes)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/history/161725", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response["data"].([]interface{})
}

func TestHandleGetHistory(t *testing.T) {
	provider := stubProvider{points: []domain.NAVPoint{
		{Date: "2024-01-15", NAV: decimal.RequireFromString("1.0211")},
		{Date: "2024-01-16", NAV: decimal.RequireFromString("1.0234")},
	}}

	data := get(t, provider)
	require.Len(t, data, 2)
	last := data[1].(map[string]interface{})
	assert.Equal(t, "2024-01-16", last["date"])
	assert.InDelta(t, 1.0234, last["value"], 1e-9)
}

func TestHandleGetHistory_CapsAt365(t *testing.T) {
	points := make([]domain.NAVPoint, 500)
	for i := range points {
		points[i] = domain.NAVPoint{Date: "d", NAV: decimal.NewFromInt(1)}
	}

	assert.Len(t, get(t, stubProvider{points: points}), 365)
}

func TestHandleGetHistory_UnavailableIsEmpty(t *testing.T) {
	assert.Empty(t, get(t, stubProvider{err: errors.New("down")}))
}

type recordingProvider struct {
	calls int
}

func (p *recordingProvider) Series(_ context.Context, _ domain.FundID) ([]domain.NAVPoint, error) {
	p.calls++
	return nil, nil
}

func TestHandleGetHistory_RejectsMalformedCode(t *testing.T) {
	provider := &recordingProvider{}
	router := chi.NewRouter()
	router.Route("/api", NewHandler(provider, zerolog.Nop()).RegisterRoutes)

	for _, path := range []string{"/api/history/16172", "/api/history/..%2Fjs", "/api/history/161725%3Fv=1"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	assert.Zero(t, provider.calls)
}
