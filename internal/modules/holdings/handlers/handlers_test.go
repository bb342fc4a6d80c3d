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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	snapshot *domain.HoldingsSnapshot
	err      error
}

func (s stubProvider) Get(_ context.Context, _ domain.FundID) (*domain.HoldingsSnapshot, error) {
	return s.snapshot, s.err
}

func serve(t *testing.T, provider domain.HoldingsProvider, path string) map[string]interface{} {
	router := chi.NewRouter()
	router.Route("/api", NewHandler(provider, zerolog.Nop()).RegisterRoutes)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response["data"].(map[string]interface{})
}

func TestHandleGetFund(t *testing.T) {
	provider := stubProvider{snapshot: &domain.HoldingsSnapshot{
		FundID: "110011",
		Period: "2024年4季度",
		Entries: []domain.HoldingEntry{
			{InstrumentID: "600519", Name: "贵州茅台", WeightPercent: 9.95},
		},
	}}

	data := serve(t, provider, "/api/fund/110011")
	assert.Equal(t, "110011", data["code"])
	assert.Equal(t, "2024年4季度", data["period"])

	holdings := data["holdings"].([]interface{})
	require.Len(t, holdings, 1)
	assert.Equal(t, "600519", holdings[0].(map[string]interface{})["instrumentId"])
}

func TestHandleGetFund_UnavailableIsEmpty(t *testing.T) {
	data := serve(t, stubProvider{err: errors.New("down")}, "/api/fund/110011")
	assert.Equal(t, []interface{}{}, data["holdings"])
}

type recordingProvider struct {
	calls int
}

func (p *recordingProvider) Get(_ context.Context, _ domain.FundID) (*domain.HoldingsSnapshot, error) {
	p.calls++
	return &domain.HoldingsSnapshot{}, nil
}

func TestHandleGetFund_RejectsMalformedCode(t *testing.T) {
	provider := &recordingProvider{}
	router := chi.NewRouter()
	router.Route("/api", NewHandler(provider, zerolog.Nop()).RegisterRoutes)

	for _, path := range []string{"/api/fund/11001", "/api/fund/abc123", "/api/fund/110011%26x=1"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	assert.Zero(t, provider.calls)
}
