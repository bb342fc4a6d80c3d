package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/fundnav/internal/clients/gemini"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	text string
	err  error
}

func (s stubAnalyzer) Analyze(_ context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", gemini.ErrEmptyPrompt
	}
	return s.text, s.err
}

func TestHandleAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		analyzer stubAnalyzer
		body     string
		status   int
	}{
		{"ok", stubAnalyzer{text: "flat day"}, `{"prompt":"why?"}`, http.StatusOK},
		{"empty prompt", stubAnalyzer{}, `{"prompt":"  "}`, http.StatusBadRequest},
		{"bad body", stubAnalyzer{}, `{`, http.StatusBadRequest},
		{"not configured", stubAnalyzer{err: gemini.ErrNotConfigured}, `{"prompt":"x"}`, http.StatusBadRequest},
		{"upstream failure", stubAnalyzer{err: errors.New("quota")}, `{"prompt":"x"}`, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAnalyzeHandler(tt.analyzer, zerolog.Nop())
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.HandleAnalyze(w, req)
			require.Equal(t, tt.status, w.Code)

			if tt.status == http.StatusOK {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "flat day", resp["text"])
			}
		})
	}
}
