// internal/workers/report/holistic-rescore/handler_test.go
package holisticrescore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"verification-workers/internal/common/logger"
	"verification-workers/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, baseURL string) *Handler {
	t.Helper()
	cfg := &Config{
		Timeout: 10 * time.Second,
		AI: scoring.HolisticConfig{
			BaseURL:    baseURL,
			Model:      "test-model",
			Timeout:    5 * time.Second,
			MaxRetries: 1,
			RetryDelay: time.Millisecond,
		},
	}
	return NewHandler(cfg, logger.NewTestLogger(t))
}

func aiServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": reply})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExecuteUnconfiguredServiceDegrades(t *testing.T) {
	h := newTestHandler(t, "")

	output, err := h.Execute(context.Background(), &Input{
		ReportID:   "rep-100",
		ReportText: "Applicant runs a trading business.",
	})
	require.NoError(t, err)

	assert.Equal(t, scoring.ErrAINotConfigured, output.ErrorTag)
	assert.Zero(t, output.Total)
	assert.Len(t, output.Warnings, 7)
}

func TestExecuteHappyPath(t *testing.T) {
	srv := aiServer(t, `{"scores":{"personal":12,"business":20,"banking":9,"networth":5,"debt":10,"endUse":7,"references":4},"matches":{"personal":{"dobDocumented":true}},"rationale":"well documented file"}`)
	h := newTestHandler(t, srv.URL)

	output, err := h.Execute(context.Background(), &Input{
		ReportID:   "rep-101",
		Draft:      map[string]interface{}{"personal": map[string]interface{}{"dateOfBirth": "1985-02-11"}},
		ReportText: "Applicant verified at residence.",
	})
	require.NoError(t, err)

	assert.Equal(t, strategyName, output.Strategy)
	assert.Empty(t, output.ErrorTag)
	assert.InDelta(t, 67.0, output.Total, 0.001)
	assert.Equal(t, "well documented file", output.Rationale)
	assert.True(t, output.Matches["personal"]["dobDocumented"])
}

func TestExecuteUnusableResponseDegrades(t *testing.T) {
	srv := aiServer(t, "I could not evaluate this applicant.")
	h := newTestHandler(t, srv.URL)

	output, err := h.Execute(context.Background(), &Input{
		ReportID:   "rep-102",
		ReportText: "short report",
	})
	require.NoError(t, err)

	assert.Contains(t, output.ErrorTag, "SCORING_FAILED")
	assert.Zero(t, output.Total)
}

func TestExecuteRequiresReportID(t *testing.T) {
	h := newTestHandler(t, "")

	_, err := h.Execute(context.Background(), &Input{ReportText: "text"})
	assert.Error(t, err)
}
