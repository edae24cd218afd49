// internal/workers/report/score-verification/handler_test.go
package scoreverification

import (
	"context"
	"testing"
	"time"

	"verification-workers/internal/common/config"
	"verification-workers/internal/common/database"
	"verification-workers/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, cache ResultCache) *Handler {
	t.Helper()
	cfg := &Config{
		Timeout:         10 * time.Second,
		DefaultStrategy: StrategyDeterministic,
		CacheTTL:        time.Minute,
	}
	return NewHandler(cfg, logger.NewTestLogger(t), cache)
}

func newTestCache(t *testing.T) ResultCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func structuredDraft() map[string]interface{} {
	return map[string]interface{}{
		"personal": map[string]interface{}{
			"selfEducation": "Graduate",
			"spouseName":    "Jane",
		},
		"banking": map[string]interface{}{
			"bankName":            "State Bank",
			"averageBalance":      "45,000",
			"turnoverCreditedPct": 65,
			"tenureMonths":        24,
			"statementsProvided":  true,
		},
	}
}

func TestExecuteDeterministicDraft(t *testing.T) {
	h := newTestHandler(t, nil)

	output, err := h.Execute(context.Background(), &Input{
		ReportID: "rep-001",
		Draft:    structuredDraft(),
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyDeterministic, output.Strategy)
	assert.Equal(t, "rep-001", output.ReportID)
	assert.InDelta(t, 3.0, output.Scores.Personal, 0.001)
	assert.InDelta(t, 15.0, output.Scores.Banking, 0.001)
	assert.False(t, output.FromCache)
	assert.Empty(t, output.ErrorTag)
}

func TestExecuteRequiresReportID(t *testing.T) {
	h := newTestHandler(t, nil)

	_, err := h.Execute(context.Background(), &Input{Draft: structuredDraft()})
	assert.Error(t, err)
}

func TestExecuteRejectsUnknownStrategy(t *testing.T) {
	h := newTestHandler(t, nil)

	_, err := h.Execute(context.Background(), &Input{
		ReportID: "rep-002",
		Draft:    structuredDraft(),
		Strategy: "holistic",
	})
	assert.Error(t, err)
}

func TestExecuteFallsBackToPatternWithoutDraft(t *testing.T) {
	h := newTestHandler(t, nil)

	output, err := h.Execute(context.Background(), &Input{
		ReportID:   "rep-003",
		ReportText: "Applicant is a graduate. Bank statements provided for account with State Bank.",
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyPattern, output.Strategy)
	assert.Contains(t, output.Warnings[0], "fell back to pattern scoring")
}

func TestExecutePatternStrategyExplicit(t *testing.T) {
	h := newTestHandler(t, nil)

	output, err := h.Execute(context.Background(), &Input{
		ReportID:   "rep-004",
		ReportText: "Bank statements provided. 65% of turnover is credited to the account. Banking relationship of 3 years.",
		Strategy:   StrategyPattern,
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyPattern, output.Strategy)
	assert.Greater(t, output.Scores.Banking, 0.0)
}

func TestExecuteCachesResult(t *testing.T) {
	h := newTestHandler(t, newTestCache(t))
	input := &Input{ReportID: "rep-005", Draft: structuredDraft()}

	first, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Scores, second.Scores)
}

func TestExecuteCacheKeyedByStrategy(t *testing.T) {
	h := newTestHandler(t, newTestCache(t))

	det, err := h.Execute(context.Background(), &Input{
		ReportID:   "rep-006",
		Draft:      structuredDraft(),
		ReportText: "Applicant is a graduate.",
	})
	require.NoError(t, err)

	pat, err := h.Execute(context.Background(), &Input{
		ReportID:   "rep-006",
		Draft:      structuredDraft(),
		ReportText: "Applicant is a graduate.",
		Strategy:   StrategyPattern,
	})
	require.NoError(t, err)

	assert.False(t, pat.FromCache, "pattern run must not read the deterministic entry")
	assert.NotEqual(t, det.Strategy, pat.Strategy)
}

func TestValidateDraftAdvisory(t *testing.T) {
	warnings := validateDraft(map[string]interface{}{
		"personal": "not an object",
	})
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "draft schema")

	assert.Empty(t, validateDraft(structuredDraft()))
}

func TestExecuteMalformedSectionStillScores(t *testing.T) {
	h := newTestHandler(t, nil)

	output, err := h.Execute(context.Background(), &Input{
		ReportID: "rep-007",
		Draft: map[string]interface{}{
			"personal": "not an object",
			"banking":  map[string]interface{}{"bankName": "HDFC"},
		},
	})
	require.NoError(t, err)

	// Schema warning is advisory; the mapper tolerates the bad section.
	assert.NotEmpty(t, output.Warnings)
	assert.Greater(t, output.Scores.Banking, 0.0)
}
