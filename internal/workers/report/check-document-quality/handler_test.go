// internal/workers/report/check-document-quality/handler_test.go
package checkdocumentquality

import (
	"context"
	"strings"
	"testing"
	"time"

	"verification-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	cfg := &Config{
		Timeout:          5 * time.Second,
		MinReportLength:  100,
		RequiredSections: []string{"personal", "business", "banking"},
	}
	return NewHandler(cfg, logger.NewTestLogger(t))
}

func completeDraft() map[string]interface{} {
	return map[string]interface{}{
		"personal": map[string]interface{}{"selfEducation": "Graduate"},
		"business": map[string]interface{}{"name": "Sharma Traders"},
		"banking":  map[string]interface{}{"bankName": "State Bank"},
	}
}

func TestExecuteCompleteDocument(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		ReportID:   "rep-300",
		ReportText: strings.Repeat("Verification detail. ", 10),
		Draft:      completeDraft(),
		Decision:   "recommended",
		ReportDate: "2025-06-14",
	})
	require.NoError(t, err)

	assert.True(t, output.Acceptable)
	assert.InDelta(t, 100.0, output.QualityScore, 0.001)
	assert.Empty(t, output.Issues)
}

func TestExecuteDecisionAndDateFromText(t *testing.T) {
	h := newTestHandler(t)

	text := strings.Repeat("Field visit detail. ", 10) +
		"The applicant is recommended for sanction. Report prepared on 14/03/2025."

	output, err := h.Execute(context.Background(), &Input{
		ReportID:   "rep-301",
		ReportText: text,
		Draft:      completeDraft(),
	})
	require.NoError(t, err)

	assert.True(t, output.Acceptable)
}

func TestExecuteShortTextFlagged(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		ReportID:   "rep-302",
		ReportText: "Too short.",
		Draft:      completeDraft(),
		Decision:   "approved",
		ReportDate: "2025-06-14",
	})
	require.NoError(t, err)

	assert.False(t, output.Acceptable)
	require.Len(t, output.Issues, 1)
	assert.Contains(t, output.Issues[0], "below 100 characters")
	// 5 of 6 checks pass.
	assert.InDelta(t, 83.33, output.QualityScore, 0.01)
}

func TestExecuteMissingSections(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		ReportID:   "rep-303",
		ReportText: strings.Repeat("Verification detail. ", 10),
		Draft: map[string]interface{}{
			"personal": map[string]interface{}{"selfEducation": "Graduate"},
			"business": map[string]interface{}{},
		},
		Decision:   "rejected",
		ReportDate: "2025-06-14",
	})
	require.NoError(t, err)

	assert.False(t, output.Acceptable)
	assert.Contains(t, output.Issues, "missing required section: business")
	assert.Contains(t, output.Issues, "missing required section: banking")
}

func TestExecuteNoDecisionNoDate(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		ReportID:   "rep-304",
		ReportText: strings.Repeat("Neutral narrative without any verdict. ", 5),
		Draft:      completeDraft(),
	})
	require.NoError(t, err)

	assert.False(t, output.Acceptable)
	assert.Contains(t, output.Issues, "no verification decision recorded")
	assert.Contains(t, output.Issues, "no report date found")
}

func TestExecuteRequiresReportID(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{ReportText: "text"})
	assert.Error(t, err)
}
