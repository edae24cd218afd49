// internal/workers/report/notify-review/handler_test.go
package notifyreview

import (
	"context"
	"errors"
	"testing"
	"time"

	stderrors "verification-workers/internal/common/errors"
	"verification-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmail struct {
	from, to, subject, body string
	err                     error
	calls                   int
}

func (f *fakeEmail) SendPlainEmail(_ context.Context, from, to, subject, body string) error {
	f.calls++
	f.from, f.to, f.subject, f.body = from, to, subject, body
	return f.err
}

type fakeSMS struct {
	phone, message, senderID string
	err                      error
	calls                    int
}

func (f *fakeSMS) SendSMS(_ context.Context, phoneNumber, message, senderID string) error {
	f.calls++
	f.phone, f.message, f.senderID = phoneNumber, message, senderID
	return f.err
}

func newTestHandler(t *testing.T, email EmailSender, sms SMSSender) *Handler {
	t.Helper()
	cfg := &Config{
		Timeout:         5 * time.Second,
		ReviewThreshold: 40,
		EmailEnabled:    true,
		FromEmail:       "noreply@example.com",
		ReviewTo:        "review@example.com",
		SMSEnabled:      true,
		SenderID:        "VERIFY",
	}
	return NewHandler(cfg, logger.NewTestLogger(t), email, sms)
}

func TestExecuteCleanResultNoNotification(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	h := newTestHandler(t, email, sms)

	output, err := h.Execute(context.Background(), &Input{
		ReportID: "rep-400",
		Strategy: "deterministic",
		Total:    82.5,
	})
	require.NoError(t, err)

	assert.False(t, output.Notified)
	assert.Empty(t, output.Reasons)
	assert.Zero(t, email.calls)
	assert.Zero(t, sms.calls)
}

func TestExecuteLowScoreSendsEmail(t *testing.T) {
	email := &fakeEmail{}
	h := newTestHandler(t, email, nil)

	output, err := h.Execute(context.Background(), &Input{
		ReportID: "rep-401",
		Strategy: "pattern",
		Total:    22.0,
		Warnings: []string{"no evidence found for category: debt"},
	})
	require.NoError(t, err)

	assert.True(t, output.Notified)
	assert.Equal(t, []string{"email"}, output.Channels)
	assert.Len(t, output.Reasons, 2)

	assert.Equal(t, 1, email.calls)
	assert.Equal(t, "review@example.com", email.to)
	assert.Contains(t, email.subject, "rep-401")
	assert.Contains(t, email.body, "total score 22.0 below review threshold 40.0")
	assert.Contains(t, email.body, "no evidence found for category: debt")
}

func TestExecuteDegradedResultSendsBothChannels(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	h := newTestHandler(t, email, sms)

	output, err := h.Execute(context.Background(), &Input{
		ReportID:      "rep-402",
		Strategy:      "holistic",
		Total:         0,
		ErrorTag:      "SCORING_FAILED: status 502",
		ReviewerPhone: "+919876543210",
	})
	require.NoError(t, err)

	assert.True(t, output.Notified)
	assert.Equal(t, []string{"email", "sms"}, output.Channels)

	assert.Equal(t, 1, sms.calls)
	assert.Equal(t, "+919876543210", sms.phone)
	assert.Equal(t, "VERIFY", sms.senderID)
	assert.Contains(t, sms.message, "scoring degraded")
}

func TestExecuteSMSSkippedWithoutPhone(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	h := newTestHandler(t, email, sms)

	output, err := h.Execute(context.Background(), &Input{
		ReportID: "rep-403",
		Total:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"email"}, output.Channels)
	assert.Zero(t, sms.calls)
}

func TestExecuteEmailFailurePropagates(t *testing.T) {
	email := &fakeEmail{err: errors.New("ses throttled")}
	h := newTestHandler(t, email, nil)

	_, err := h.Execute(context.Background(), &Input{
		ReportID: "rep-404",
		Total:    5,
	})
	require.Error(t, err)

	var se *stderrors.StandardError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, stderrors.ErrCodeNotificationSendFailed, se.Code)
}

func TestExecuteRequiresReportID(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	_, err := h.Execute(context.Background(), &Input{Total: 5})
	assert.Error(t, err)
}
