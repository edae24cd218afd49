// internal/workers/report/notify-review/handler.go
package notifyreview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	stderrors "verification-workers/internal/common/errors"
	"verification-workers/internal/common/logger"
	"verification-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notify-review"
)

// EmailSender is the slice of the SES client the handler needs.
type EmailSender interface {
	SendPlainEmail(ctx context.Context, from, to, subject, body string) error
}

// SMSSender is the slice of the SNS client the handler needs.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message, senderID string) error
}

type Handler struct {
	config *Config
	logger logger.Logger
	email  EmailSender
	sms    SMSSender
}

// NewHandler alerts human reviewers over SES and SNS. Either sender may be
// nil; its channel is then skipped regardless of config.
func NewHandler(config *Config, log logger.Logger, email EmailSender, sms SMSSender) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		email:  email,
		sms:    sms,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, string(stderrors.ErrCodeParseError), fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		code := string(stderrors.ErrCodeNotificationSendFailed)
		if se, ok := err.(*stderrors.StandardError); ok {
			code = string(se.Code)
		}
		h.failJob(client, job, code, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ReportID == "" {
		return nil, fmt.Errorf("reportId is required")
	}

	reasons := reviewReasons(input, h.config.ReviewThreshold)
	output := &Output{
		ReportID: input.ReportID,
		Reasons:  reasons,
	}

	if len(reasons) == 0 {
		h.logger.Info("no review needed", map[string]interface{}{
			"reportId": input.ReportID,
			"total":    input.Total,
		})
		return output, nil
	}

	subject := fmt.Sprintf("Verification report %s flagged for review", input.ReportID)
	body := h.buildMessage(input, reasons)

	if h.config.EmailEnabled && h.email != nil && h.config.ReviewTo != "" {
		if err := h.email.SendPlainEmail(ctx, h.config.FromEmail, h.config.ReviewTo, subject, body); err != nil {
			return nil, stderrors.NewNotificationSendFailedError("email", err)
		}
		output.Channels = append(output.Channels, "email")
	}

	if h.config.SMSEnabled && h.sms != nil && input.ReviewerPhone != "" {
		msg := fmt.Sprintf("Report %s needs review: %s", input.ReportID, reasons[0])
		if err := h.sms.SendSMS(ctx, input.ReviewerPhone, msg, h.config.SenderID); err != nil {
			return nil, stderrors.NewNotificationSendFailedError("sms", err)
		}
		output.Channels = append(output.Channels, "sms")
	}

	output.Notified = len(output.Channels) > 0

	h.logger.Info("review notification processed", map[string]interface{}{
		"reportId": input.ReportID,
		"reasons":  reasons,
		"channels": output.Channels,
	})

	return output, nil
}

func reviewReasons(input *Input, threshold float64) []string {
	var reasons []string
	if input.ErrorTag != "" {
		reasons = append(reasons, fmt.Sprintf("scoring degraded: %s", input.ErrorTag))
	}
	if input.Total < threshold {
		reasons = append(reasons, fmt.Sprintf("total score %.1f below review threshold %.1f", input.Total, threshold))
	}
	if len(input.Warnings) > 0 {
		reasons = append(reasons, fmt.Sprintf("%d coverage warnings", len(input.Warnings)))
	}
	return reasons
}

func (h *Handler) buildMessage(input *Input, reasons []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Verification report %s requires human review.\n\n", input.ReportID)
	fmt.Fprintf(&b, "Strategy: %s\nTotal score: %.1f\n\nReasons:\n", input.Strategy, input.Total)
	for _, r := range reasons {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	if len(input.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range input.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
