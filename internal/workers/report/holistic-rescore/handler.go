// internal/workers/report/holistic-rescore/handler.go
package holisticrescore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"verification-workers/internal/common/logger"
	"verification-workers/internal/common/metrics"
	"verification-workers/internal/scoring"
	"verification-workers/internal/scoring/applicant"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "holistic-rescore"

	strategyName = "holistic"
)

type Handler struct {
	config *Config
	logger logger.Logger
	scorer scoring.Scorer
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		logger: workerLog,
		scorer: scoring.NewHolisticScorer(config.AI, workerLog),
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
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "PARSE_ERROR", err.Error())
		return
	}

	// Degraded results (AI down, unusable response) still complete the
	// job: the workflow reads the error tag off the payload and decides.
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ReportID == "" {
		return nil, fmt.Errorf("reportId is required")
	}

	subject := scoring.Subject{
		Applicant: applicant.Map(input.Draft),
		Text:      input.ReportText,
	}

	result := h.scorer.Score(ctx, subject)

	metrics.ScoresComputed.WithLabelValues(strategyName).Inc()
	metrics.ScoreTotals.WithLabelValues(strategyName).Observe(result.Total())

	if result.ErrorTag != "" {
		h.logger.Warn("holistic scoring degraded", map[string]interface{}{
			"reportId": input.ReportID,
			"errorTag": result.ErrorTag,
		})
	} else {
		h.logger.Info("holistic rescore complete", map[string]interface{}{
			"reportId": input.ReportID,
			"total":    result.Total(),
		})
	}

	return &Output{
		ReportID:  input.ReportID,
		Strategy:  strategyName,
		Scores:    result.Scores,
		Total:     result.Total(),
		Matches:   result.Matches,
		Warnings:  result.Warnings,
		Rationale: result.Rationale,
		ErrorTag:  result.ErrorTag,
	}, nil
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
