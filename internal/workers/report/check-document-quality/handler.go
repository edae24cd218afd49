// internal/workers/report/check-document-quality/handler.go
package checkdocumentquality

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"verification-workers/internal/common/logger"
	"verification-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "check-document-quality"
)

var (
	decisionRe = regexp.MustCompile(`(?i)\b(recommended|not recommended|approved|rejected|sanctioned|declined|decision)\b`)
	// Accepts 14/03/2025, 2025-03-14 and "14 March 2025" style dates.
	dateRe = regexp.MustCompile(`(?i)\b(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}|\d{4}-\d{2}-\d{2}|\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{4})\b`)
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, "DOCUMENT_QUALITY_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.ReportID == "" {
		return nil, fmt.Errorf("reportId is required")
	}

	var issues []string
	passed, total := 0, 0

	check := func(ok bool, issue string) {
		total++
		if ok {
			passed++
		} else {
			issues = append(issues, issue)
		}
	}

	check(len(input.ReportText) >= h.config.MinReportLength,
		fmt.Sprintf("report text below %d characters", h.config.MinReportLength))

	for _, name := range h.config.RequiredSections {
		check(hasSection(input.Draft, name), fmt.Sprintf("missing required section: %s", name))
	}

	check(input.Decision != "" || decisionRe.MatchString(input.ReportText),
		"no verification decision recorded")

	check(input.ReportDate != "" || dateRe.MatchString(input.ReportText),
		"no report date found")

	output := &Output{
		ReportID:     input.ReportID,
		QualityScore: float64(passed) / float64(total) * 100,
		Acceptable:   len(issues) == 0,
		Issues:       issues,
	}

	h.logger.Info("document quality checked", map[string]interface{}{
		"reportId":     input.ReportID,
		"qualityScore": output.QualityScore,
		"acceptable":   output.Acceptable,
		"issues":       len(issues),
	})

	return output, nil
}

// hasSection requires a non-empty nested object: an empty stub carries no
// verification evidence.
func hasSection(draft map[string]interface{}, name string) bool {
	if draft == nil {
		return false
	}
	sub, ok := draft[name].(map[string]interface{})
	return ok && len(sub) > 0
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
