// internal/workers/report/score-verification/handler.go
package scoreverification

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
	TaskType = "score-verification"

	StrategyDeterministic = "deterministic"
	StrategyPattern       = "pattern"
)

// ResultCache is the slice of the Redis client the handler needs.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type Handler struct {
	config     *Config
	logger     logger.Logger
	ruleScorer scoring.Scorer
	textScorer scoring.Scorer
	cache      ResultCache
}

// NewHandler wires both field-based scoring strategies. cache may be nil,
// in which case every job recomputes.
func NewHandler(config *Config, log logger.Logger, cache ResultCache) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		logger:     workerLog,
		ruleScorer: scoring.NewRuleScorer(workerLog),
		textScorer: scoring.NewTextScorer(workerLog),
		cache:      cache,
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
		h.failJob(client, job, "SCORING_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ReportID == "" {
		return nil, fmt.Errorf("reportId is required")
	}

	strategy := input.Strategy
	if strategy == "" {
		strategy = h.config.DefaultStrategy
	}

	var advisory []string
	switch strategy {
	case StrategyDeterministic:
		// Field scoring needs a draft; degrade to text scoring when a
		// report text is the only input available.
		if input.Draft == nil && input.ReportText != "" {
			strategy = StrategyPattern
			advisory = append(advisory, "no structured draft supplied, fell back to pattern scoring")
		}
	case StrategyPattern:
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}

	if cached := h.lookupCache(ctx, input.ReportID, strategy); cached != nil {
		return cached, nil
	}

	if input.Draft != nil {
		advisory = append(advisory, validateDraft(input.Draft)...)
	}

	subject := scoring.Subject{Text: input.ReportText}
	scorer := h.textScorer
	if strategy == StrategyDeterministic {
		subject.Applicant = applicant.Map(input.Draft)
		scorer = h.ruleScorer
	}

	result := scorer.Score(ctx, subject)
	result.Warnings = append(advisory, result.Warnings...)

	metrics.ScoresComputed.WithLabelValues(strategy).Inc()
	metrics.ScoreTotals.WithLabelValues(strategy).Observe(result.Total())

	output := &Output{
		ReportID:  input.ReportID,
		Strategy:  strategy,
		Scores:    result.Scores,
		Total:     result.Total(),
		Matches:   result.Matches,
		Warnings:  result.Warnings,
		Rationale: result.Rationale,
		ErrorTag:  result.ErrorTag,
	}

	h.storeCache(ctx, input.ReportID, strategy, output)

	h.logger.Info("verification scored", map[string]interface{}{
		"reportId": input.ReportID,
		"strategy": strategy,
		"total":    output.Total,
		"warnings": len(output.Warnings),
	})

	return output, nil
}

func cacheKey(reportID, strategy string) string {
	return fmt.Sprintf("score:%s:%s", reportID, strategy)
}

func (h *Handler) lookupCache(ctx context.Context, reportID, strategy string) *Output {
	if h.cache == nil {
		return nil
	}
	raw, err := h.cache.Get(ctx, cacheKey(reportID, strategy))
	if err != nil || raw == "" {
		metrics.ScoreCacheHits.WithLabelValues("miss").Inc()
		return nil
	}
	var output Output
	if err := json.Unmarshal([]byte(raw), &output); err != nil {
		// Stale or corrupt entry; recompute rather than fail.
		metrics.ScoreCacheHits.WithLabelValues("miss").Inc()
		h.logger.Warn("discarding unreadable cache entry", map[string]interface{}{
			"reportId": reportID,
			"error":    err.Error(),
		})
		return nil
	}
	metrics.ScoreCacheHits.WithLabelValues("hit").Inc()
	output.FromCache = true
	return &output
}

func (h *Handler) storeCache(ctx context.Context, reportID, strategy string, output *Output) {
	if h.cache == nil {
		return
	}
	raw, err := json.Marshal(output)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, cacheKey(reportID, strategy), string(raw), h.config.CacheTTL); err != nil {
		h.logger.Warn("failed to cache score result", map[string]interface{}{
			"reportId": reportID,
			"error":    err.Error(),
		})
	}
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
