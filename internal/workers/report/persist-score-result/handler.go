// internal/workers/report/persist-score-result/handler.go
package persistscoreresult

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	stderrors "verification-workers/internal/common/errors"
	"verification-workers/internal/common/logger"
	"verification-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "persist-score-result"
)

const insertScoreSQL = `
	INSERT INTO verification_scores
		(id, report_id, strategy, personal, business, banking, networth,
		 debt, end_use, reference_score, total, rationale, error_tag,
		 warnings, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

const insertAuditSQL = `
	INSERT INTO score_audit_log (id, score_id, report_id, action, detail, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Indexer is the slice of the Elasticsearch client the handler needs.
type Indexer interface {
	IndexDocument(ctx context.Context, index, id string, body []byte) error
}

type Handler struct {
	config  *Config
	logger  logger.Logger
	db      *sql.DB
	indexer Indexer
	errors  *stderrors.ErrorHandler
	now     func() time.Time
}

// NewHandler persists score rows to Postgres and mirrors them into
// Elasticsearch. indexer may be nil when search is not deployed.
func NewHandler(config *Config, log logger.Logger, db *sql.DB, indexer Indexer) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		logger:  workerLog,
		db:      db,
		indexer: indexer,
		errors:  stderrors.NewErrorHandler(workerLog),
		now:     time.Now,
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
		code := string(stderrors.ErrCodeScorePersistFailed)
		if se, ok := err.(*stderrors.StandardError); ok {
			code = string(se.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		// Transient database failures go back to the broker with retries
		// left; the rest surface as BPMN errors.
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ReportID == "" {
		return nil, fmt.Errorf("reportId is required")
	}
	if input.Strategy == "" {
		return nil, fmt.Errorf("strategy is required")
	}

	scoreID := uuid.New().String()
	createdAt := h.now().UTC()

	warnings, err := json.Marshal(input.Warnings)
	if err != nil {
		return nil, fmt.Errorf("encode warnings: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, stderrors.NewDatabaseConnectionFailedError(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insertScoreSQL,
		scoreID, input.ReportID, input.Strategy,
		input.Scores.Personal, input.Scores.Business, input.Scores.Banking,
		input.Scores.Networth, input.Scores.Debt, input.Scores.EndUse,
		input.Scores.References, input.Total, input.Rationale,
		input.ErrorTag, warnings, createdAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key") {
			return nil, stderrors.NewDuplicateScoreError(input.ReportID)
		}
		return nil, stderrors.NewScorePersistFailedError(err)
	}

	auditDetail := fmt.Sprintf("strategy=%s total=%.1f warnings=%d", input.Strategy, input.Total, len(input.Warnings))
	_, err = tx.ExecContext(ctx, insertAuditSQL,
		uuid.New().String(), scoreID, input.ReportID, "score_persisted", auditDetail, createdAt,
	)
	if err != nil {
		return nil, stderrors.NewScorePersistFailedError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, stderrors.NewScorePersistFailedError(err)
	}

	output := &Output{
		ScoreID:     scoreID,
		ReportID:    input.ReportID,
		PersistedAt: createdAt.Format(time.RFC3339),
	}

	// The row is committed; a search outage must not re-run the insert.
	output.Indexed = h.indexDocument(ctx, scoreID, input, createdAt)

	h.logger.Info("score persisted", map[string]interface{}{
		"scoreId":  scoreID,
		"reportId": input.ReportID,
		"strategy": input.Strategy,
		"indexed":  output.Indexed,
	})

	return output, nil
}

func (h *Handler) indexDocument(ctx context.Context, scoreID string, input *Input, createdAt time.Time) bool {
	if h.indexer == nil {
		return false
	}

	doc := scoreDocument{
		ScoreID:   scoreID,
		ReportID:  input.ReportID,
		Strategy:  input.Strategy,
		Scores:    input.Scores,
		Total:     input.Total,
		Warnings:  input.Warnings,
		Rationale: input.Rationale,
		ErrorTag:  input.ErrorTag,
		CreatedAt: createdAt.Format(time.RFC3339),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return false
	}

	if err := h.indexer.IndexDocument(ctx, h.config.ScoreIndex, scoreID, body); err != nil {
		h.logger.Warn("failed to index score document", map[string]interface{}{
			"scoreId": scoreID,
			"index":   h.config.ScoreIndex,
			"error":   err.Error(),
		})
		return false
	}
	return true
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
