// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// HandlerFunc is the job callback every report worker exposes as
// Handler.Handle. Job completion and failure are the handler's job, so
// the callback returns nothing.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Worker wraps an open Zeebe job worker for one task type.
type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// WorkerConfig holds per-task polling settings.
type WorkerConfig struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// NewWorker opens a job worker on the shared Zeebe connection. The
// caller owns the connection; Stop only closes this worker's polling.
func NewWorker(
	client zbc.Client,
	taskType string,
	cfg WorkerConfig,
	handler HandlerFunc,
	logger *zap.Logger,
) *Worker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(cfg.MaxJobsActive).
		Timeout(cfg.Timeout).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", cfg.MaxJobsActive),
		zap.Duration("timeout", cfg.Timeout),
	)

	return &Worker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

// Stop drains and closes the job worker. Blocks until in-flight jobs
// are handed back to the broker.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}
