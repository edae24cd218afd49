// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"verification-workers/internal/common/aws"
	"verification-workers/internal/common/camunda"
	"verification-workers/internal/common/config"
	"verification-workers/internal/common/database"
	"verification-workers/internal/common/logger"
	"verification-workers/internal/common/observability"

	cdq "verification-workers/internal/workers/report/check-document-quality"
	hr "verification-workers/internal/workers/report/holistic-rescore"
	nr "verification-workers/internal/workers/report/notify-review"
	psr "verification-workers/internal/workers/report/persist-score-result"
	sv "verification-workers/internal/workers/report/score-verification"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Notification Clients ---
	// notify-review skips any channel whose client is missing, so a broken
	// AWS setup does not block scoring.
	var sesClient *aws.SESClient
	var snsClient *aws.SNSClient
	if cfg.Notifications.Email.Enabled {
		sesClient, err = aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("SES client init failed, email notifications disabled", zap.Error(err))
			sesClient = nil
		}
	}
	if cfg.Notifications.SMS.Enabled {
		snsClient, err = aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("SNS client init failed, SMS notifications disabled", zap.Error(err))
			snsClient = nil
		}
	}

	// --- Register Scoring Workers ---
	var workers []*camunda.Worker

	if cfg.Workers[sv.TaskType].Enabled {
		handler := sv.NewHandler(
			&sv.Config{
				Timeout:         time.Duration(cfg.Workers[sv.TaskType].Timeout) * time.Millisecond,
				DefaultStrategy: cfg.Scoring.DefaultStrategy,
				CacheTTL:        time.Duration(cfg.Scoring.CacheTTL) * time.Second,
			},
			log, redis,
		)
		workers = append(workers, startWorker(zeebeClient, sv.TaskType, cfg.Workers[sv.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[hr.TaskType].Enabled {
		hrCfg := hr.LoadConfig(cfg.APIs.GenAI)
		hrCfg.Timeout = time.Duration(cfg.Workers[hr.TaskType].Timeout) * time.Millisecond
		handler := hr.NewHandler(hrCfg, log)
		workers = append(workers, startWorker(zeebeClient, hr.TaskType, cfg.Workers[hr.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[psr.TaskType].Enabled {
		handler := psr.NewHandler(
			&psr.Config{
				Timeout:    time.Duration(cfg.Workers[psr.TaskType].Timeout) * time.Millisecond,
				ScoreIndex: cfg.Scoring.ScoreIndex,
			},
			log, pg.GetDB(), esClient,
		)
		workers = append(workers, startWorker(zeebeClient, psr.TaskType, cfg.Workers[psr.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[cdq.TaskType].Enabled {
		cdqCfg := cdq.LoadConfig()
		cdqCfg.Timeout = time.Duration(cfg.Workers[cdq.TaskType].Timeout) * time.Millisecond
		cdqCfg.MinReportLength = cfg.Scoring.MinReportLength
		handler := cdq.NewHandler(cdqCfg, log)
		workers = append(workers, startWorker(zeebeClient, cdq.TaskType, cfg.Workers[cdq.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[nr.TaskType].Enabled {
		handler := nr.NewHandler(
			nr.LoadConfig(cfg.Notifications, cfg.Scoring.ReviewThreshold),
			log, sesClient, snsClient,
		)
		workers = append(workers, startWorker(zeebeClient, nr.TaskType, cfg.Workers[nr.TaskType], handler.Handle, zapLog))
	}

	zapLog.Info("All scoring workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := "ready"
			code := http.StatusOK
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				status = "zeebe unavailable"
				code = http.StatusServiceUnavailable
			} else if err := pg.Ping(r.Context()); err != nil {
				status = "postgres unavailable"
				code = http.StatusServiceUnavailable
			} else if err := redis.Ping(r.Context()); err != nil {
				status = "redis unavailable"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.HandlerFunc, log *zap.Logger) *camunda.Worker {
	return camunda.NewWorker(client, taskType, camunda.WorkerConfig{
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
	}, handlerFunc, log)
}
