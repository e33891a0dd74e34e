// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"job-recommender/internal/api"
	"job-recommender/internal/common/camunda"
	"job-recommender/internal/common/config"
	"job-recommender/internal/common/database"
	"job-recommender/internal/common/embeddings"
	"job-recommender/internal/common/logger"
	"job-recommender/internal/common/observability"
	"job-recommender/internal/common/validation"
	"job-recommender/internal/ranking"
	"job-recommender/internal/recommender"
	"job-recommender/internal/repository"
	"job-recommender/pkg/registry"

	qj "job-recommender/internal/workers/data-access/query-jobs"
	qua "job-recommender/internal/workers/data-access/query-user-activity"
	njf "job-recommender/internal/workers/recommendation/normalize-job-fields"
	rj "job-recommender/internal/workers/recommendation/recommend-jobs"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")
	defer bootLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.FromConfig(cfg.Logging)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})
	log.Info("Starting worker manager...", map[string]interface{}{"environment": cfg.App.Environment})

	obs := observability.New("worker-manager", log)
	if err := obs.EnableTracing(cfg.Tracing, cfg.App); err != nil {
		log.Warn("tracing disabled", map[string]interface{}{"error": err.Error()})
	}

	ctx := context.Background()

	// --- Stores ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	log.Info("PostgreSQL connected successfully", nil)

	var es *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return es.Ping(ctx)
	}, 15, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	log.Info("Elasticsearch connected successfully", nil)

	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	log.Info("Redis connected successfully", nil)

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	log.Info("Zeebe client connected successfully", nil)

	// --- Embedder ---
	shared := embeddings.NewShared(func(ctx context.Context) (embeddings.Provider, error) {
		return embeddings.NewProvider(ctx, cfg.Embedding, log)
	}, log)
	handle, err := shared.Acquire(ctx)
	if err != nil {
		zapLog.Fatal("embedding model failed to load", zap.Error(err))
	}
	var embedder embeddings.Provider = handle
	if ttl := config.GetDuration(cfg.Embedding.CacheTTL); ttl > 0 {
		embedder = embeddings.NewCached(handle, rdb.Client, ttl, log)
	}

	// --- Domain ---
	jobRepo := repository.NewJobRepository(es.Client, cfg.Database.Elasticsearch.Index, cfg.Database.Elasticsearch.MaxJobs, log)
	activityRepo := repository.NewActivityRepository(pg.DB, rdb.Client, config.GetDuration(cfg.Activity.CacheTTL), log)

	pipeline := ranking.NewPipeline(ranking.Config{
		TopK:            cfg.Ranking.TopK,
		ResultLimit:     cfg.Ranking.ResultLimit,
		BudgetTolerance: cfg.Ranking.BudgetTolerance,
		ReferenceJobs:   cfg.Ranking.ReferenceJobs,
	}, embedder, log)
	svc := recommender.NewService(jobRepo, activityRepo, pipeline, log)

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("activity registry schemas invalid", zap.Error(err))
	}

	// --- Workers ---
	client := zeebe.GetClient()
	var workers []*camunda.Worker
	start := func(w *camunda.Worker) {
		if w != nil {
			workers = append(workers, w)
		}
	}

	{
		wcfg := config.GetWorkerConfig(cfg, qj.TaskType)
		hcfg := qj.LoadConfig()
		hcfg.Timeout = config.GetDuration(wcfg.Timeout)
		hcfg.Index = cfg.Database.Elasticsearch.Index
		hcfg.MaxJobs = cfg.Database.Elasticsearch.MaxJobs
		h := qj.NewHandler(hcfg, jobRepo, validator, log)
		start(camunda.StartWorker(client, qj.TaskType, wcfg, h.Handle, log))
	}
	{
		wcfg := config.GetWorkerConfig(cfg, qua.TaskType)
		hcfg := qua.LoadConfig()
		hcfg.Timeout = config.GetDuration(wcfg.Timeout)
		hcfg.TopJobs = cfg.Ranking.ReferenceJobs
		h := qua.NewHandler(hcfg, activityRepo, validator, log)
		start(camunda.StartWorker(client, qua.TaskType, wcfg, h.Handle, log))
	}
	{
		wcfg := config.GetWorkerConfig(cfg, njf.TaskType)
		hcfg := njf.LoadConfig()
		hcfg.Timeout = config.GetDuration(wcfg.Timeout)
		h := njf.NewHandler(hcfg, validator, log)
		start(camunda.StartWorker(client, njf.TaskType, wcfg, h.Handle, log))
	}
	{
		wcfg := config.GetWorkerConfig(cfg, rj.TaskType)
		hcfg := rj.LoadConfig()
		hcfg.Timeout = config.GetDuration(wcfg.Timeout)
		h := rj.NewHandler(hcfg, svc, validator, log)
		start(camunda.StartWorker(client, rj.TaskType, wcfg, h.Handle, log))
	}
	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	// --- HTTP API ---
	server := api.NewServer(api.Config{
		Address:        cfg.Server.Address,
		RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
	}, svc, validator, []api.Check{
		{Name: "elasticsearch", Pinger: es},
		{Name: "postgres", Pinger: pg},
		{Name: "redis", Pinger: rdb},
	}, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
	server.SetReady(true)

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, stopping workers...", nil)
	server.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down http server", map[string]interface{}{"error": err.Error()})
	}
	for _, w := range workers {
		w.Close()
	}
	if err := zeebe.Close(); err != nil {
		log.Error("Error closing Zeebe client", map[string]interface{}{"error": err.Error()})
	}
	if err := handle.Close(); err != nil {
		log.Error("Error releasing embedding model", map[string]interface{}{"error": err.Error()})
	}
	if err := rdb.Close(); err != nil {
		log.Error("Error closing Redis", map[string]interface{}{"error": err.Error()})
	}
	if err := pg.Close(); err != nil {
		log.Error("Error closing PostgreSQL", map[string]interface{}{"error": err.Error()})
	}
	obs.Shutdown(shutdownCtx)

	log.Info("Worker manager stopped gracefully", nil)
}
