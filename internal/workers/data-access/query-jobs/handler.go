// internal/workers/data-access/query-jobs/handler.go
package queryjobs

import (
	"context"
	"errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "job-recommender/internal/common/errors"
	"job-recommender/internal/common/logger"
	"job-recommender/internal/common/metrics"
	"job-recommender/internal/common/normalize"
	"job-recommender/internal/common/validation"
	"job-recommender/internal/models"
)

const TaskType = "query-jobs"

// Searcher reads raw job documents. *repository.JobRepository implements it.
type Searcher interface {
	Search(ctx context.Context, index string, size int) ([]models.RawJob, error)
}

type Handler struct {
	config    *Config
	searcher  Searcher
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, searcher Searcher, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		searcher:  searcher,
		validator: validator,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := h.validator.Decode(TaskType, job.Variables, &input); err != nil {
		h.errors.HandleJobError(context.Background(), client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(context.Background(), client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// Execute reads and normalizes the corpus. Input values override the
// configured index and size.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidRequestError("input cannot be nil")
	}

	index := input.IndexName
	if index == "" {
		index = h.config.Index
	}
	size := input.MaxJobs
	if size <= 0 {
		size = h.config.MaxJobs
	}

	raws, err := h.searcher.Search(ctx, index, size)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewJobCorpusUnavailableError(ctx.Err()).WithMetadata("index", index)
		}
		return nil, apperrors.NewJobCorpusUnavailableError(err).WithMetadata("index", index)
	}

	jobs, dropped := normalize.Jobs(raws)
	if dropped > 0 {
		h.logger.Warn("dropped job documents without id", map[string]interface{}{
			"index":   index,
			"dropped": dropped,
		})
	}

	return &Output{Jobs: jobs, TotalJobs: len(jobs)}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}
