// internal/workers/recommendation/recommend-jobs/handler.go
package recommendjobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "job-recommender/internal/common/errors"
	"job-recommender/internal/common/logger"
	"job-recommender/internal/common/metrics"
	"job-recommender/internal/common/validation"
	"job-recommender/internal/recommender"
)

const TaskType = "recommend-jobs"

// Recommender is satisfied by *recommender.Service.
type Recommender interface {
	RecommendWithSnapshot(ctx context.Context, req recommender.Request, snap *recommender.Snapshot) (*recommender.Result, error)
}

type Handler struct {
	config      *Config
	recommender Recommender
	validator   *validation.Validator
	errors      *apperrors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(config *Config, rec Recommender, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		recommender: rec,
		validator:   validator,
		errors:      apperrors.NewErrorHandler(log),
		logger:      log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := h.validator.Decode(TaskType, job.Variables, &input); err != nil {
		metrics.RecommendationRequests.WithLabelValues(metrics.SurfaceWorker, metrics.OutcomeInvalid).Inc()
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

// Execute runs one recommendation. An empty result completes normally with
// noRecommendations set.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidRequestError("input cannot be nil")
	}

	req := recommender.Request{
		Email:      input.Email,
		Skills:     input.Skills,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Experience: input.Experience,
		Budget:     input.Budget,
	}

	for i, j := range input.Jobs {
		if strings.TrimSpace(j.JobID) == "" {
			return nil, apperrors.NewInvalidJobDocumentError(fmt.Sprintf("jobs[%d]: missing job_id", i))
		}
	}

	var snap *recommender.Snapshot
	if input.Jobs != nil || input.Activity != nil {
		snap = &recommender.Snapshot{Jobs: input.Jobs, Activity: input.Activity}
	}

	res, err := h.recommender.RecommendWithSnapshot(ctx, req, snap)
	metrics.RecommendationRequests.WithLabelValues(metrics.SurfaceWorker, recommender.Outcome(res, err)).Inc()
	if err != nil {
		return nil, err
	}

	return &Output{
		Recommendations:     res.Recommendations,
		RecommendationCount: len(res.Recommendations),
		NoRecommendations:   len(res.Recommendations) == 0,
		RunID:               res.RunID,
	}, nil
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
