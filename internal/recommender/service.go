// internal/recommender/service.go
package recommender

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "job-recommender/internal/common/errors"
	"job-recommender/internal/common/logger"
	"job-recommender/internal/common/metrics"
	"job-recommender/internal/models"
)

type JobSource interface {
	FetchJobs(ctx context.Context) ([]models.JobRecord, error)
}

type ActivitySource interface {
	FetchActivity(ctx context.Context, email string) (models.Activity, error)
}

// Ranker is satisfied by *ranking.Pipeline.
type Ranker interface {
	Rank(ctx context.Context, profile models.UserProfile, corpus []models.JobRecord, activity models.Activity) ([]models.Recommendation, error)
}

type Request struct {
	Email      string   `json:"email"`
	Skills     []string `json:"skills"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Experience float64  `json:"experience"` // whole years; fractions are truncated
	Budget     float64  `json:"budget"`
}

// Snapshot carries store contents read elsewhere. A nil field is fetched.
type Snapshot struct {
	Jobs     []models.JobRecord
	Activity models.Activity
}

type Result struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	CandidateCount  int                     `json:"candidateCount"`
	HasActivity     bool                    `json:"hasActivity"`
	RunID           string                  `json:"runId"`
}

type Service struct {
	jobs     JobSource
	activity ActivitySource
	ranker   Ranker
	logger   logger.Logger
	tracer   trace.Tracer
}

func NewService(jobs JobSource, activity ActivitySource, ranker Ranker, log logger.Logger) *Service {
	return &Service{
		jobs:     jobs,
		activity: activity,
		ranker:   ranker,
		logger:   log,
		tracer:   otel.Tracer("job-recommender/recommender"),
	}
}

func (s *Service) Recommend(ctx context.Context, req Request) (*Result, error) {
	return s.RecommendWithSnapshot(ctx, req, nil)
}

// RecommendWithSnapshot runs one recommendation. Stores are read only for
// the parts snap does not supply.
func (s *Service) RecommendWithSnapshot(ctx context.Context, req Request, snap *Snapshot) (*Result, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	log := s.logger.WithFields(map[string]interface{}{"runId": runID})

	ctx, span := s.tracer.Start(ctx, "recommender.Recommend", trace.WithAttributes(
		attribute.String("recommendation.run_id", runID),
		attribute.Int("recommendation.skills", len(req.Skills)),
	))
	defer span.End()
	start := time.Now()

	corpus, activity, err := s.snapshot(ctx, req.Email, snap)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot failed")
		log.Error("Failed to read recommendation inputs", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(apperrors.CodeOf(err)),
		})
		return nil, err
	}

	profile := models.UserProfile{
		Email:           strings.TrimSpace(req.Email),
		Skills:          req.Skills,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		ExperienceYears: int(req.Experience),
		TargetBudget:    req.Budget,
	}

	recs, err := s.ranker.Rank(ctx, profile, corpus, activity)
	if err != nil {
		stdErr := apperrors.NewEmbeddingError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "ranking failed")
		log.Error("Ranking failed", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(stdErr.Code),
		})
		return nil, stdErr
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}

	metrics.ObserveStage("total", start)
	span.SetAttributes(
		attribute.Int("recommendation.corpus_size", len(corpus)),
		attribute.Int("recommendation.results", len(recs)),
	)
	log.Info("Recommendation completed", map[string]interface{}{
		"corpusSize":  len(corpus),
		"hasActivity": len(activity) > 0,
		"results":     len(recs),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return &Result{
		Recommendations: recs,
		CandidateCount:  len(corpus),
		HasActivity:     len(activity) > 0,
		RunID:           runID,
	}, nil
}

// snapshot reads the corpus and the seeker's activity concurrently.
func (s *Service) snapshot(ctx context.Context, email string, snap *Snapshot) ([]models.JobRecord, models.Activity, error) {
	var (
		corpus   []models.JobRecord
		activity models.Activity
	)
	if snap != nil {
		corpus = snap.Jobs
		activity = snap.Activity
	}

	g, gctx := errgroup.WithContext(ctx)

	if corpus == nil {
		g.Go(func() error {
			jobs, err := s.jobs.FetchJobs(gctx)
			if err != nil {
				return apperrors.NewJobCorpusUnavailableError(err)
			}
			corpus = jobs
			return nil
		})
	}

	if activity == nil {
		g.Go(func() error {
			a, err := s.activity.FetchActivity(gctx, email)
			if err != nil {
				return apperrors.NewActivitySourceUnavailableError(err)
			}
			activity = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return corpus, activity, nil
}

// Validate checks the request preconditions. The returned error carries
// the INVALID_REQUEST code.
func Validate(req Request) error {
	var missing []string
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if !hasSkill(req.Skills) {
		missing = append(missing, "skills")
	}
	if req.Latitude == 0 {
		missing = append(missing, "latitude")
	}
	if req.Longitude == 0 {
		missing = append(missing, "longitude")
	}
	if len(missing) > 0 {
		return apperrors.NewInvalidRequestError("missing or empty: " + strings.Join(missing, ", "))
	}
	return nil
}

func hasSkill(skills []string) bool {
	for _, s := range skills {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// Outcome classifies a run for the recommendation_requests_total counter.
func Outcome(res *Result, err error) string {
	switch {
	case err != nil && apperrors.CodeOf(err) == apperrors.ErrCodeInvalidRequest:
		return metrics.OutcomeInvalid
	case err != nil:
		return metrics.OutcomeError
	case res == nil || len(res.Recommendations) == 0:
		return metrics.OutcomeEmpty
	default:
		return metrics.OutcomeOK
	}
}
