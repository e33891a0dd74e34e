// internal/ranking/pipeline.go
package ranking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"job-recommender/internal/common/logger"
	"job-recommender/internal/common/metrics"
	"job-recommender/internal/models"
)

// Embedder turns text into fixed-dimension vectors. Implementations must be
// deterministic for a given model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

var ErrEmbeddingCount = errors.New("embedder returned an unexpected number of vectors")

type Config struct {
	TopK            int
	ResultLimit     int
	BudgetTolerance float64
	ReferenceJobs   int
}

func DefaultConfig() Config {
	return Config{
		TopK:            30,
		ResultLimit:     15,
		BudgetTolerance: 0.2,
		ReferenceJobs:   3,
	}
}

// Pipeline is read-only after construction and safe for concurrent use.
type Pipeline struct {
	config   Config
	embedder Embedder
	logger   logger.Logger
	tracer   trace.Tracer
}

func NewPipeline(cfg Config, embedder Embedder, log logger.Logger) *Pipeline {
	def := DefaultConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = def.ResultLimit
	}
	if cfg.BudgetTolerance < 0 {
		cfg.BudgetTolerance = def.BudgetTolerance
	}
	if cfg.ReferenceJobs <= 0 {
		cfg.ReferenceJobs = def.ReferenceJobs
	}
	return &Pipeline{
		config:   cfg,
		embedder: embedder,
		logger:   log,
		tracer:   otel.Tracer("job-recommender/ranking"),
	}
}

func (p *Pipeline) Config() Config {
	return p.config
}

// Rank orders the corpus for one user. The result holds at most ResultLimit
// entries with unique job ids. An empty candidate set yields an empty slice.
func (p *Pipeline) Rank(ctx context.Context, profile models.UserProfile, corpus []models.JobRecord, activity models.Activity) ([]models.Recommendation, error) {
	ctx, span := p.tracer.Start(ctx, "ranking.Rank")
	defer span.End()

	candidates := FilterLocated(corpus)
	span.SetAttributes(
		attribute.Int("ranking.corpus_size", len(corpus)),
		attribute.Int("ranking.candidates", len(candidates)),
		attribute.Bool("ranking.has_activity", len(activity) > 0),
	)
	metrics.RecommendationCandidates.Observe(float64(len(candidates)))

	if len(candidates) == 0 {
		p.logger.Info("No located candidate jobs", map[string]interface{}{
			"corpusSize": len(corpus),
		})
		return []models.Recommendation{}, nil
	}

	skills := NormalizeSkills(profile.Skills)

	scored, err := p.score(ctx, profile, skills, candidates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scoring failed")
		return nil, err
	}

	start := time.Now()
	top := make([]*models.ScoredJob, len(scored))
	copy(top, scored)
	SortByFinalScore(top)
	top = Truncate(top, p.config.TopK)

	matched, nonMatched := Partition(top, MatchesAnySkill(skills))
	priority, rest := Partition(matched, InBudgetWindow(profile.TargetBudget, p.config.BudgetTolerance))
	SortByDistance(priority)
	SortByDistance(rest)
	SetBucket(priority, models.BucketPriority)
	SetBucket(rest, models.BucketMatched)
	SetBucket(nonMatched, models.BucketRanked)
	matched = Concat(priority, rest)
	metrics.ObserveStage("bucket", start)

	if len(activity) > 0 {
		personalized, err := p.personalize(ctx, profile, corpus, scored, matched, activity)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "personalization failed")
			return nil, err
		}
		nonMatched = DedupByID(Concat(personalized, nonMatched))
	}

	final := Truncate(DedupByID(Concat(matched, nonMatched)), p.config.ResultLimit)

	out := make([]models.Recommendation, len(final))
	for i, j := range final {
		out[i] = j.Recommendation()
	}

	p.logger.Debug("Ranking completed", map[string]interface{}{
		"candidates":   len(candidates),
		"priority":     len(priority),
		"matched":      len(matched),
		"results":      len(out),
		"personalized": len(activity) > 0,
	})
	span.SetAttributes(attribute.Int("ranking.results", len(out)))
	return out, nil
}

// score embeds the user and every candidate in one batch, then computes the
// raw signals and fuses them.
func (p *Pipeline) score(ctx context.Context, profile models.UserProfile, skills []string, candidates []models.JobRecord) ([]*models.ScoredJob, error) {
	ctx, span := p.tracer.Start(ctx, "ranking.score")
	defer span.End()
	start := time.Now()
	defer metrics.ObserveStage("score", start)

	scored := make([]*models.ScoredJob, len(candidates))
	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, BuildUserText(profile))
	for i, job := range candidates {
		d := Distance(profile.Latitude, profile.Longitude, job.Latitude, job.Longitude)
		text := BuildJobText(job, d)
		scored[i] = &models.ScoredJob{Job: job, DistanceKM: d, JobText: text}
		texts = append(texts, text)
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrEmbeddingCount, len(texts), len(vectors))
	}

	userVector := vectors[0]
	for i, s := range scored {
		s.Embedding = vectors[i+1]
		ScoreSignals(s, userVector, skills)
	}
	Fuse(scored)
	return scored, nil
}

// personalize ranks every non-matched candidate by its mean similarity to the
// user's most viewed jobs. Reference jobs are resolved in the full corpus,
// located or not. No resolvable reference job means no personalized entries.
func (p *Pipeline) personalize(ctx context.Context, profile models.UserProfile, corpus []models.JobRecord, scored, matched []*models.ScoredJob, activity models.Activity) ([]*models.ScoredJob, error) {
	ctx, span := p.tracer.Start(ctx, "ranking.personalize")
	defer span.End()
	start := time.Now()
	defer metrics.ObserveStage("personalize", start)

	byID := make(map[string]models.JobRecord, len(corpus))
	for _, job := range corpus {
		if _, ok := byID[job.JobID]; !ok {
			byID[job.JobID] = job
		}
	}

	refIDs := activity.TopJobs(p.config.ReferenceJobs)
	refTexts := make([]string, 0, len(refIDs))
	for _, id := range refIDs {
		job, ok := byID[id]
		if !ok {
			continue
		}
		d := 0.0
		if job.HasLocation() {
			d = Distance(profile.Latitude, profile.Longitude, job.Latitude, job.Longitude)
		}
		refTexts = append(refTexts, BuildJobText(job, d))
	}
	span.SetAttributes(attribute.Int("ranking.reference_jobs", len(refTexts)))

	if len(refTexts) == 0 {
		p.logger.Debug("No viewed jobs found in corpus, skipping personalization", map[string]interface{}{
			"viewedJobs": len(activity),
		})
		return nil, nil
	}

	refVectors, err := p.embedder.EmbedBatch(ctx, refTexts)
	if err != nil {
		return nil, fmt.Errorf("embed reference jobs: %w", err)
	}
	if len(refVectors) != len(refTexts) {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrEmbeddingCount, len(refTexts), len(refVectors))
	}

	matchedIDs := make(map[string]bool, len(matched))
	for _, m := range matched {
		matchedIDs[m.Job.JobID] = true
	}

	pool := make([]*models.ScoredJob, 0, len(scored))
	for _, s := range scored {
		if matchedIDs[s.Job.JobID] {
			continue
		}
		var total float64
		for _, rv := range refVectors {
			total += Cosine(rv, s.Embedding)
		}
		entry := *s
		entry.SemanticScore = total / float64(len(refIDs))
		entry.Bucket = models.BucketPersonalized
		pool = append(pool, &entry)
	}
	SortBySemanticScore(pool)
	return pool, nil
}
