// internal/workers/recommendation/recommend-jobs/handler_test.go
package recommendjobs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "job-recommender/internal/common/errors"
	"job-recommender/internal/common/logger"
	"job-recommender/internal/models"
	"job-recommender/internal/ranking"
	"job-recommender/internal/recommender"
)

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

type storeStub struct {
	jobs          []models.JobRecord
	activity      models.Activity
	jobCalls      int
	activityCalls int
}

func (s *storeStub) FetchJobs(ctx context.Context) ([]models.JobRecord, error) {
	s.jobCalls++
	return s.jobs, nil
}

func (s *storeStub) FetchActivity(ctx context.Context, email string) (models.Activity, error) {
	s.activityCalls++
	return s.activity, nil
}

// skillEmbedder maps text onto two axes: python and design.
type skillEmbedder struct {
	err error
}

func (e skillEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (e skillEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := []float32{0.1, 0.1}
		if strings.Contains(strings.ToLower(t), "python") {
			v[0] = 1
		}
		if strings.Contains(strings.ToLower(t), "design") {
			v[1] = 1
		}
		out[i] = v
	}
	return out, nil
}

func corpus() []models.JobRecord {
	return []models.JobRecord{
		{JobID: "py", JobTitle: "Python Engineer", SkillsRequired: "Python, SQL", Latitude: 18.53, Longitude: 73.86, Budget: 40000},
		{JobID: "ds", JobTitle: "Designer", SkillsRequired: "Design", Latitude: 18.60, Longitude: 73.90, Budget: 20000},
	}
}

func newService(stub *storeStub, emb ranking.Embedder) *recommender.Service {
	pipeline := ranking.NewPipeline(ranking.DefaultConfig(), emb, logger.NewNoOpLogger())
	return recommender.NewService(stub, stub, pipeline, logger.NewNoOpLogger())
}

func validInput() *Input {
	return &Input{
		Email:     "seeker@example.com",
		Skills:    []string{"python"},
		Latitude:  18.5204,
		Longitude: 73.8567,
		Budget:    40000,
	}
}

func withJobs(in *Input, jobs ...models.JobRecord) *Input {
	in.Jobs = jobs
	return in
}

func TestHandler_Execute_FetchesStores(t *testing.T) {
	stub := &storeStub{jobs: corpus(), activity: models.Activity{}}
	h := NewHandler(LoadConfig(), newService(stub, skillEmbedder{}), nil, createTestLogger(t))

	out, err := h.Execute(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, 1, stub.jobCalls)
	assert.Equal(t, 1, stub.activityCalls)
	assert.Equal(t, 2, out.RecommendationCount)
	assert.False(t, out.NoRecommendations)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, "py", out.Recommendations[0].JobID)
	assert.Equal(t, models.BucketPriority, out.Recommendations[0].Bucket)
}

func TestHandler_Execute_UsesSuppliedSnapshot(t *testing.T) {
	stub := &storeStub{}
	h := NewHandler(LoadConfig(), newService(stub, skillEmbedder{}), nil, createTestLogger(t))

	input := validInput()
	input.Jobs = corpus()
	input.Activity = models.Activity{"ds": 120}

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Zero(t, stub.jobCalls)
	assert.Zero(t, stub.activityCalls)
	require.Equal(t, 2, out.RecommendationCount)
	assert.Equal(t, "py", out.Recommendations[0].JobID)
	assert.Equal(t, models.BucketPersonalized, out.Recommendations[1].Bucket)
}

func TestHandler_Execute_NoRecommendations(t *testing.T) {
	stub := &storeStub{jobs: []models.JobRecord{{JobID: "nowhere", JobTitle: "Remote"}}, activity: models.Activity{}}
	h := NewHandler(LoadConfig(), newService(stub, skillEmbedder{}), nil, createTestLogger(t))

	out, err := h.Execute(context.Background(), validInput())
	require.NoError(t, err)
	assert.True(t, out.NoRecommendations)
	assert.Zero(t, out.RecommendationCount)
	assert.NotNil(t, out.Recommendations)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"recommendations":[]`)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		emb      ranking.Embedder
		wantCode apperrors.ErrorCode
	}{
		{"nil input", nil, skillEmbedder{}, apperrors.ErrCodeInvalidRequest},
		{"missing email", &Input{Skills: []string{"python"}, Latitude: 1, Longitude: 1}, skillEmbedder{}, apperrors.ErrCodeInvalidRequest},
		{"embedder down", validInput(), skillEmbedder{err: errors.New("model unavailable")}, apperrors.ErrCodeEmbeddingFailed},
		{"embedder timeout", validInput(), skillEmbedder{err: context.DeadlineExceeded}, apperrors.ErrCodeEmbeddingTimeout},
		{"snapshot job without id", withJobs(validInput(), models.JobRecord{JobTitle: "Orphan"}), skillEmbedder{}, apperrors.ErrCodeInvalidJobDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &storeStub{jobs: corpus(), activity: models.Activity{}}
			h := NewHandler(LoadConfig(), newService(stub, tt.emb), nil, createTestLogger(t))

			out, err := h.Execute(context.Background(), tt.input)
			assert.Nil(t, out)
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
		})
	}
}

func TestInput_DecodesSnapshotVariables(t *testing.T) {
	raw := `{"email":"a@b.io","skills":["python"],"latitude":1.5,"longitude":2.5,"experience":2.5,
		"jobs":[{"job_id":"j1","jobTitle":"X","budgetRange":100,"experienceLevel":[1,2],"latitude":1.5,"longitude":2.5}],
		"activity":{"j1":12.5}}`

	var in Input
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	require.Len(t, in.Jobs, 1)
	assert.Equal(t, 100.0, in.Jobs[0].Budget)
	assert.Equal(t, [2]float64{1, 2}, in.Jobs[0].ExperienceLevel)
	assert.Equal(t, 12.5, in.Activity["j1"])
	assert.Equal(t, 2.5, in.Experience)
}
