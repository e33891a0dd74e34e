// internal/repository/jobs.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"job-recommender/internal/common/logger"
	"job-recommender/internal/common/metrics"
	"job-recommender/internal/common/normalize"
	"job-recommender/internal/models"
)

const (
	DefaultJobIndex = "jobs"
	DefaultMaxJobs  = 1000
)

var (
	ErrSearchFailed = errors.New("job search failed")
	ErrIndexMissing = errors.New("job index not found")
)

const matchAllQuery = `{"query":{"match_all":{}}}`

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

type searchHit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}

// JobRepository reads the job corpus from Elasticsearch.
type JobRepository struct {
	client  *elasticsearch.Client
	index   string
	maxJobs int
	logger  logger.Logger
}

func NewJobRepository(client *elasticsearch.Client, index string, maxJobs int, log logger.Logger) *JobRepository {
	if index == "" {
		index = DefaultJobIndex
	}
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}
	return &JobRepository{
		client:  client,
		index:   index,
		maxJobs: maxJobs,
		logger:  log,
	}
}

// FetchJobs returns the normalized corpus of the configured index.
func (r *JobRepository) FetchJobs(ctx context.Context) ([]models.JobRecord, error) {
	defer metrics.ObserveStage("fetch_jobs", time.Now())

	raws, err := r.Search(ctx, r.index, r.maxJobs)
	if err != nil {
		return nil, err
	}

	jobs, dropped := normalize.Jobs(raws)
	if dropped > 0 {
		r.logger.Warn("dropped job documents without id", map[string]interface{}{
			"index":   r.index,
			"dropped": dropped,
		})
	}
	return jobs, nil
}

// Search reads up to size raw documents from index in _doc order. A hit
// without a job_id in its source takes the document _id.
func (r *JobRepository) Search(ctx context.Context, index string, size int) ([]models.RawJob, error) {
	if index == "" {
		index = r.index
	}
	if size <= 0 {
		size = r.maxJobs
	}

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(matchAllQuery),
		Size:  &size,
		Sort:  []string{"_doc"},
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, fmt.Errorf("%w: %s", ErrIndexMissing, index)
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("%w: %s: %s", ErrSearchFailed, res.Status(), strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	raws := make([]models.RawJob, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		var raw models.RawJob
		if err := json.Unmarshal(hit.Source, &raw); err != nil {
			r.logger.Warn("skipping undecodable job document", map[string]interface{}{
				"index": index,
				"id":    hit.ID,
				"error": err.Error(),
			})
			continue
		}
		if strings.TrimSpace(raw.JobID) == "" {
			raw.JobID = hit.ID
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

func (r *JobRepository) Ping(ctx context.Context) error {
	res, err := r.client.Ping(r.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}
