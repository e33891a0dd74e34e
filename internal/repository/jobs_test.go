// internal/repository/jobs_test.go
package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-recommender/internal/common/logger"
)

type capturedSearch struct {
	path  string
	query map[string][]string
	body  string
}

func newTestES(t *testing.T, status int, payload string, captured *capturedSearch) *elasticsearch.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if captured != nil && r.Method != http.MethodHead {
			body, _ := io.ReadAll(r.Body)
			captured.path = r.URL.Path
			captured.query = r.URL.Query()
			captured.body = string(body)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

const twoHits = `{
	"took": 1,
	"hits": {
		"total": {"value": 3},
		"hits": [
			{"_id": "doc-1", "_source": {"job_id": "j1", "jobTitle": "Data Analyst", "budgetRange": "₹10,000 - 20,000", "latitude": "18.52", "longitude": 73.85, "skillsRequired": ["Python", "SQL"]}},
			{"_id": "doc-2", "_source": {"jobTitle": "Designer", "experienceLevel": "6 to 18 months"}},
			{"_id": "doc-3", "_source": "not an object"}
		]
	}
}`

func TestJobRepository_FetchJobs(t *testing.T) {
	var captured capturedSearch
	client := newTestES(t, http.StatusOK, twoHits, &captured)
	repo := NewJobRepository(client, "", 0, logger.NewTestLogger(t))

	jobs, err := repo.FetchJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "j1", jobs[0].JobID)
	assert.Equal(t, 15000.0, jobs[0].Budget)
	assert.Equal(t, 18.52, jobs[0].Latitude)
	assert.Equal(t, "Python, SQL", jobs[0].SkillsRequired)

	assert.Equal(t, "doc-2", jobs[1].JobID, "document _id is the fallback job id")
	assert.InDelta(t, 0.5, jobs[1].ExperienceLevel[0], 1e-9)
	assert.InDelta(t, 1.5, jobs[1].ExperienceLevel[1], 1e-9)

	assert.Equal(t, "/jobs/_search", captured.path)
	assert.Equal(t, "1000", captured.query["size"][0])
	assert.Equal(t, "_doc", captured.query["sort"][0])

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(captured.body), &body))
	assert.Contains(t, body["query"], "match_all")
}

func TestJobRepository_SearchOverrides(t *testing.T) {
	var captured capturedSearch
	client := newTestES(t, http.StatusOK, `{"hits":{"hits":[]}}`, &captured)
	repo := NewJobRepository(client, "jobs", 1000, logger.NewNoOpLogger())

	raws, err := repo.Search(context.Background(), "archived-jobs", 25)
	require.NoError(t, err)
	assert.Empty(t, raws)
	assert.Equal(t, "/archived-jobs/_search", captured.path)
	assert.Equal(t, "25", captured.query["size"][0])
}

func TestJobRepository_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
		wantErr error
	}{
		{
			name:    "missing index",
			status:  http.StatusNotFound,
			payload: `{"error":{"type":"index_not_found_exception"},"status":404}`,
			wantErr: ErrIndexMissing,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			payload: `{"error":"boom"}`,
			wantErr: ErrSearchFailed,
		},
		{
			name:    "undecodable body",
			status:  http.StatusOK,
			payload: `{"hits":`,
			wantErr: ErrSearchFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestES(t, tt.status, tt.payload, nil)
			repo := NewJobRepository(client, "jobs", 10, logger.NewNoOpLogger())

			jobs, err := repo.FetchJobs(context.Background())
			assert.Nil(t, jobs)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJobRepository_Ping(t *testing.T) {
	client := newTestES(t, http.StatusOK, `{}`, nil)
	repo := NewJobRepository(client, "jobs", 10, logger.NewNoOpLogger())
	assert.NoError(t, repo.Ping(context.Background()))

	failing := newTestES(t, http.StatusServiceUnavailable, `{}`, nil)
	repo = NewJobRepository(failing, "jobs", 10, logger.NewNoOpLogger())
	assert.Error(t, repo.Ping(context.Background()))
}
