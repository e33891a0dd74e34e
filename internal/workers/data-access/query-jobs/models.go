// internal/workers/data-access/query-jobs/models.go
package queryjobs

import "job-recommender/internal/models"

type Input struct {
	IndexName string `json:"indexName,omitempty"`
	MaxJobs   int    `json:"maxJobs,omitempty"`
}

type Output struct {
	Jobs      []models.JobRecord `json:"jobs"`
	TotalJobs int                `json:"totalJobs"`
}
