// internal/workers/recommendation/normalize-job-fields/models.go
package normalizejobfields

import "job-recommender/internal/models"

type Input struct {
	RawJobs []models.RawJob `json:"rawJobs"`
}

type Output struct {
	Jobs         []models.JobRecord `json:"jobs"`
	DroppedCount int                `json:"droppedCount"`
}
