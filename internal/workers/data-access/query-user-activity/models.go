// internal/workers/data-access/query-user-activity/models.go
package queryuseractivity

import "job-recommender/internal/models"

type Input struct {
	Email string `json:"email"`
}

type Output struct {
	Activity    models.Activity `json:"activity"`
	TopJobIDs   []string        `json:"topJobIds"`
	HasActivity bool            `json:"hasActivity"`
}
