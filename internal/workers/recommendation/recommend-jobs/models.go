// internal/workers/recommendation/recommend-jobs/models.go
package recommendjobs

import "job-recommender/internal/models"

// Input holds the seeker fields plus an optional store snapshot produced by
// earlier tasks of the process.
type Input struct {
	Email      string   `json:"email"`
	Skills     []string `json:"skills"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Experience float64  `json:"experience"`
	Budget     float64  `json:"budget"`

	Jobs     []models.JobRecord `json:"jobs,omitempty"`
	Activity models.Activity    `json:"activity,omitempty"`
}

type Output struct {
	Recommendations     []models.Recommendation `json:"recommendations"`
	RecommendationCount int                     `json:"recommendationCount"`
	NoRecommendations   bool                    `json:"noRecommendations"`
	RunID               string                  `json:"runId"`
}
