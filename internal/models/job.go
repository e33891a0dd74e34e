// internal/models/job.go
package models

import (
	"math"
	"time"
)

// RawJob is a job document as stored upstream, before field normalization.
// Free-text and list-or-string fields stay untyped until normalize.Job runs.
type RawJob struct {
	JobID           string      `json:"job_id"`
	JobTitle        string      `json:"jobTitle"`
	Categories      interface{} `json:"categories"`
	Description     string      `json:"description"`
	JobType         string      `json:"jobType"`
	Location        string      `json:"location"`
	Latitude        interface{} `json:"latitude"`
	Longitude       interface{} `json:"longitude"`
	SkillsRequired  interface{} `json:"skillsRequired"`
	BudgetRange     interface{} `json:"budgetRange"`
	ExperienceLevel interface{} `json:"experienceLevel"`
	JobDate         interface{} `json:"jobDate"`
}

// JobRecord is a normalized job posting. Zero latitude or longitude means
// the location is unknown.
type JobRecord struct {
	JobID           string     `json:"job_id"`
	JobTitle        string     `json:"jobTitle"`
	Categories      []string   `json:"categories"`
	Description     string     `json:"description"`
	JobType         string     `json:"jobType"`
	Location        string     `json:"location"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	SkillsRequired  string     `json:"skillsRequired"`
	Budget          float64    `json:"budgetRange"`
	ExperienceLevel [2]float64 `json:"experienceLevel"`
	JobDate         *time.Time `json:"jobDate"`
}

// HasLocation reports whether both coordinates are finite and non-zero.
func (j JobRecord) HasLocation() bool {
	return finite(j.Latitude) && finite(j.Longitude) && j.Latitude != 0 && j.Longitude != 0
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
