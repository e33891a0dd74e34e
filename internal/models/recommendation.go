// internal/models/recommendation.go
package models

import "time"

type Bucket string

const (
	BucketPriority     Bucket = "priority"
	BucketMatched      Bucket = "matched"
	BucketPersonalized Bucket = "personalized"
	BucketRanked       Bucket = "ranked"
)

// ScoredJob carries one candidate through a ranking run. Normalized scores
// are relative to the candidate set of that run only.
type ScoredJob struct {
	Job        JobRecord
	DistanceKM float64
	JobText    string
	Embedding  []float32

	SemanticRaw   float64
	TitleRaw      float64
	SkillMatchRaw float64

	SemanticScore   float64
	TitleScore      float64
	SkillMatchScore float64
	FinalScore      float64

	Bucket Bucket
}

type Recommendation struct {
	JobID           string     `json:"job_id"`
	JobTitle        string     `json:"jobTitle"`
	Categories      []string   `json:"categories"`
	Location        string     `json:"location"`
	DistanceKM      float64    `json:"distance_km"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	SkillsRequired  string     `json:"skillsRequired"`
	Budget          float64    `json:"budgetRange"`
	Description     string     `json:"description"`
	ExperienceLevel [2]float64 `json:"experienceLevel"`
	JobDate         *time.Time `json:"jobDate"`
	SemanticScore   float64    `json:"semantic_score"`
	TitleScore      float64    `json:"title_score"`
	SkillMatchScore float64    `json:"skill_match_score"`
	FinalScore      float64    `json:"final_score"`
	JobText         string     `json:"job_text"`
	Bucket          Bucket     `json:"bucket"`
}

func (s *ScoredJob) Recommendation() Recommendation {
	return Recommendation{
		JobID:           s.Job.JobID,
		JobTitle:        s.Job.JobTitle,
		Categories:      s.Job.Categories,
		Location:        s.Job.Location,
		DistanceKM:      s.DistanceKM,
		Latitude:        s.Job.Latitude,
		Longitude:       s.Job.Longitude,
		SkillsRequired:  s.Job.SkillsRequired,
		Budget:          s.Job.Budget,
		Description:     s.Job.Description,
		ExperienceLevel: s.Job.ExperienceLevel,
		JobDate:         s.Job.JobDate,
		SemanticScore:   s.SemanticScore,
		TitleScore:      s.TitleScore,
		SkillMatchScore: s.SkillMatchScore,
		FinalScore:      s.FinalScore,
		JobText:         s.JobText,
		Bucket:          s.Bucket,
	}
}
