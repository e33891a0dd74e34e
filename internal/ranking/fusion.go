// internal/ranking/fusion.go
package ranking

import "job-recommender/internal/models"

// MinMax scales values onto [0,1]. A constant column maps to all zeros.
func MinMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// Fuse normalizes each raw signal column across jobs and sets FinalScore to
// their sum. Distance stays out of the fused score.
func Fuse(jobs []*models.ScoredJob) {
	n := len(jobs)
	semantic := make([]float64, n)
	title := make([]float64, n)
	skill := make([]float64, n)
	for i, j := range jobs {
		semantic[i] = j.SemanticRaw
		title[i] = j.TitleRaw
		skill[i] = j.SkillMatchRaw
	}

	semantic = MinMax(semantic)
	title = MinMax(title)
	skill = MinMax(skill)

	for i, j := range jobs {
		j.SemanticScore = semantic[i]
		j.TitleScore = title[i]
		j.SkillMatchScore = skill[i]
		j.FinalScore = semantic[i] + title[i] + skill[i]
	}
}
