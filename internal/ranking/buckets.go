// internal/ranking/buckets.go
package ranking

import (
	"sort"

	"job-recommender/internal/models"
)

type Predicate func(*models.ScoredJob) bool

// Partition splits jobs by pred, keeping the input order on both sides.
func Partition(jobs []*models.ScoredJob, pred Predicate) (in, out []*models.ScoredJob) {
	in = make([]*models.ScoredJob, 0, len(jobs))
	out = make([]*models.ScoredJob, 0, len(jobs))
	for _, j := range jobs {
		if pred(j) {
			in = append(in, j)
		} else {
			out = append(out, j)
		}
	}
	return in, out
}

func SortByDistance(jobs []*models.ScoredJob) {
	sort.SliceStable(jobs, func(i, k int) bool {
		return jobs[i].DistanceKM < jobs[k].DistanceKM
	})
}

func SortByFinalScore(jobs []*models.ScoredJob) {
	sort.SliceStable(jobs, func(i, k int) bool {
		return jobs[i].FinalScore > jobs[k].FinalScore
	})
}

func SortBySemanticScore(jobs []*models.ScoredJob) {
	sort.SliceStable(jobs, func(i, k int) bool {
		return jobs[i].SemanticScore > jobs[k].SemanticScore
	})
}

func Concat(groups ...[]*models.ScoredJob) []*models.ScoredJob {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]*models.ScoredJob, 0, total)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// DedupByID drops every job whose id was already seen earlier in the slice.
func DedupByID(jobs []*models.ScoredJob) []*models.ScoredJob {
	seen := make(map[string]bool, len(jobs))
	out := make([]*models.ScoredJob, 0, len(jobs))
	for _, j := range jobs {
		if seen[j.Job.JobID] {
			continue
		}
		seen[j.Job.JobID] = true
		out = append(out, j)
	}
	return out
}

func Truncate(jobs []*models.ScoredJob, n int) []*models.ScoredJob {
	if n >= 0 && len(jobs) > n {
		return jobs[:n]
	}
	return jobs
}

func SetBucket(jobs []*models.ScoredJob, bucket models.Bucket) {
	for _, j := range jobs {
		j.Bucket = bucket
	}
}

// FilterLocated keeps the jobs with a known location.
func FilterLocated(jobs []models.JobRecord) []models.JobRecord {
	out := make([]models.JobRecord, 0, len(jobs))
	for _, j := range jobs {
		if j.HasLocation() {
			out = append(out, j)
		}
	}
	return out
}

// InBudgetWindow matches jobs whose budget lies within target ± tolerance.
func InBudgetWindow(target, tolerance float64) Predicate {
	lo := target * (1 - tolerance)
	hi := target * (1 + tolerance)
	return func(j *models.ScoredJob) bool {
		return j.Job.Budget >= lo && j.Job.Budget <= hi
	}
}

func MatchesAnySkill(skills []string) Predicate {
	return func(j *models.ScoredJob) bool {
		return IsMatched(j.Job.SkillsRequired, skills)
	}
}
