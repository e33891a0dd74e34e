// internal/ranking/signals.go
package ranking

import (
	"math"
	"strings"

	"job-recommender/internal/models"
)

// NormalizeSkills lower-cases and trims skills, dropping blanks and
// duplicates while keeping the first-seen order.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Cosine returns the cosine similarity of two vectors. Vectors of different
// length or with zero norm score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TitleScore counts the skills that appear in the title. skills must already
// be normalized.
func TitleScore(title string, skills []string) int {
	title = strings.ToLower(title)
	score := 0
	for _, s := range skills {
		if strings.Contains(title, s) {
			score++
		}
	}
	return score
}

// SkillMatch counts the skills present in the comma-separated required
// skills. skills must already be normalized.
func SkillMatch(required string, skills []string) int {
	if required == "" || len(skills) == 0 {
		return 0
	}
	jobSkills := make(map[string]bool)
	for _, s := range strings.Split(required, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			jobSkills[s] = true
		}
	}
	count := 0
	for _, s := range skills {
		if jobSkills[s] {
			count++
		}
	}
	return count
}

// IsMatched reports whether any skill is a substring of the required skills
// text. skills must already be normalized.
func IsMatched(required string, skills []string) bool {
	required = strings.ToLower(required)
	for _, s := range skills {
		if strings.Contains(required, s) {
			return true
		}
	}
	return false
}

// ScoreSignals fills the raw signals of a candidate whose embedding and
// distance are already set.
func ScoreSignals(job *models.ScoredJob, userVector []float32, skills []string) {
	job.SemanticRaw = Cosine(userVector, job.Embedding)
	job.TitleRaw = float64(TitleScore(job.Job.JobTitle, skills))
	job.SkillMatchRaw = float64(SkillMatch(job.Job.SkillsRequired, skills))
}
