// internal/ranking/signals_test.go
package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"job-recommender/internal/models"
)

func TestNormalizeSkills(t *testing.T) {
	assert.Equal(t, []string{"python", "sql"}, NormalizeSkills([]string{" Python ", "", "SQL", "python", "   "}))
	assert.Empty(t, NormalizeSkills(nil))
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero norm", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-6)
		})
	}
}

func TestTitleScore(t *testing.T) {
	skills := []string{"python", "sql", "go"}
	assert.Equal(t, 2, TitleScore("Senior Python / SQL Engineer", skills))
	// Substring semantics: "go" matches inside "Google".
	assert.Equal(t, 1, TitleScore("Google Ads Specialist", skills))
	assert.Equal(t, 0, TitleScore("Accountant", skills))
	assert.Equal(t, 0, TitleScore("Python Developer", nil))
}

func TestSkillMatch(t *testing.T) {
	tests := []struct {
		name     string
		required string
		skills   []string
		want     int
	}{
		{"exact tokens", "Python, Excel", []string{"python", "sql"}, 1},
		{"both", " SQL ,python,", []string{"python", "sql"}, 2},
		{"no partial token match", "PostgreSQL", []string{"sql"}, 0},
		{"empty required", "", []string{"python"}, 0},
		{"empty skills", "Python", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SkillMatch(tt.required, tt.skills))
		})
	}
}

func TestIsMatched(t *testing.T) {
	skills := []string{"python", "sql"}
	assert.True(t, IsMatched("Python, Excel", skills))
	assert.False(t, IsMatched("Java", skills))
	assert.True(t, IsMatched("PostgreSQL", skills), "substring match")
	assert.False(t, IsMatched("Python", nil))
}

func TestBuildJobText(t *testing.T) {
	job := models.JobRecord{
		JobTitle:        "Data Analyst",
		Description:     "Build dashboards",
		SkillsRequired:  "Python, SQL",
		ExperienceLevel: [2]float64{1, 3.5},
		Budget:          45000,
		Location:        "Pune",
	}

	want := "Job Title: Data Analyst. Job Title: Data Analyst. " +
		"Description: Build dashboards. Description: Build dashboards. " +
		"Required Skills: Python, SQL. " +
		"Experience Required: 1 to 3.5 years. " +
		"Budget Offered: ₹45000. " +
		"Location: Pune (12 km away)."
	assert.Equal(t, want, BuildJobText(job, 12.9))
}

func TestBuildUserText(t *testing.T) {
	profile := models.UserProfile{
		Skills:          []string{"python", "sql"},
		ExperienceYears: 3,
		TargetBudget:    50000,
		Latitude:        18.5204,
		Longitude:       73.8567,
	}

	want := "Skills: python, sql. 3 years of experience. Expected budget: ₹50000. " +
		"User is located at latitude 18.5204 and longitude 73.8567."
	assert.Equal(t, want, BuildUserText(profile))
}

func TestMinMax(t *testing.T) {
	got := MinMax([]float64{3, 1, 2, 5})
	assert.InDeltaSlice(t, []float64{0.5, 0, 0.25, 1}, got, 1e-9)

	assert.Equal(t, []float64{0, 0, 0}, MinMax([]float64{7, 7, 7}))
	assert.Equal(t, []float64{0}, MinMax([]float64{4}))
	assert.Empty(t, MinMax(nil))
}

func TestMinMax_Bounds(t *testing.T) {
	cols := [][]float64{
		{-1, 0.5, 0.99, 0.2},
		{0, 0, 3, 1},
		{100, 250, 250, 10},
	}
	for _, col := range cols {
		got := MinMax(col)
		lo, hi := 0, 0
		for i, v := range col {
			assert.GreaterOrEqual(t, got[i], 0.0)
			assert.LessOrEqual(t, got[i], 1.0)
			if v < col[lo] {
				lo = i
			}
			if v > col[hi] {
				hi = i
			}
		}
		assert.Equal(t, 0.0, got[lo])
		assert.Equal(t, 1.0, got[hi])
	}
}

func TestFuse(t *testing.T) {
	jobs := []*models.ScoredJob{
		{SemanticRaw: 0.9, TitleRaw: 2, SkillMatchRaw: 1},
		{SemanticRaw: 0.1, TitleRaw: 0, SkillMatchRaw: 1},
		{SemanticRaw: 0.5, TitleRaw: 1, SkillMatchRaw: 1},
	}
	Fuse(jobs)

	assert.InDelta(t, 2.0, jobs[0].FinalScore, 1e-9)
	assert.InDelta(t, 0.0, jobs[1].FinalScore, 1e-9)
	assert.InDelta(t, 1.0, jobs[2].FinalScore, 1e-9)
	for _, j := range jobs {
		assert.Equal(t, 0.0, j.SkillMatchScore, "constant column normalizes to 0")
		assert.GreaterOrEqual(t, j.FinalScore, 0.0)
		assert.LessOrEqual(t, j.FinalScore, 3.0)
	}
}
