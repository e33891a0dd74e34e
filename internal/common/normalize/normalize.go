// internal/common/normalize/normalize.go
package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"job-recommender/internal/models"
)

var (
	digitsRe     = regexp.MustCompile(`\d+`)
	expRangeRe   = regexp.MustCompile(`(\d+)\s*[-–]\s*(\d+)`)
	jobDateForms = []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02 15:04:05",
		"02/01/2006",
		"01/02/2006",
	}
)

// Job converts an upstream document into a JobRecord. Fields that cannot be
// parsed fall back to zero values; it never fails.
func Job(raw models.RawJob) models.JobRecord {
	return models.JobRecord{
		JobID:           strings.TrimSpace(raw.JobID),
		JobTitle:        raw.JobTitle,
		Categories:      ParseCategories(raw.Categories),
		Description:     raw.Description,
		JobType:         raw.JobType,
		Location:        raw.Location,
		Latitude:        ParseCoordinate(raw.Latitude),
		Longitude:       ParseCoordinate(raw.Longitude),
		SkillsRequired:  JoinSkills(raw.SkillsRequired),
		Budget:          ParseBudget(raw.BudgetRange),
		ExperienceLevel: ParseExperienceLevel(raw.ExperienceLevel),
		JobDate:         ParseJobDate(raw.JobDate),
	}
}

// Jobs normalizes a batch. Documents without a job_id are dropped and counted.
func Jobs(raws []models.RawJob) ([]models.JobRecord, int) {
	jobs := make([]models.JobRecord, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		job := Job(raw)
		if job.JobID == "" {
			dropped++
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, dropped
}

// ParseBudget reduces a budget value to one number. Strings such as
// "₹10,000 - 20,000" yield the mean of every integer token (15000).
func ParseBudget(v interface{}) float64 {
	if f, ok := toFloat(v); ok {
		return f
	}
	s, ok := v.(string)
	if !ok {
		return 0
	}

	tokens := digitsRe.FindAllString(strings.ReplaceAll(s, ",", ""), -1)
	if len(tokens) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tokens {
		n, err := strconv.ParseFloat(t, 64)
		if err != nil {
			continue
		}
		sum += n
	}
	return sum / float64(len(tokens))
}

// ParseExperienceLevel reduces an experience requirement to [min, max] years.
// Month-based values are divided by 12.
func ParseExperienceLevel(v interface{}) [2]float64 {
	switch val := v.(type) {
	case []interface{}:
		if len(val) == 2 {
			lo, okLo := toFloat(val[0])
			hi, okHi := toFloat(val[1])
			if okLo && okHi {
				return [2]float64{lo, hi}
			}
		}
		return [2]float64{}
	case []float64:
		if len(val) == 2 {
			return [2]float64{val[0], val[1]}
		}
		return [2]float64{}
	case string:
		return parseExperienceString(val)
	}
	return [2]float64{}
}

func parseExperienceString(s string) [2]float64 {
	if s == "" {
		return [2]float64{}
	}
	s = strings.ReplaceAll(strings.ToLower(s), "to", "-")
	divisor := 1.0
	if strings.Contains(s, "month") {
		divisor = 12
	}

	if m := expRangeRe.FindStringSubmatch(s); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		return [2]float64{lo / divisor, hi / divisor}
	}
	if m := digitsRe.FindString(s); m != "" {
		n, _ := strconv.ParseFloat(m, 64)
		return [2]float64{n / divisor, n / divisor}
	}
	return [2]float64{}
}

// JoinSkills flattens a skills value into the comma-separated text the
// skill matcher splits on.
func JoinSkills(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func ParseCategories(v interface{}) []string {
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return []string{}
		}
		return []string{val}
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

// ParseCoordinate accepts finite numbers and numeric strings. Anything else,
// NaN and infinities included, is 0, which the ranking stage reads as an
// unknown location.
func ParseCoordinate(v interface{}) float64 {
	f, ok := toFloat(v)
	if !ok {
		s, isString := v.(string)
		if !isString {
			return 0
		}
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func ParseJobDate(v interface{}) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range jobDateForms {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
