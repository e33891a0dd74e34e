// internal/ranking/text.go
package ranking

import (
	"fmt"
	"strconv"
	"strings"

	"job-recommender/internal/models"
)

// BuildJobText renders the paragraph embedded for a job. Title and
// description are written twice to weight them in the embedding.
func BuildJobText(job models.JobRecord, distanceKM float64) string {
	var b strings.Builder
	for i := 0; i < 2; i++ {
		fmt.Fprintf(&b, "Job Title: %s. ", job.JobTitle)
	}
	for i := 0; i < 2; i++ {
		fmt.Fprintf(&b, "Description: %s. ", job.Description)
	}
	fmt.Fprintf(&b, "Required Skills: %s. ", job.SkillsRequired)
	fmt.Fprintf(&b, "Experience Required: %s to %s years. ",
		formatNumber(job.ExperienceLevel[0]), formatNumber(job.ExperienceLevel[1]))
	fmt.Fprintf(&b, "Budget Offered: ₹%s. ", formatNumber(job.Budget))
	fmt.Fprintf(&b, "Location: %s (%d km away).", job.Location, int(distanceKM))
	return b.String()
}

func BuildUserText(profile models.UserProfile) string {
	return fmt.Sprintf(
		"Skills: %s. %d years of experience. Expected budget: ₹%s. User is located at latitude %s and longitude %s.",
		strings.Join(profile.Skills, ", "),
		profile.ExperienceYears,
		formatNumber(profile.TargetBudget),
		formatNumber(profile.Latitude),
		formatNumber(profile.Longitude),
	)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
