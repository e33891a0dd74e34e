// internal/models/user.go
package models

type UserProfile struct {
	Email           string   `json:"email"`
	Skills          []string `json:"skills"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	ExperienceYears int      `json:"experience"`
	TargetBudget    float64  `json:"budget"`
}
