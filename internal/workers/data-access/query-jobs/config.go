// internal/workers/data-access/query-jobs/config.go
package queryjobs

import "time"

type Config struct {
	Timeout time.Duration
	Index   string
	MaxJobs int
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Index:   "jobs",
		MaxJobs: 1000,
	}
}
