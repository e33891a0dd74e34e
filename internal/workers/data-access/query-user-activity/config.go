// internal/workers/data-access/query-user-activity/config.go
package queryuseractivity

import "time"

type Config struct {
	Timeout time.Duration
	// TopJobs is how many job ids are reported in topJobIds.
	TopJobs int
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		TopJobs: 3,
	}
}
