// internal/workers/recommendation/recommend-jobs/config.go
package recommendjobs

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 60 * time.Second}
}
