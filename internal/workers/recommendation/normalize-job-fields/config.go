// internal/workers/recommendation/normalize-job-fields/config.go
package normalizejobfields

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}
