// internal/workers/report/score-verification/config.go
package scoreverification

import "time"

type Config struct {
	Timeout         time.Duration
	DefaultStrategy string
	CacheTTL        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		DefaultStrategy: "deterministic",
		CacheTTL:        time.Hour,
	}
}
