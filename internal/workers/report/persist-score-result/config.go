// internal/workers/report/persist-score-result/config.go
package persistscoreresult

import "time"

type Config struct {
	Timeout    time.Duration
	ScoreIndex string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		ScoreIndex: "verification-scores",
	}
}
