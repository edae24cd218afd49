// internal/workers/report/holistic-rescore/config.go
package holisticrescore

import (
	"time"

	"verification-workers/internal/common/config"
	"verification-workers/internal/scoring"
)

type Config struct {
	Timeout time.Duration
	AI      scoring.HolisticConfig
}

// LoadConfig maps the GenAI settings into the holistic adapter's config.
func LoadConfig(genai config.GenAIConfig) *Config {
	return &Config{
		Timeout: 120 * time.Second,
		AI: scoring.HolisticConfig{
			BaseURL:     genai.BaseURL,
			APIKey:      genai.APIKey,
			Model:       genai.Model,
			Timeout:     time.Duration(genai.Timeout) * time.Millisecond,
			MaxRetries:  genai.MaxRetries,
			RetryDelay:  time.Duration(genai.RetryDelay) * time.Millisecond,
			MaxTokens:   genai.MaxTokens,
			Temperature: genai.Temperature,
		},
	}
}
