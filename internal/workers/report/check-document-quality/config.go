// internal/workers/report/check-document-quality/config.go
package checkdocumentquality

import "time"

type Config struct {
	Timeout          time.Duration
	MinReportLength  int
	RequiredSections []string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          10 * time.Second,
		MinReportLength:  200,
		RequiredSections: []string{"personal", "business", "banking"},
	}
}
