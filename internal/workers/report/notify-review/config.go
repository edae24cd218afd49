// internal/workers/report/notify-review/config.go
package notifyreview

import (
	"time"

	"verification-workers/internal/common/config"
)

type Config struct {
	Timeout         time.Duration
	ReviewThreshold float64
	EmailEnabled    bool
	FromEmail       string
	ReviewTo        string
	SMSEnabled      bool
	SenderID        string
}

// LoadConfig maps the notification settings and review threshold.
func LoadConfig(notifications config.NotificationConfig, reviewThreshold float64) *Config {
	return &Config{
		Timeout:         30 * time.Second,
		ReviewThreshold: reviewThreshold,
		EmailEnabled:    notifications.Email.Enabled,
		FromEmail:       notifications.Email.FromEmail,
		ReviewTo:        notifications.Email.ReviewTo,
		SMSEnabled:      notifications.SMS.Enabled,
		SenderID:        notifications.SMS.SenderID,
	}
}
