// internal/workers/report/notify-review/models.go
package notifyreview

type Input struct {
	ReportID      string   `json:"reportId"`
	Strategy      string   `json:"strategy"`
	Total         float64  `json:"total"`
	Warnings      []string `json:"warnings"`
	ErrorTag      string   `json:"errorTag"`
	ReviewerPhone string   `json:"reviewerPhone"`
}

type Output struct {
	ReportID string   `json:"reportId"`
	Notified bool     `json:"notified"`
	Reasons  []string `json:"reasons"`
	Channels []string `json:"channels"`
}
