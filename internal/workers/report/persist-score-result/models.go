// internal/workers/report/persist-score-result/models.go
package persistscoreresult

import "verification-workers/internal/scoring"

type Input struct {
	ReportID  string            `json:"reportId"`
	Strategy  string            `json:"strategy"`
	Scores    scoring.Breakdown `json:"scores"`
	Total     float64           `json:"total"`
	Warnings  []string          `json:"warnings"`
	Rationale string            `json:"rationale"`
	ErrorTag  string            `json:"errorTag"`
}

type Output struct {
	ScoreID     string `json:"scoreId"`
	ReportID    string `json:"reportId"`
	Indexed     bool   `json:"indexed"`
	PersistedAt string `json:"persistedAt"`
}

// scoreDocument is the Elasticsearch projection reviewers search over.
type scoreDocument struct {
	ScoreID   string            `json:"scoreId"`
	ReportID  string            `json:"reportId"`
	Strategy  string            `json:"strategy"`
	Scores    scoring.Breakdown `json:"scores"`
	Total     float64           `json:"total"`
	Warnings  []string          `json:"warnings"`
	Rationale string            `json:"rationale"`
	ErrorTag  string            `json:"errorTag,omitempty"`
	CreatedAt string            `json:"createdAt"`
}
