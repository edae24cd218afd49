// internal/workers/report/score-verification/models.go
package scoreverification

import "verification-workers/internal/scoring"

type Input struct {
	ReportID   string                 `json:"reportId"`
	Draft      map[string]interface{} `json:"draft"`
	ReportText string                 `json:"reportText"`
	Strategy   string                 `json:"strategy"`
}

type Output struct {
	ReportID  string                      `json:"reportId"`
	Strategy  string                      `json:"strategy"`
	Scores    scoring.Breakdown           `json:"scores"`
	Total     float64                     `json:"total"`
	Matches   map[string]scoring.MatchMap `json:"matches"`
	Warnings  []string                    `json:"warnings"`
	Rationale string                      `json:"rationale"`
	ErrorTag  string                      `json:"errorTag,omitempty"`
	FromCache bool                        `json:"fromCache"`
}
