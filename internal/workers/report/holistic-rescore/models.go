// internal/workers/report/holistic-rescore/models.go
package holisticrescore

import "verification-workers/internal/scoring"

type Input struct {
	ReportID   string                 `json:"reportId"`
	Draft      map[string]interface{} `json:"draft"`
	ReportText string                 `json:"reportText"`
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
}
