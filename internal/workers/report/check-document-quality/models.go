// internal/workers/report/check-document-quality/models.go
package checkdocumentquality

type Input struct {
	ReportID   string                 `json:"reportId"`
	ReportText string                 `json:"reportText"`
	Draft      map[string]interface{} `json:"draft"`
	Decision   string                 `json:"decision"`
	ReportDate string                 `json:"reportDate"`
}

type Output struct {
	ReportID     string   `json:"reportId"`
	QualityScore float64  `json:"qualityScore"`
	Acceptable   bool     `json:"acceptable"`
	Issues       []string `json:"issues"`
}
