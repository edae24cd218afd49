// internal/workers/report/score-verification/schema.go
package scoreverification

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// draftSchema describes the expected shape of a structured report draft.
// Validation is advisory: findings become warnings, never failures, because
// the mapper tolerates any shape.
const draftSchema = `{
	"type": "object",
	"properties": {
		"personal":   {"type": "object"},
		"business":   {"type": "object"},
		"banking":    {"type": "object"},
		"networth":   {"type": "object"},
		"debt":       {"type": "object"},
		"endUse":     {"type": "object"},
		"references": {"type": "object"}
	},
	"additionalProperties": true
}`

var compiledDraftSchema = gojsonschema.NewStringLoader(draftSchema)

// validateDraft returns advisory warnings for a draft that deviates from the
// documented section layout.
func validateDraft(draft map[string]interface{}) []string {
	result, err := gojsonschema.Validate(compiledDraftSchema, gojsonschema.NewGoLoader(draft))
	if err != nil {
		return []string{fmt.Sprintf("draft schema check skipped: %v", err)}
	}
	if result.Valid() {
		return nil
	}
	warnings := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		warnings = append(warnings, fmt.Sprintf("draft schema: %s", desc.String()))
	}
	return warnings
}
