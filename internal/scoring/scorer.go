// internal/scoring/scorer.go
package scoring

import (
	"context"

	"verification-workers/internal/scoring/applicant"
)

// Subject is what a scorer evaluates: the mapped applicant record, the raw
// report text, or both. Strategies use whichever part they understand.
type Subject struct {
	Applicant *applicant.Data
	Text      string
}

// Scorer is the common strategy contract. Implementations never return an
// error: an evaluation that cannot proceed yields a zero result with its
// cause in Result.ErrorTag, so callers always have something to render.
type Scorer interface {
	Score(ctx context.Context, subject Subject) *Result
	Name() string
}
