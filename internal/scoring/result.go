// internal/scoring/result.go
package scoring

import "verification-workers/internal/scoring/rubric"

// Breakdown carries the per-category scores. Each value is already capped
// at its category maximum, so Total never exceeds 100.
type Breakdown struct {
	Personal   float64 `json:"personal"`
	Business   float64 `json:"business"`
	Banking    float64 `json:"banking"`
	Networth   float64 `json:"networth"`
	Debt       float64 `json:"debt"`
	EndUse     float64 `json:"endUse"`
	References float64 `json:"references"`
}

// Get returns the score for a category by its rubric name.
func (b Breakdown) Get(category string) float64 {
	switch category {
	case rubric.CategoryPersonal:
		return b.Personal
	case rubric.CategoryBusiness:
		return b.Business
	case rubric.CategoryBanking:
		return b.Banking
	case rubric.CategoryNetworth:
		return b.Networth
	case rubric.CategoryDebt:
		return b.Debt
	case rubric.CategoryEndUse:
		return b.EndUse
	case rubric.CategoryReferences:
		return b.References
	default:
		return 0
	}
}

func (b *Breakdown) set(category string, score float64) {
	switch category {
	case rubric.CategoryPersonal:
		b.Personal = score
	case rubric.CategoryBusiness:
		b.Business = score
	case rubric.CategoryBanking:
		b.Banking = score
	case rubric.CategoryNetworth:
		b.Networth = score
	case rubric.CategoryDebt:
		b.Debt = score
	case rubric.CategoryEndUse:
		b.EndUse = score
	case rubric.CategoryReferences:
		b.References = score
	}
}

// Total sums the capped category scores.
func (b Breakdown) Total() float64 {
	return b.Personal + b.Business + b.Banking + b.Networth +
		b.Debt + b.EndUse + b.References
}

// MatchMap records per-item verification outcomes for one category.
type MatchMap map[string]bool

// Result is the shared output contract of every scorer strategy. It is
// always usable for display: a scorer that cannot evaluate returns zeros
// with warnings instead of erroring out.
type Result struct {
	Scores    Breakdown           `json:"scores"`
	Matches   map[string]MatchMap `json:"matches"`
	Warnings  []string            `json:"warnings,omitempty"`
	Rationale string              `json:"rationale,omitempty"`
	ErrorTag  string              `json:"errorTag,omitempty"`
}

// Total is the overall score out of 100.
func (r *Result) Total() float64 {
	return r.Scores.Total()
}

// NewResult returns an empty result with a match map slot per category.
func NewResult() *Result {
	matches := make(map[string]MatchMap, len(rubric.CategoryNames()))
	for _, name := range rubric.CategoryNames() {
		matches[name] = MatchMap{}
	}
	return &Result{Matches: matches}
}

// ZeroResult is the degraded fallback: all categories scored zero, each
// flagged with a coverage warning, optionally tagged with a failure cause.
func ZeroResult(errorTag string) *Result {
	r := NewResult()
	r.ErrorTag = errorTag
	for _, name := range rubric.CategoryNames() {
		r.Warnings = append(r.Warnings, "no evidence found for category: "+name)
	}
	return r
}

// sumMatched adds the weights of matched items and truncates at the
// category cap. Truncation, never proportional scaling.
func sumMatched(category string, matches MatchMap) float64 {
	cat, ok := rubric.ByName(category)
	if !ok {
		return 0
	}
	return sumItemsCapped(cat.Items, matches, cat.Cap)
}

func sumItemsCapped(items []rubric.Item, matches MatchMap, limit float64) float64 {
	sum := 0.0
	for _, it := range items {
		if matches[it.Name] {
			sum += it.Weight
		}
	}
	return clamp(sum, 0, limit)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
