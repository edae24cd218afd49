package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"verification-workers/internal/scoring/rubric"
)

func TestBreakdownTotal(t *testing.T) {
	b := Breakdown{
		Personal: 12, Business: 24, Banking: 9,
		Networth: 7.5, Debt: 5, EndUse: 10, References: 7,
	}
	assert.Equal(t, 74.5, b.Total())
}

func TestBreakdownGetSetRoundTrip(t *testing.T) {
	var b Breakdown
	for i, name := range rubric.CategoryNames() {
		b.set(name, float64(i+1))
	}
	for i, name := range rubric.CategoryNames() {
		assert.Equal(t, float64(i+1), b.Get(name))
	}
	assert.Equal(t, 0.0, b.Get("unknown"))
}

func TestZeroResult(t *testing.T) {
	r := ZeroResult("AI_NOT_CONFIGURED")

	assert.Equal(t, 0.0, r.Total())
	assert.Equal(t, "AI_NOT_CONFIGURED", r.ErrorTag)
	assert.Len(t, r.Warnings, 7)
	for _, name := range rubric.CategoryNames() {
		assert.Contains(t, r.Warnings, "no evidence found for category: "+name)
		assert.NotNil(t, r.Matches[name])
	}
}

func TestSumMatchedTruncatesAtCap(t *testing.T) {
	matches := MatchMap{}
	cat, _ := rubric.ByName(rubric.CategoryPersonal)
	for _, it := range cat.Items {
		matches[it.Name] = true
	}

	// all ten personal items at 1.5 sum to 15; force an over-cap sum by
	// checking the business conditional helper instead
	assert.Equal(t, 15.0, sumMatched(rubric.CategoryPersonal, matches))

	condMatches := MatchMap{}
	for _, it := range rubric.ConditionalItems(rubric.TypeUnknown) {
		condMatches[it.Name] = true
	}
	// seven conditional items at 2 each is 14, truncated to the shared cap
	assert.Equal(t, rubric.BusinessConditionalCap,
		sumItemsCapped(rubric.ConditionalItems(rubric.TypeUnknown), condMatches, rubric.ConditionalCap(rubric.TypeUnknown)))
}
