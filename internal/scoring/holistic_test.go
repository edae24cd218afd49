package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verification-workers/internal/common/logger"
	"verification-workers/internal/scoring/applicant"
	"verification-workers/internal/scoring/rubric"
)

func newHolistic(t *testing.T, cfg HolisticConfig) *HolisticScorer {
	return NewHolisticScorer(cfg, logger.NewTestLogger(t))
}

func aiServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func aiReply(scores map[string]float64, rationale string) string {
	payload := map[string]interface{}{
		"scores":    scores,
		"matches":   map[string]map[string]bool{},
		"rationale": rationale,
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func TestHolisticNotConfigured(t *testing.T) {
	s := newHolistic(t, HolisticConfig{})

	result := s.Score(context.Background(), Subject{Text: "report"})
	require.NotNil(t, result)
	assert.Equal(t, ErrAINotConfigured, result.ErrorTag)
	assert.Equal(t, 0.0, result.Total())
	assert.Len(t, result.Warnings, 7)
}

func TestHolisticHappyPath(t *testing.T) {
	srv := aiServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt, _ := req["prompt"].(string)
		assert.Contains(t, prompt, "personal (cap 15)")

		reply := aiReply(map[string]float64{
			"personal": 12, "business": 24, "banking": 9,
			"networth": 7.5, "debt": 5, "endUse": 10, "references": 7,
		}, "well documented applicant")
		json.NewEncoder(w).Encode(map[string]string{"text": reply})
	})

	s := newHolistic(t, HolisticConfig{BaseURL: srv.URL, APIKey: "test-key"})
	result := s.Score(context.Background(), Subject{Text: "report text"})

	assert.Empty(t, result.ErrorTag)
	assert.Equal(t, 74.5, result.Total())
	assert.Equal(t, "well documented applicant", result.Rationale)
	assert.Empty(t, result.Warnings)
}

func TestHolisticExtractsJSONFromProse(t *testing.T) {
	srv := aiServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply := "Here is my assessment:\n" +
			aiReply(map[string]float64{"personal": 6}, "partial evidence") +
			"\nLet me know if you need more detail."
		json.NewEncoder(w).Encode(map[string]string{"text": reply})
	})

	s := newHolistic(t, HolisticConfig{BaseURL: srv.URL})
	result := s.Score(context.Background(), Subject{Text: "report"})

	assert.Empty(t, result.ErrorTag)
	assert.Equal(t, 6.0, result.Scores.Personal)
}

func TestHolisticClampsOutOfRangeScores(t *testing.T) {
	srv := aiServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply := aiReply(map[string]float64{
			"personal": 40, "business": -3, "banking": 15,
		}, "")
		json.NewEncoder(w).Encode(map[string]string{"text": reply})
	})

	s := newHolistic(t, HolisticConfig{BaseURL: srv.URL})
	result := s.Score(context.Background(), Subject{Text: "report"})

	assert.Equal(t, rubric.CapOf(rubric.CategoryPersonal), result.Scores.Personal)
	assert.Equal(t, 0.0, result.Scores.Business)
	assert.Equal(t, 15.0, result.Scores.Banking)
}

func TestHolisticCoercesStringValues(t *testing.T) {
	srv := aiServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply := `{"scores": {"personal": "7.5", "banking": "nine"},
			"matches": {"personal": {"spouseNameDocumented": "true", "dateOfBirthDocumented": "false"}},
			"rationale": "mixed types"}`
		json.NewEncoder(w).Encode(map[string]string{"text": reply})
	})

	s := newHolistic(t, HolisticConfig{BaseURL: srv.URL})
	result := s.Score(context.Background(), Subject{Text: "report"})

	assert.Equal(t, 7.5, result.Scores.Personal)
	assert.Equal(t, 0.0, result.Scores.Banking)
	assert.True(t, result.Matches[rubric.CategoryPersonal][rubric.ItemSpouseName])
	assert.False(t, result.Matches[rubric.CategoryPersonal][rubric.ItemDateOfBirth])
}

func TestHolisticRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := aiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		reply := aiReply(map[string]float64{"references": 7}, "")
		json.NewEncoder(w).Encode(map[string]string{"text": reply})
	})

	s := newHolistic(t, HolisticConfig{
		BaseURL:    srv.URL,
		MaxRetries: 3,
		RetryDelay: 5 * time.Millisecond,
	})
	result := s.Score(context.Background(), Subject{Text: "report"})

	assert.Empty(t, result.ErrorTag)
	assert.Equal(t, 7.0, result.Scores.References)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHolisticExhaustedRetries(t *testing.T) {
	srv := aiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	s := newHolistic(t, HolisticConfig{
		BaseURL:    srv.URL,
		MaxRetries: 1,
		RetryDelay: 5 * time.Millisecond,
	})
	result := s.Score(context.Background(), Subject{Text: "report"})

	assert.True(t, strings.HasPrefix(result.ErrorTag, "SCORING_FAILED: "))
	assert.Contains(t, result.ErrorTag, "status 500")
	assert.Equal(t, 0.0, result.Total())
	assert.Len(t, result.Warnings, 7)
}

func TestHolisticUnusableResponse(t *testing.T) {
	srv := aiServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"text": "I cannot score this applicant."})
	})

	s := newHolistic(t, HolisticConfig{BaseURL: srv.URL})
	result := s.Score(context.Background(), Subject{Text: "report"})

	assert.True(t, strings.HasPrefix(result.ErrorTag, "SCORING_FAILED: "))
	assert.Equal(t, 0.0, result.Total())
}

func TestHolisticTimeout(t *testing.T) {
	srv := aiServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, "{}")
	})

	s := newHolistic(t, HolisticConfig{
		BaseURL: srv.URL,
		Timeout: 30 * time.Millisecond,
	})
	result := s.Score(context.Background(), Subject{Text: "report"})

	assert.True(t, strings.HasPrefix(result.ErrorTag, "SCORING_FAILED: "))
	assert.Equal(t, 0.0, result.Total())
}

func TestHolisticPromptCarriesBothInputs(t *testing.T) {
	var seenPrompt string
	srv := aiServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		seenPrompt, _ = req["prompt"].(string)
		reply := aiReply(map[string]float64{"personal": 1}, "")
		json.NewEncoder(w).Encode(map[string]string{"text": reply})
	})

	data := &applicant.Data{}
	data.Business.Name = "Sharma Traders"
	s := newHolistic(t, HolisticConfig{BaseURL: srv.URL})
	s.Score(context.Background(), Subject{Applicant: data, Text: "visited the shop"})

	assert.Contains(t, seenPrompt, "Sharma Traders")
	assert.Contains(t, seenPrompt, "visited the shop")
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, extractJSONObject(`noise {"a": 1} trailing`))
	assert.Equal(t, `{"a": {"b": 2}}`, extractJSONObject(`{"a": {"b": 2}}`))
	assert.Equal(t, `{"s": "brace } inside"}`, extractJSONObject(`{"s": "brace } inside"}`))
	assert.Equal(t, "", extractJSONObject("no json here"))
	assert.Equal(t, "", extractJSONObject(`{"unterminated": 1`))
}
