// internal/scoring/holistic.go
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"verification-workers/internal/common/logger"
	"verification-workers/internal/scoring/rubric"
)

const (
	// ErrAINotConfigured tags results produced without a reachable AI
	// service. Not a failure: the caller falls back to another strategy.
	ErrAINotConfigured = "AI_NOT_CONFIGURED"

	// scoringFailedPrefix tags results where the AI call was attempted and
	// failed; the cause is appended after the colon.
	scoringFailedPrefix = "SCORING_FAILED: "
)

// HolisticConfig configures the external AI scoring service.
type HolisticConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	MaxTokens   int
	Temperature float64
}

// HolisticScorer delegates the whole rubric evaluation to an AI service and
// coerces its free-form judgement back into the shared result contract.
// Like every scorer it never returns an error: a missing configuration or a
// failed call degrades to a tagged zero result.
type HolisticScorer struct {
	config HolisticConfig
	client *http.Client
	logger logger.Logger
}

func NewHolisticScorer(config HolisticConfig, log logger.Logger) *HolisticScorer {
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 500 * time.Millisecond
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 2048
	}
	return &HolisticScorer{
		config: config,
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"scorer": "holistic"}),
	}
}

func (s *HolisticScorer) Name() string { return "holistic" }

func (s *HolisticScorer) Score(ctx context.Context, subject Subject) *Result {
	if strings.TrimSpace(s.config.BaseURL) == "" {
		s.logger.Warn("AI scoring requested without configuration", nil)
		return ZeroResult(ErrAINotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	text, err := s.generate(ctx, s.buildPrompt(subject))
	if err != nil {
		s.logger.Error("AI scoring call failed", map[string]interface{}{"error": err.Error()})
		return ZeroResult(scoringFailedPrefix + err.Error())
	}

	result, err := s.parseResponse(text)
	if err != nil {
		s.logger.Error("AI response unusable", map[string]interface{}{"error": err.Error()})
		return ZeroResult(scoringFailedPrefix + err.Error())
	}

	s.logger.Info("holistic score computed", map[string]interface{}{
		"total":    result.Total(),
		"warnings": len(result.Warnings),
	})
	return result
}

func (s *HolisticScorer) buildPrompt(subject Subject) string {
	var parts []string

	parts = append(parts, "You are a loan verification analyst. Score the applicant against the rubric below using only the evidence provided.")
	parts = append(parts, "\nRubric (category: cap, items with weights):")
	for _, cat := range rubric.Table() {
		items := make([]string, 0, len(cat.Items))
		for _, it := range cat.Items {
			items = append(items, fmt.Sprintf("%s=%.1f", it.Name, it.Weight))
		}
		parts = append(parts, fmt.Sprintf("- %s (cap %.0f): %s", cat.Name, cat.Cap, strings.Join(items, ", ")))
	}

	if subject.Applicant != nil {
		applicantJSON, _ := json.MarshalIndent(subject.Applicant, "", "  ")
		parts = append(parts, "\nStructured applicant record:")
		parts = append(parts, string(applicantJSON))
	}
	if strings.TrimSpace(subject.Text) != "" {
		parts = append(parts, "\nVerification report text:")
		parts = append(parts, subject.Text)
	}

	parts = append(parts, "\nInstructions:")
	parts = append(parts, "- An item matches only when the evidence documents it; never guess")
	parts = append(parts, "- A category score is the sum of its matched item weights, truncated at the cap")
	parts = append(parts, "- An unknown loan status means the debt category scores zero beyond the status item itself")
	parts = append(parts, "- Return ONLY a JSON object: {\"scores\": {category: number}, \"matches\": {category: {item: boolean}}, \"rationale\": string}")

	return strings.Join(parts, "\n")
}

func (s *HolisticScorer) generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"prompt":      prompt,
		"model":       s.config.Model,
		"max_tokens":  s.config.MaxTokens,
		"temperature": s.config.Temperature,
	}
	body, _ := json.Marshal(requestBody)

	var lastErr error
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Linear backoff between attempts.
			select {
			case <-time.After(time.Duration(attempt) * s.config.RetryDelay):
			case <-ctx.Done():
				return "", fmt.Errorf("timeout after %d attempts: %v", attempt, lastErr)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			s.config.BaseURL+"/api/ai/generate", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if s.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("timeout: %v", err)
			}
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}

		var apiResponse struct {
			Text string `json:"text"`
		}
		err = json.NewDecoder(resp.Body).Decode(&apiResponse)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decode response: %v", err)
			continue
		}
		return apiResponse.Text, nil
	}

	return "", fmt.Errorf("no successful response after %d attempts: %v", s.config.MaxRetries+1, lastErr)
}

// parseResponse coerces the model's reply into the result contract. The
// reply may wrap the JSON object in prose, so the first balanced object
// substring is extracted before decoding. Scores are clamped to [0, cap]
// and match values accept booleans or "true"/"false" strings.
func (s *HolisticScorer) parseResponse(text string) (*Result, error) {
	payload := extractJSONObject(text)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in AI response")
	}

	var raw struct {
		Scores    map[string]interface{}            `json:"scores"`
		Matches   map[string]map[string]interface{} `json:"matches"`
		Rationale string                            `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("decode AI response: %v", err)
	}
	if len(raw.Scores) == 0 {
		return nil, fmt.Errorf("AI response has no scores")
	}

	result := NewResult()
	result.Rationale = strings.TrimSpace(raw.Rationale)

	for _, name := range rubric.CategoryNames() {
		score := coerceScore(raw.Scores[name])
		result.Scores.set(name, clamp(score, 0, rubric.CapOf(name)))

		for item, v := range raw.Matches[name] {
			result.Matches[name][item] = coerceBool(v)
		}

		if result.Scores.Get(name) == 0 {
			result.Warnings = append(result.Warnings, "no evidence found for category: "+name)
		}
	}

	return result, nil
}

// extractJSONObject returns the first balanced {...} substring, ignoring
// braces inside string literals.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func coerceScore(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%f", &f); err == nil {
			return f
		}
	}
	return 0
}

func coerceBool(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	case float64:
		return v != 0
	}
	return false
}
