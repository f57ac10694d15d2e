package gemini

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestMatcherEvaluate(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: `{"fit": true, "score": 82, "summary": "Strong backend match", "suggestions": "Mention Kubernetes"}`}
	matcher := NewMatcher(stub, 0, 0, zap.NewNop())

	assessment, err := matcher.Evaluate(context.Background(), "resume text", "job description")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !assessment.Fit {
		t.Fatalf("expected fit to be true")
	}
	if assessment.Score != 82 {
		t.Fatalf("expected score 82, got %v", assessment.Score)
	}
	if assessment.Summary != "Strong backend match" {
		t.Fatalf("unexpected summary: %q", assessment.Summary)
	}
	if assessment.Suggestions != "Mention Kubernetes" {
		t.Fatalf("unexpected suggestions: %q", assessment.Suggestions)
	}
	if assessment.Raw == "" {
		t.Fatalf("expected the raw response to be kept")
	}

	if !strings.Contains(stub.lastPrompt, "resume text") {
		t.Fatalf("expected the resume in the prompt")
	}
	if !strings.Contains(stub.lastPrompt, "job description") {
		t.Fatalf("expected the job description in the prompt")
	}
	if strings.Contains(stub.lastPrompt, "{{RESUME}}") || strings.Contains(stub.lastPrompt, "{{JOB_DESCRIPTION}}") {
		t.Fatalf("unexpanded placeholders in prompt")
	}
}

func TestMatcherScoreThreshold(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: `{"fit": true, "score": 40, "summary": "Weak match"}`}
	matcher := NewMatcher(stub, 60, 0, zap.NewNop())

	assessment, err := matcher.Evaluate(context.Background(), "resume", "job")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assessment.Fit {
		t.Fatalf("expected the threshold to force fit to false")
	}
	if assessment.Score != 40 {
		t.Fatalf("the score itself must be preserved, got %v", assessment.Score)
	}
}

func TestMatcherEvaluateValidation(t *testing.T) {
	t.Parallel()

	matcher := NewMatcher(&stubGenerator{}, 0, 0, zap.NewNop())

	if _, err := matcher.Evaluate(context.Background(), " ", "job"); err == nil {
		t.Fatalf("expected an error for an empty resume")
	}
	if _, err := matcher.Evaluate(context.Background(), "resume", ""); err == nil {
		t.Fatalf("expected an error for an empty job description")
	}
}

func TestMatcherGeneratorError(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{err: errors.New("quota exceeded")}
	matcher := NewMatcher(stub, 0, 0, zap.NewNop())

	if _, err := matcher.Evaluate(context.Background(), "resume", "job"); err == nil {
		t.Fatalf("expected the generator error to propagate")
	}
}

func TestParseResponseFencedJSON(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"fit\": false, \"score\": \"12.5\", \"summary\": \" padded \"}\n```"

	assessment, err := parseResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assessment.Fit {
		t.Fatalf("expected fit false")
	}
	if assessment.Score != 12.5 {
		t.Fatalf("expected a string score to be coerced, got %v", assessment.Score)
	}
	if assessment.Summary != "padded" {
		t.Fatalf("expected a trimmed summary, got %q", assessment.Summary)
	}
}

func TestParseResponseInvalid(t *testing.T) {
	t.Parallel()

	if _, err := parseResponse("the model rambled instead of answering"); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestCoerceHelpers(t *testing.T) {
	t.Parallel()

	if !coerceBool("Yes") || !coerceBool(true) || coerceBool("nope") || coerceBool(nil) {
		t.Fatalf("unexpected coerceBool behavior")
	}
	if coerceFloat(float64(7)) != 7 {
		t.Fatalf("expected numeric passthrough")
	}
	if !math.IsNaN(coerceFloat("not a number")) || !math.IsNaN(coerceFloat(nil)) {
		t.Fatalf("expected NaN for unparseable values")
	}
	if coerceString(nil) != "" {
		t.Fatalf("expected empty string for nil")
	}
	if coerceString([]any{"a"}) != `["a"]` {
		t.Fatalf("expected JSON rendering for structured values")
	}
}
