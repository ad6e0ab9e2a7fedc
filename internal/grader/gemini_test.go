package grader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aarshiv/grader-api/internal/composer"
	"github.com/aarshiv/grader-api/internal/utils"
)

func testGrader(apiKey, baseURL string) *geminiGrader {
	return &geminiGrader{
		apiKey:  apiKey,
		model:   "gemini-3-pro-preview",
		baseURL: baseURL,
		logger:  utils.NewLogger("error"),
		client:  http.DefaultClient,
	}
}

func candidateResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return string(body)
}

func parts() []composer.Part {
	return []composer.Part{{Text: composer.Instruction}}
}

const validReport = `{
	"studentInfo": {"name": "A. Student", "subject": "Forensic Medicine"},
	"grades": [
		{"questionNumber": "1", "marksObtained": 3, "totalMarks": 5},
		{"questionNumber": "2", "marksObtained": 0, "totalMarks": 5, "feedback": "Not attempted"}
	],
	"totalScore": 7,
	"maxScore": 10,
	"percentage": 70,
	"generalFeedback": "Superficial grasp of mechanisms."
}`

func TestEvaluateNoCredentialShortCircuits(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	g := testGrader("", server.URL)

	_, err := g.Evaluate(context.Background(), parts())

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("no network call should be attempted without a credential, got %d", calls.Load())
	}
}

func TestEvaluateSendsDeterministicConfig(t *testing.T) {
	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		fmt.Fprint(w, candidateResponse(validReport))
	}))
	defer server.Close()

	g := testGrader("test-key", server.URL)

	report, err := g.Evaluate(context.Background(), parts())
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	cfg := captured.GenerationConfig
	if cfg.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", cfg.Temperature)
	}
	if cfg.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Seed)
	}
	if cfg.ThinkingConfig == nil || cfg.ThinkingConfig.ThinkingBudget != 24000 {
		t.Errorf("thinking budget not set, got %+v", cfg.ThinkingConfig)
	}
	if cfg.ResponseMimeType != "application/json" {
		t.Errorf("responseMimeType = %q", cfg.ResponseMimeType)
	}
	if cfg.ResponseSchema == nil {
		t.Fatal("response schema missing")
	}
	if _, ok := cfg.ResponseSchema.Properties["grades"]; !ok {
		t.Error("response schema should require grades")
	}

	if report.StudentInfo.Name != "A. Student" {
		t.Errorf("StudentInfo.Name = %q", report.StudentInfo.Name)
	}
	if len(report.Grades) != 2 {
		t.Errorf("len(Grades) = %d, want 2", len(report.Grades))
	}
}

func TestEvaluateEmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no candidates", `{"candidates": []}`},
		{"blank text", candidateResponse("   ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			g := testGrader("test-key", server.URL)

			_, err := g.Evaluate(context.Background(), parts())
			var emptyErr *EmptyResponseError
			if !errors.As(err, &emptyErr) {
				t.Fatalf("expected EmptyResponseError, got %v", err)
			}
		})
	}
}

func TestEvaluateMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateResponse("the student did poorly"))
	}))
	defer server.Close()

	g := testGrader("test-key", server.URL)

	_, err := g.Evaluate(context.Background(), parts())
	var malformedErr *MalformedResponseError
	if !errors.As(err, &malformedErr) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	if malformedErr.Unwrap() == nil {
		t.Error("parse failure detail should be propagated")
	}
}

func TestEvaluateFencedJSONAccepted(t *testing.T) {
	fenced := "```json\n" + validReport + "\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateResponse(fenced))
	}))
	defer server.Close()

	g := testGrader("test-key", server.URL)

	report, err := g.Evaluate(context.Background(), parts())
	if err != nil {
		t.Fatalf("fenced JSON should still parse, got %v", err)
	}
	if report.MaxScore != 10 {
		t.Errorf("MaxScore = %v, want 10", report.MaxScore)
	}
}

func TestEvaluateUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "rate limited"}}`)
	}))
	defer server.Close()

	g := testGrader("test-key", server.URL)

	_, err := g.Evaluate(context.Background(), parts())
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", upstreamErr.StatusCode)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
	}

	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
