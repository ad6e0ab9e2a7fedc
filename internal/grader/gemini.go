package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aarshiv/grader-api/internal/composer"
	"github.com/aarshiv/grader-api/internal/models"
	"github.com/aarshiv/grader-api/internal/utils"
)

// Grader turns a composed part sequence into a parsed evaluation report.
// The call is atomic: a fully schema-valid report or a typed error, never a
// partial result.
type Grader interface {
	Evaluate(ctx context.Context, parts []composer.Part) (*models.EvaluationReport, error)
}

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Determinism knobs: the model is otherwise non-deterministic, so temperature
// is pinned and the seed fixed to make repeated calls on identical input
// comparable. The thinking budget trades latency for grading depth.
const (
	temperature    = 0
	seed           = 42
	thinkingBudget = 24000
)

type geminiGrader struct {
	apiKey  string
	model   string
	baseURL string
	logger  *utils.Logger
	client  *http.Client
}

func NewGeminiGrader(apiKey, model string, logger *utils.Logger) Grader {
	return &geminiGrader{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		logger:  logger,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []composer.Part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64         `json:"temperature"`
	Seed             int             `json:"seed"`
	ThinkingConfig   *thinkingConfig `json:"thinkingConfig,omitempty"`
	ResponseMimeType string          `json:"responseMimeType"`
	ResponseSchema   *schema         `json:"responseSchema"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *geminiGrader) Evaluate(ctx context.Context, parts []composer.Part) (*models.EvaluationReport, error) {
	if g.apiKey == "" {
		return nil, &ConfigurationError{}
	}

	reqBody := generateRequest{
		Contents: []requestContent{{Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:      temperature,
			Seed:             seed,
			ThinkingConfig:   &thinkingConfig{ThinkingBudget: thinkingBudget},
			ResponseMimeType: "application/json",
			ResponseSchema:   reportSchema(),
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		g.logger.Error("Gemini API error", "status", resp.StatusCode, "body", string(body))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, &EmptyResponseError{}
	}

	text := strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return nil, &EmptyResponseError{}
	}

	var report models.EvaluationReport
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		// Some models wrap JSON in markdown fences despite the mime type.
		stripped := stripFences(text)
		if err := json.Unmarshal([]byte(stripped), &report); err != nil {
			g.logger.Error("Failed to parse model response", "content", text)
			return nil, &MalformedResponseError{Err: err}
		}
	}

	return &report, nil
}

// stripFences removes a surrounding markdown code block, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if j := strings.LastIndex(s, "```"); j >= 0 {
		s = s[:j]
	}
	return strings.TrimSpace(s)
}
