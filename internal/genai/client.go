// Package genai turns raw document text into question pools using the
// Gemini REST API, and runs the background jobs that do so.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadready/permitprep-backend/internal/config"
)

// ErrGeneration is the consolidated failure for the custom-pool path:
// exhausted retries, empty or malformed batches, unusable output. It never
// affects the standard pool path.
var ErrGeneration = errors.New("question generation failed")

// quizSchema constrains Gemini's output to a JSON object with a questions
// array matching the model.GeneratedQuestion shape.
const quizSchema = `{
	"type": "object",
	"properties": {
		"questions": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"category":       {"type": "string"},
					"question":       {"type": "string"},
					"options":        {"type": "array", "items": {"type": "string"}},
					"correct_answer": {"type": "string"},
					"explanation":    {"type": "string"}
				},
				"required": ["category", "question", "options", "correct_answer", "explanation"]
			}
		}
	},
	"required": ["questions"]
}`

// Client is a minimal Gemini generateContent client. Rate-limit responses
// are retried with exponential backoff up to MaxRetries; anything else
// fails immediately.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	retryBase  time.Duration
	log        zerolog.Logger
}

// NewClient builds a Client from the application config.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		http:       &http.Client{Timeout: cfg.GenTimeout},
		baseURL:    strings.TrimRight(cfg.GeminiBaseURL, "/"),
		apiKey:     cfg.GeminiAPIKey,
		model:      cfg.GeminiModel,
		maxRetries: cfg.GenMaxRetries,
		retryBase:  cfg.GenRetryBase,
		log:        log.With().Str("component", "genai_client").Logger(),
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateJSON sends the prompt plus document text and returns the raw
// JSON payload Gemini produced under the quiz schema.
func (c *Client) GenerateJSON(ctx context.Context, prompt, document string) ([]byte, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: prompt}, {Text: document}},
		}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   json.RawMessage(quizSchema),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)

	for attempt := 0; ; attempt++ {
		raw, retryable, err := c.doRequest(ctx, url, body)
		if err == nil {
			return raw, nil
		}
		if !retryable || attempt >= c.maxRetries {
			return nil, err
		}

		// Exponential backoff on rate-limit-class failures.
		delay := c.retryBase * (1 << attempt)
		c.log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("Rate limited, backing off")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// doRequest performs one HTTP round trip. The second return value reports
// whether the failure is rate-limit-class and worth retrying.
func (c *Client) doRequest(ctx context.Context, url string, body []byte) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("gemini rate limited: %s", strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode != http.StatusOK {
		retryable := strings.Contains(string(raw), "RESOURCE_EXHAUSTED")
		return nil, retryable, fmt.Errorf("gemini returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, false, errors.New("gemini returned no candidates")
	}

	return []byte(parsed.Candidates[0].Content.Parts[0].Text), false, nil
}
