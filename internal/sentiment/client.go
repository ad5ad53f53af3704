package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/evanm/mindlog/internal/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-pro"
)

// Result is one classification outcome. Raw carries the classifier's
// full JSON payload for auditing.
type Result struct {
	Label domain.SentimentLabel
	Raw   json.RawMessage
}

// Classifier maps free text to a sentiment label. Implementations may
// fail; callers decide what a failure degrades to.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// GeminiClient classifies text through the Gemini generateContent REST
// endpoint. One POST per call, no retries, no caching.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type Option func(*GeminiClient)

func WithBaseURL(url string) Option {
	return func(c *GeminiClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

func WithModel(model string) Option {
	return func(c *GeminiClient) {
		c.model = model
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *GeminiClient) {
		c.httpClient = client
	}
}

func NewGeminiClient(apiKey string, opts ...Option) *GeminiClient {
	c := &GeminiClient{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   defaultModel,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Classify sends the entry text to the classifier and parses the label
// out of the natural-language reply. Transport failures, non-2xx
// statuses and unparseable payloads all return an error; the caller
// owns the fallback policy.
func (c *GeminiClient) Classify(ctx context.Context, text string) (Result, error) {
	reqBody := generateContentRequest{
		Contents: []content{
			{Parts: []part{{Text: classificationPrompt(text)}}},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read classifier response: %w", err)
	}

	var gcResp generateContentResponse
	if err := json.Unmarshal(raw, &gcResp); err != nil {
		return Result{}, fmt.Errorf("failed to decode classifier response: %w", err)
	}

	if len(gcResp.Candidates) == 0 || len(gcResp.Candidates[0].Content.Parts) == 0 {
		return Result{}, fmt.Errorf("classifier response has no candidates")
	}

	return Result{
		Label: ParseLabel(gcResp.Candidates[0].Content.Parts[0].Text),
		Raw:   json.RawMessage(raw),
	}, nil
}

// classificationPrompt wraps the entry text in the instruction the
// classifier responds to.
func classificationPrompt(text string) string {
	return fmt.Sprintf("Classify the sentiment of the following journal entry as one of: %q, %q, or %q. Respond with only the sentiment tag.\n\n%q",
		domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative, text)
}

// ParseLabel resolves a natural-language classifier reply to a label.
// The positive check runs before the negative one, and anything that
// matches neither resolves to neutral. That ordering is part of the
// classifier contract; do not reorder.
func ParseLabel(text string) domain.SentimentLabel {
	lowered := strings.ToLower(text)
	if strings.Contains(lowered, string(domain.SentimentPositive)) {
		return domain.SentimentPositive
	}
	if strings.Contains(lowered, string(domain.SentimentNegative)) {
		return domain.SentimentNegative
	}
	return domain.SentimentNeutral
}
