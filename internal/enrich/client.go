package enrich

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
)

var (
	// ErrEmptyResponse is returned when the model produces no output.
	ErrEmptyResponse = errors.New("enrich: empty model response")

	// ErrBadVerdict is returned when the model output cannot be parsed
	// as a verdict.
	ErrBadVerdict = errors.New("enrich: malformed model verdict")
)

// systemPrompt instructs the model to act as a strict JSON classifier.
// The prompt pins the output shape so the response can be decoded
// without free-text cleanup.
const systemPrompt = `Ты классификатор студенческих мероприятий. Тебе дают текст страницы с сайта вуза.
Ответь строго JSON-объектом без пояснений:
{"is_relevant": true/false, "cleaned_title": "короткое название мероприятия", "audience": ["студент", "школьник", "сотрудник"]}
is_relevant=false если это новость об итогах, архив или страница без конкретного события.
cleaned_title: название без дат, городов и лишних слов.
audience: только упомянутые категории участников.`

// Verdict is the model's judgment on one stored record.
type Verdict struct {
	// IsRelevant reports whether the page describes an actual upcoming event.
	IsRelevant bool `json:"is_relevant"`

	// CleanedTitle is the model's cleaned-up event title.
	CleanedTitle string `json:"cleaned_title"`

	// Audience is the refined participant category list.
	Audience []string `json:"audience"`
}

// generateRequest is the request body for the completion endpoint.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
	Format  string          `json:"format"`
}

// generateOptions pins sampling so repeated runs give the same verdict.
type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
}

// generateResponse is the completion endpoint's reply envelope.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Client talks to an Ollama-compatible completion endpoint.
type Client struct {
	// endpoint is the full URL of the generate API.
	endpoint string

	// model is the model name to request.
	model string

	// httpClient is the HTTP client used for requests.
	httpClient *http.Client

	// maxPromptLength truncates page text sent to the model.
	maxPromptLength int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithMaxPromptLength caps the page text included in the prompt.
func WithMaxPromptLength(n int) ClientOption {
	return func(cl *Client) {
		cl.maxPromptLength = n
	}
}

// NewClient creates a client against the given endpoint and model.
func NewClient(endpoint, model string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		model:    model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxPromptLength: 4000,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Judge asks the model to classify one record's source text.
func (c *Client) Judge(ctx context.Context, title, sourceText string) (*Verdict, error) {
	prompt := buildPrompt(title, sourceText, c.maxPromptLength)

	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: false,
		Options: generateOptions{
			Temperature: 0,
			TopK:        1,
		},
		Format: "json",
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("model returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return parseVerdict(envelope.Response)
}

// buildPrompt assembles the user prompt from the stored record.
func buildPrompt(title, sourceText string, maxLen int) string {
	text := sourceText
	if len(text) > maxLen {
		// Byte-level cap is fine here: the model tolerates a clipped
		// trailing rune and the limit only bounds request size.
		text = text[:maxLen]
	}

	var sb strings.Builder
	sb.WriteString("Заголовок: ")
	sb.WriteString(title)
	sb.WriteString("\n\nТекст страницы:\n")
	sb.WriteString(text)
	return sb.String()
}

// parseVerdict decodes the model's JSON verdict, tolerating wrapper
// noise around the object.
func parseVerdict(raw string) (*Verdict, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyResponse
	}

	// Some models wrap the object in markdown fences or prose even
	// with format=json requested. Cut to the outermost braces.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: %s", ErrBadVerdict, clip(raw, 120))
	}

	var v Verdict
	if err := json.Unmarshal([]byte(raw[start:end+1]), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadVerdict, err)
	}
	return &v, nil
}

// clip shortens a string for inclusion in error messages.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
