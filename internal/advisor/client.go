// Package advisor asks a chat-completions model for freeform styling advice.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherwear/weatherwear/internal/provider/resilience"
)

const (
	// ProviderName identifies the chat provider.
	ProviderName = "perplexity"

	// DefaultBaseURL is the Perplexity API base URL.
	DefaultBaseURL = "https://api.perplexity.ai"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "sonar"

	// DefaultTimeout bounds a single completion call.
	DefaultTimeout = 30 * time.Second

	maxTokens = 1024
)

// Advisor errors.
var (
	// ErrNotConfigured is returned when no API key is configured.
	ErrNotConfigured = errors.New("advisor api key not configured")

	// ErrEmptyReply is returned when the completion carries no choices.
	ErrEmptyReply = errors.New("advisor returned no choices")
)

// WeatherSummary is the weather the advice is asked for.
type WeatherSummary struct {
	Temperature float64 `json:"temperature" validate:"gte=-90,lte=60"`
	Humidity    float64 `json:"humidity" validate:"gte=0,lte=100"`
	Description string  `json:"weatherDescription" validate:"max=100"`
}

// Preferences describe who the advice is for. Empty fields take defaults.
type Preferences struct {
	Gender   string `json:"gender,omitempty" validate:"max=50"`
	Style    string `json:"style,omitempty" validate:"max=50"`
	AgeGroup string `json:"ageGroup,omitempty" validate:"max=50"`
}

// Advice is a parsed model reply. Content holds the JSON object the model
// returned; Text holds the raw reply when no object could be read.
type Advice struct {
	Content map[string]any `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// ClientConfig holds configuration for the advisor client.
type ClientConfig struct {
	// APIKey is the bearer token. Calls fail with ErrNotConfigured without it.
	APIKey string

	// BaseURL is the API base URL (optional, defaults to DefaultBaseURL).
	BaseURL string

	// Model is the chat model (optional, defaults to DefaultModel).
	Model string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a chat-completions client.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new advisor client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig(ProviderName)
		rc.Timeout = DefaultTimeout
		rc.MaxRetries = 1
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Recommend asks for an outfit suited to w and p.
func (c *Client) Recommend(ctx context.Context, w WeatherSummary, p Preferences) (*Advice, error) {
	return c.Ask(ctx, stylistSystemPrompt, clothingPrompt(w, p))
}

// Trends asks for current fashion trends matching query.
func (c *Client) Trends(ctx context.Context, query string) (*Advice, error) {
	return c.Ask(ctx, trendSystemPrompt, trendPrompt(query))
}

// Ask sends one system and user prompt pair and parses the reply.
func (c *Client) Ask(ctx context.Context, system, prompt string) (*Advice, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrEmptyReply
	}

	c.logger.Debug().
		Str("model", c.model).
		Dur("duration", time.Since(start)).
		Msg("advisor reply received")

	return ParseReply(completion.Choices[0].Message.Content), nil
}

// Chat completion wire structures.

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}
