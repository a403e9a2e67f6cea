package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"NewsClassifier/internal/config"
	"NewsClassifier/internal/domain"
	"NewsClassifier/internal/ports"
)

var (
	// ErrTransport covers connection failures and non-2xx replies.
	ErrTransport = errors.New("classification request failed")
	// ErrMalformed is returned when a successful reply lacks the expected fields.
	ErrMalformed = errors.New("malformed classification response")
)

var reasoningFields = []string{"reasoning_content", "reasoning"}

// Client implements ports.Classifier backed by an OpenAI-compatible chat endpoint.
type Client struct {
	cfg config.ChutesConfig
}

var _ ports.Classifier = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.ChutesConfig) *Client {
	return &Client{cfg: cfg}
}

// NewSession opens a connection pool that lives until Close is called.
func (c *Client) NewSession() (ports.ClassifierSession, error) {
	if c == nil {
		return nil, fmt.Errorf("llm client is nil")
	}
	if c.cfg.APIKey == "" || c.cfg.Endpoint == "" || c.cfg.Model == "" {
		return nil, fmt.Errorf("llm client misconfigured")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	httpClient := &http.Client{Transport: transport}
	if c.cfg.Timeout > 0 {
		httpClient.Timeout = c.cfg.Timeout
	}

	api := openai.NewClient(
		option.WithAPIKey(c.cfg.APIKey),
		option.WithBaseURL(baseURL(c.cfg.Endpoint)),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &session{
		api:         api,
		transport:   transport,
		model:       c.cfg.Model,
		maxTokens:   c.cfg.MaxTokens,
		temperature: c.cfg.Temperature,
	}, nil
}

type session struct {
	api         openai.Client
	transport   *http.Transport
	model       string
	maxTokens   int64
	temperature float64
}

// Classify sends one non-streaming chat request and returns the raw reply.
func (s *session) Classify(ctx context.Context, title, summary string) (domain.Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildPrompt(title, summary)),
		},
		MaxTokens:   openai.Int(s.maxTokens),
		Temperature: openai.Float(s.temperature),
	}

	resp, err := s.api.Chat.Completions.New(ctx, params, option.WithJSONSet("stream", false))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return domain.Completion{}, fmt.Errorf("%w: status %d: %w", ErrTransport, apiErr.StatusCode, err)
		}
		return domain.Completion{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return domain.Completion{}, fmt.Errorf("%w: no choices", ErrMalformed)
	}
	choice := resp.Choices[0]
	if !choice.JSON.Message.Valid() {
		return domain.Completion{}, fmt.Errorf("%w: no message", ErrMalformed)
	}

	return domain.Completion{
		Content:      choice.Message.Content,
		Reasoning:    reasoningOf(choice.Message),
		FinishReason: string(choice.FinishReason),
	}, nil
}

// Close releases pooled connections.
func (s *session) Close() error {
	s.transport.CloseIdleConnections()
	return nil
}

// reasoningOf reads the provider-specific reasoning trace, which is not part of the OpenAI schema.
func reasoningOf(msg openai.ChatCompletionMessage) string {
	for _, key := range reasoningFields {
		field, ok := msg.JSON.ExtraFields[key]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal([]byte(field.Raw()), &text); err == nil && text != "" {
			return text
		}
	}
	return ""
}

func baseURL(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	endpoint = strings.TrimSuffix(endpoint, "chat/completions")
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return endpoint
}
