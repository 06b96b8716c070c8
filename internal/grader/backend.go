package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	"github.com/felixgeelhaar/mcp-adapters/internal/apperr"
	"github.com/felixgeelhaar/mcp-adapters/internal/config"
)

// Provider names accepted in configuration.
const (
	ProviderZhipu     = "zhipu"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// Default base URLs. The anthropic backend uses the SDK's default.
const (
	DefaultZhipuURL  = "https://open.bigmodel.cn/api/paas/v4/"
	DefaultOpenAIURL = "https://api.openai.com/v1/"
	DefaultOllamaURL = "http://localhost:11434/api/"
)

// Completion is a single-prompt generation request.
type Completion struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Backend sends one prompt to a language model and returns its text.
type Backend interface {
	Name() string
	Complete(ctx context.Context, c Completion) (string, error)
}

// NewBackend builds the backend named by cfg.Provider.
func NewBackend(cfg config.LLM, httpClient *http.Client) (Backend, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	switch cfg.Provider {
	case ProviderZhipu, ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, &apperr.ConfigError{Key: "LLM_API_KEY", Reason: cfg.Provider + " API key is not configured"}
		}
		base := cfg.BaseURL
		if base == "" {
			base = DefaultZhipuURL
			if cfg.Provider == ProviderOpenAI {
				base = DefaultOpenAIURL
			}
		}
		return &chatBackend{name: cfg.Provider, url: joinURL(base, "chat/completions"), key: cfg.APIKey, model: cfg.Model, http: httpClient}, nil

	case ProviderOllama:
		base := cfg.BaseURL
		if base == "" {
			base = DefaultOllamaURL
		}
		return &ollamaBackend{url: joinURL(base, "generate"), model: cfg.Model, http: httpClient}, nil

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, &apperr.ConfigError{Key: "LLM_API_KEY", Reason: "anthropic API key is not configured"}
		}
		opts := []option.RequestOption{
			option.WithAPIKey(cfg.APIKey),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		return &anthropicBackend{client: anthropic.NewClient(opts...), model: cfg.Model}, nil

	default:
		return nil, &apperr.ConfigError{Key: "LLM_PROVIDER", Reason: fmt.Sprintf("unsupported LLM provider %q", cfg.Provider)}
	}
}

func joinURL(base, path string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + path
}

// chatBackend speaks the chat-completions API shared by zhipu and openai.
type chatBackend struct {
	name  string
	url   string
	key   string
	model string
	http  *http.Client
}

func (b *chatBackend) Name() string { return b.name }

func (b *chatBackend) Complete(ctx context.Context, c Completion) (string, error) {
	body := map[string]any{
		"model": b.model,
		"messages": []map[string]string{
			{"role": "user", "content": c.Prompt},
		},
		"temperature": c.Temperature,
		"max_tokens":  c.MaxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + b.key}

	resp, err := postJSON(ctx, b.http, b.url, body, headers)
	if err != nil {
		return "", err
	}
	text := gjson.GetBytes(resp, "choices.0.message.content")
	if !text.Exists() {
		return "", &apperr.NoDataError{Message: "chat completion response has no message content"}
	}
	return text.String(), nil
}

// ollamaBackend speaks the local generate API.
type ollamaBackend struct {
	url   string
	model string
	http  *http.Client
}

func (b *ollamaBackend) Name() string { return ProviderOllama }

func (b *ollamaBackend) Complete(ctx context.Context, c Completion) (string, error) {
	body := map[string]any{
		"model":  b.model,
		"prompt": c.Prompt,
		"stream": false,
	}
	resp, err := postJSON(ctx, b.http, b.url, body, nil)
	if err != nil {
		return "", err
	}
	text := gjson.GetBytes(resp, "response")
	if !text.Exists() {
		return "", &apperr.NoDataError{Message: "generate response has no response field"}
	}
	return text.String(), nil
}

// anthropicBackend uses the Messages API.
type anthropicBackend struct {
	client anthropic.Client
	model  string
}

func (b *anthropicBackend) Name() string { return ProviderAnthropic }

func (b *anthropicBackend) Complete(ctx context.Context, c Completion) (string, error) {
	msg, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   int64(c.MaxTokens),
		Temperature: anthropic.Float(c.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(c.Prompt)),
		},
	})
	if err != nil {
		return "", &apperr.RequestError{Err: err}
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}

func postJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &apperr.RequestError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &apperr.RequestError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.RequestError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperr.RequestError{Err: fmt.Errorf("request failed with status code %d", resp.StatusCode)}
	}
	return data, nil
}
