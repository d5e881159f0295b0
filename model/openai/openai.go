// Package openai provides a model.Provider over the OpenAI Chat Completions
// API. Any OpenAI-compatible endpoint works (Gemini's compatibility layer,
// xAI Grok, Groq, Together) by pointing BaseURL at it.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/namancryu/TravelPMS/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultSystemPrompt frames every chat completion request.
const DefaultSystemPrompt = "당신은 친절하고 전문적인 여행 컨설턴트입니다. 한국어로 자연스럽게 대화하세요."

// Options configure the adapter.
type Options struct {
	Name         string
	Model        string
	BaseURL      string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int64
	// APIKey resolves the credential at call time. An empty key fails the call
	// without any network activity.
	APIKey     func() string
	HTTPClient *http.Client
}

// WithName sets the provider name reported in errors and Info.
func WithName(name string) func(o *Options) {
	return func(o *Options) { o.Name = name }
}

// WithModel sets the model identifier.
func WithModel(m string) func(o *Options) {
	return func(o *Options) { o.Model = m }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(u string) func(o *Options) {
	return func(o *Options) { o.BaseURL = u }
}

// WithSystemPrompt overrides DefaultSystemPrompt.
func WithSystemPrompt(s string) func(o *Options) {
	return func(o *Options) { o.SystemPrompt = s }
}

// WithAPIKey uses a fixed credential.
func WithAPIKey(key string) func(o *Options) {
	return func(o *Options) { o.APIKey = func() string { return key } }
}

// WithAPIKeyFunc resolves the credential on every call.
func WithAPIKeyFunc(fn func() string) func(o *Options) {
	return func(o *Options) { o.APIKey = fn }
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(c *http.Client) func(o *Options) {
	return func(o *Options) { o.HTTPClient = c }
}

// Provider wraps the Chat Completions API behind model.Provider.
type Provider struct {
	client *openai.Client
	opts   Options
}

// New creates a Provider. SDK-level retries are disabled; retry policy
// belongs to the orchestrator.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Name:         "openai",
		Model:        openai.ChatModelGPT4oMini,
		SystemPrompt: DefaultSystemPrompt,
		Temperature:  0.7,
		MaxTokens:    2000,
		APIKey:       func() string { return "" },
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	client := openai.NewClient(clientOpts...)
	return &Provider{client: &client, opts: opts}
}

// Generate implements model.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	key := p.opts.APIKey()
	if key == "" {
		return "", model.NewProviderError(p.opts.Name, 0, errors.New("missing api key"))
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if p.opts.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(p.opts.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:       p.opts.Model,
		Messages:    messages,
		Temperature: openai.Float(p.opts.Temperature),
		MaxTokens:   openai.Int(p.opts.MaxTokens),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params, option.WithAPIKey(key))
	if err != nil {
		return "", p.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", model.NewProviderError(p.opts.Name, 0, model.ErrEmptyResponse)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", model.NewProviderError(p.opts.Name, 0, model.ErrEmptyResponse)
	}
	return text, nil
}

func (p *Provider) wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return model.NewProviderError(p.opts.Name, apiErr.StatusCode, fmt.Errorf("chat completion: %w", err))
	}
	return model.NewProviderError(p.opts.Name, 0, fmt.Errorf("chat completion: %w", err))
}

// Info implements model.Provider.
func (p *Provider) Info() model.Info {
	return model.Info{Name: p.opts.Name, Model: p.opts.Model, Vendor: "openai"}
}
