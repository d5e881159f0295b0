// Package anthropic provides a model.Provider for the Anthropic Claude
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/namancryu/TravelPMS/model"
)

// Options configures the Anthropic adapter.
type Options struct {
	Name         string
	Model        anthropic.Model
	BaseURL      string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int64
	// APIKey resolves the credential at call time.
	APIKey     func() string
	HTTPClient *http.Client
}

// WithName sets the provider name reported in errors and Info.
func WithName(name string) func(o *Options) {
	return func(o *Options) { o.Name = name }
}

// WithModel sets the Claude model id.
func WithModel(m string) func(o *Options) {
	return func(o *Options) { o.Model = anthropic.Model(m) }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) func(o *Options) {
	return func(o *Options) { o.BaseURL = u }
}

// WithSystemPrompt sets the system prompt.
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

// Provider wraps the Messages API behind model.Provider.
type Provider struct {
	client *anthropic.Client
	opts   Options
}

// New creates a Provider using the official client.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Name:        "claude",
		Model:       anthropic.ModelClaude3_5HaikuLatest,
		Temperature: 0.7,
		MaxTokens:   2000,
		APIKey:      func() string { return "" },
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
	client := anthropic.NewClient(clientOpts...)
	return &Provider{client: &client, opts: opts}
}

// Generate implements model.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	key := p.opts.APIKey()
	if key == "" {
		return "", model.NewProviderError(p.opts.Name, 0, errors.New("missing api key"))
	}

	params := anthropic.MessageNewParams{
		Model:       p.opts.Model,
		MaxTokens:   p.opts.MaxTokens,
		Temperature: anthropic.Float(p.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if p.opts.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.opts.SystemPrompt}}
	}

	resp, err := p.client.Messages.New(ctx, params, option.WithAPIKey(key))
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", model.NewProviderError(p.opts.Name, apiErr.StatusCode, fmt.Errorf("messages: %w", err))
		}
		return "", model.NewProviderError(p.opts.Name, 0, fmt.Errorf("messages: %w", err))
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", model.NewProviderError(p.opts.Name, 0, model.ErrEmptyResponse)
	}
	return text, nil
}

// Info implements model.Provider.
func (p *Provider) Info() model.Info {
	return model.Info{Name: p.opts.Name, Model: string(p.opts.Model), Vendor: "anthropic"}
}
