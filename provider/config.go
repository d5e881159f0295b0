package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/namancryu/TravelPMS/model"
	"github.com/namancryu/TravelPMS/model/anthropic"
	"github.com/namancryu/TravelPMS/model/openai"
)

// Adapter types accepted in Config.Type.
const (
	TypeOpenAI    = "openai"
	TypeAnthropic = "anthropic"
)

// Config is one provider entry of the registry configuration.
type Config struct {
	Name         string        `yaml:"name" json:"name"`
	Type         string        `yaml:"type" json:"type"`
	Model        string        `yaml:"model" json:"model"`
	Endpoint     string        `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	APIKeyEnv    string        `yaml:"api_key_env" json:"api_key_env"`
	Priority     int           `yaml:"priority" json:"priority"`
	QuotaRetries int           `yaml:"quota_retries,omitempty" json:"quota_retries,omitempty"`
	RetryBackoff time.Duration `yaml:"retry_backoff,omitempty" json:"retry_backoff,omitempty"`
	SystemPrompt string        `yaml:"system_prompt,omitempty" json:"system_prompt,omitempty"`
}

// DefaultConfigs is the built-in chain: Gemini with quota retries first, then
// the OpenAI-compatible hosts, then Claude.
func DefaultConfigs() []Config {
	return []Config{
		{
			Name:         "gemini",
			Type:         TypeOpenAI,
			Model:        "gemini-2.0-flash",
			Endpoint:     "https://generativelanguage.googleapis.com/v1beta/openai/",
			APIKeyEnv:    "GEMINI_API_KEY",
			Priority:     1,
			QuotaRetries: 2,
			RetryBackoff: 10 * time.Second,
		},
		{
			Name:      "grok",
			Type:      TypeOpenAI,
			Model:     "grok-3-mini",
			Endpoint:  "https://api.x.ai/v1",
			APIKeyEnv: "XAI_API_KEY",
			Priority:  2,
		},
		{
			Name:      "groq",
			Type:      TypeOpenAI,
			Model:     "llama-3.3-70b-versatile",
			Endpoint:  "https://api.groq.com/openai/v1",
			APIKeyEnv: "GROQ_API_KEY",
			Priority:  3,
		},
		{
			Name:      "together",
			Type:      TypeOpenAI,
			Model:     "meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo",
			Endpoint:  "https://api.together.xyz/v1",
			APIKeyEnv: "TOGETHER_API_KEY",
			Priority:  4,
		},
		{
			Name:      "claude",
			Type:      TypeAnthropic,
			Model:     "claude-3-5-haiku-latest",
			APIKeyEnv: "ANTHROPIC_API_KEY",
			Priority:  5,
		},
	}
}

// Validate checks a single entry.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("provider config: name is required")
	}
	if c.Name == MockName {
		return fmt.Errorf("provider config: name %q is reserved", MockName)
	}
	if c.Model == "" {
		return fmt.Errorf("provider %s: model is required", c.Name)
	}
	if c.Type != TypeOpenAI && c.Type != TypeAnthropic {
		return fmt.Errorf("provider %s: unknown type %q", c.Name, c.Type)
	}
	if c.QuotaRetries < 0 || c.RetryBackoff < 0 {
		return fmt.Errorf("provider %s: negative retry settings", c.Name)
	}
	return nil
}

// Build constructs adapters for cfgs and returns the registry. Each adapter
// resolves its key through creds on every call.
func Build(cfgs []Config, creds Credentials) (*Registry, error) {
	if creds == nil {
		creds = EnvCredentials{}
	}
	seen := map[string]bool{}
	descriptors := make([]Descriptor, 0, len(cfgs))
	for _, c := range cfgs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("provider %s: duplicate name", c.Name)
		}
		seen[c.Name] = true

		descriptors = append(descriptors, Descriptor{
			Name:         c.Name,
			Model:        c.Model,
			Priority:     c.Priority,
			Endpoint:     c.Endpoint,
			APIKeyEnv:    c.APIKeyEnv,
			QuotaRetries: c.QuotaRetries,
			RetryBackoff: c.RetryBackoff,
			Provider:     newAdapter(c, creds),
		})
	}
	return NewRegistry(creds, descriptors...), nil
}

func newAdapter(c Config, creds Credentials) model.Provider {
	key := func() string {
		v, _ := creds.Lookup(c.APIKeyEnv)
		return v
	}
	switch c.Type {
	case TypeAnthropic:
		opts := []func(o *anthropic.Options){
			anthropic.WithName(c.Name),
			anthropic.WithModel(c.Model),
			anthropic.WithAPIKeyFunc(key),
		}
		if c.Endpoint != "" {
			opts = append(opts, anthropic.WithBaseURL(c.Endpoint))
		}
		if c.SystemPrompt != "" {
			opts = append(opts, anthropic.WithSystemPrompt(c.SystemPrompt))
		} else {
			opts = append(opts, anthropic.WithSystemPrompt(openai.DefaultSystemPrompt))
		}
		return anthropic.New(opts...)
	default:
		opts := []func(o *openai.Options){
			openai.WithName(c.Name),
			openai.WithModel(c.Model),
			openai.WithBaseURL(c.Endpoint),
			openai.WithAPIKeyFunc(key),
		}
		if c.SystemPrompt != "" {
			opts = append(opts, openai.WithSystemPrompt(c.SystemPrompt))
		}
		return openai.New(opts...)
	}
}
