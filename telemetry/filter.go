package telemetry

import (
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// FilterConfig declares how secrets are sanitized before they are attached
// to spans or metrics.
type FilterConfig struct {
	// Mask replaces every match. Defaults to "[redacted]".
	Mask string
	// Patterns augments the built-in credential patterns.
	Patterns []string
}

// Filter masks strings that should never reach telemetry backends.
type Filter struct {
	mask     string
	patterns []*regexp.Regexp
}

// Built-in patterns cover the key formats of the configured providers.
var defaultPatterns = []string{
	`(?i)sk-[a-z0-9\-_]{6,}`,
	`AIza[0-9A-Za-z\-_]{20,}`,
	`(?i)xai-[a-z0-9]{8,}`,
	`(?i)gsk_[a-z0-9]{8,}`,
	`(?i)(api[_-]?key|token|secret|bearer)[\s:=]+[a-z0-9\-_.]{8,}`,
}

// NewFilter compiles the configured mask and patterns.
func NewFilter(cfg FilterConfig) (*Filter, error) {
	mask := strings.TrimSpace(cfg.Mask)
	if mask == "" {
		mask = "[redacted]"
	}
	seen := map[string]struct{}{}
	compiled := make([]*regexp.Regexp, 0, len(defaultPatterns)+len(cfg.Patterns))
	for _, raw := range append(append([]string{}, defaultPatterns...), cfg.Patterns...) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if _, ok := seen[raw]; ok {
			continue
		}
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("telemetry: compile filter %q: %w", raw, err)
		}
		compiled = append(compiled, re)
		seen[raw] = struct{}{}
	}
	return &Filter{mask: mask, patterns: compiled}, nil
}

// MaskText replaces all matching segments in value.
func (f *Filter) MaskText(value string) string {
	if f == nil || value == "" {
		return value
	}
	for _, re := range f.patterns {
		value = re.ReplaceAllString(value, f.mask)
	}
	return value
}

// MaskAttributes returns a sanitized copy of attrs.
func (f *Filter) MaskAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	if f == nil || len(attrs) == 0 {
		return attrs
	}
	clean := make([]attribute.KeyValue, len(attrs))
	for i, attr := range attrs {
		switch attr.Value.Type() {
		case attribute.STRING:
			clean[i] = attribute.String(string(attr.Key), f.MaskText(attr.Value.AsString()))
		case attribute.STRINGSLICE:
			values := attr.Value.AsStringSlice()
			masked := make([]string, len(values))
			for j, v := range values {
				masked[j] = f.MaskText(v)
			}
			clean[i] = attribute.StringSlice(string(attr.Key), masked)
		default:
			clean[i] = attr
		}
	}
	return clean
}
