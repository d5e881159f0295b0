package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// Template is a parsed prompt template. It is safe for concurrent use.
type Template struct {
	tmpl *template.Template
}

// baseFuncs are available to every template.
var baseFuncs = template.FuncMap{
	"default": func(def, val any) any {
		if val == nil || val == "" || val == 0 {
			return def
		}
		return val
	},
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	},
	"join":  strings.Join,
	"trim":  strings.TrimSpace,
	"upper": strings.ToUpper,
}

// NewTemplate parses text. funcs extend the built-in helpers (default, json,
// join, trim, upper) and may override them.
func NewTemplate(name, text string, funcs template.FuncMap) (*Template, error) {
	t := template.New(name).Option("missingkey=error").Funcs(baseFuncs)
	if len(funcs) > 0 {
		t = t.Funcs(funcs)
	}
	parsed, err := t.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return &Template{tmpl: parsed}, nil
}

// MustTemplate is NewTemplate that panics on a parse error. Use it for
// package-level templates.
func MustTemplate(name, text string, funcs template.FuncMap) *Template {
	t, err := NewTemplate(name, text, funcs)
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the template against data.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template %s: %w", t.tmpl.Name(), err)
	}
	return buf.String(), nil
}
