package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Render(t *testing.T) {
	tmpl, err := NewTemplate("greet", `{{.Name}} / {{default "없음" .City}} / {{json .Tags}}`, nil)
	require.NoError(t, err)

	out, err := tmpl.Render(map[string]any{"Name": "여행이", "City": "", "Tags": []string{"beach"}})
	require.NoError(t, err)
	assert.Equal(t, `여행이 / 없음 / ["beach"]`, out)
}

func TestTemplate_NoHTMLEscaping(t *testing.T) {
	tmpl := MustTemplate("raw", "{{.}}", nil)
	out, err := tmpl.Render("```json <x> & y")
	require.NoError(t, err)
	assert.Equal(t, "```json <x> & y", out)
}

func TestTemplate_CustomFuncs(t *testing.T) {
	tmpl, err := NewTemplate("f", `{{shout .}}`, map[string]any{"shout": func(s string) string { return s + "!" }})
	require.NoError(t, err)
	out, err := tmpl.Render("안녕")
	require.NoError(t, err)
	assert.Equal(t, "안녕!", out)
}

func TestTemplate_ParseError(t *testing.T) {
	_, err := NewTemplate("bad", "{{.Name", nil)
	assert.Error(t, err)
}

type request struct {
	Message   string         `json:"message"`
	SessionID string         `json:"sessionId"`
	Count     int            `json:"count,omitempty"`
	Settings  *struct{}      `json:"userSettings"`
	Extra     map[string]any `json:"-"`
}

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &m))
	return m
}

func TestSchemaFor(t *testing.T) {
	s := SchemaFor(request{})
	assert.Equal(t, []string{"message", "sessionId"}, s.Required)
	assert.Equal(t, "integer", s.Properties["count"])
	assert.Equal(t, "object", s.Properties["userSettings"])
	assert.NotContains(t, s.Properties, "Extra")
}

func TestSchema_Validate(t *testing.T) {
	s := SchemaFor(&request{})
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"valid", `{"message":"안녕","sessionId":"s1","count":2}`, ""},
		{"missing message", `{"sessionId":"s1"}`, "message"},
		{"blank session", `{"message":"hi","sessionId":"  "}`, "sessionId"},
		{"wrong type", `{"message":"hi","sessionId":"s1","count":"two"}`, "count"},
		{"fractional integer", `{"message":"hi","sessionId":"s1","count":1.5}`, "count"},
		{"unknown allowed", `{"message":"hi","sessionId":"s1","other":true}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(decode(t, tt.body))
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
