package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namancryu/TravelPMS/catalog"
	"github.com/namancryu/TravelPMS/core"
	"github.com/namancryu/TravelPMS/engine"
	"github.com/namancryu/TravelPMS/provider"
)

func newTestServer(t *testing.T, optFns ...func(o *Options)) http.Handler {
	t.Helper()
	cat := catalog.Default()
	eng := engine.New(engine.WithCatalog(cat))
	opts := append([]func(o *Options){WithCatalog(cat)}, optFns...)
	return NewServer(eng, opts...).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndMode(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "mock", health["aiMode"])
	assert.Equal(t, Version, health["version"])

	rec = do(t, h, http.MethodGet, "/api/mode", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mode := decodeBody[ModeResponse](t, rec)
	assert.Equal(t, "mock", mode.AIMode)
	assert.Equal(t, provider.MockName, mode.ActiveProvider)
}

func TestChat(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/chat", ChatRequest{
		Message:   "친구랑 둘이서 일본 여행 가고 싶어요",
		SessionID: "s1",
		UserSettings: &core.UserSettings{
			HomeCity: "부산",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decodeBody[core.TurnResult](t, rec)
	assert.NotEmpty(t, result.Response)
	assert.True(t, result.State.Valid())
	assert.Equal(t, 1, result.MessageCount)
	assert.Equal(t, provider.MockName, result.Provider)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestChat_Validation(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
		field  string
	}{
		{name: "missing message", body: map[string]any{"sessionId": "s1"}, status: http.StatusBadRequest, field: "message"},
		{name: "blank message", body: map[string]any{"sessionId": "s1", "message": "  "}, status: http.StatusBadRequest, field: "message"},
		{name: "missing session", body: map[string]any{"message": "안녕"}, status: http.StatusBadRequest, field: "sessionId"},
		{name: "wrong type", body: map[string]any{"sessionId": "s1", "message": 42}, status: http.StatusBadRequest, field: "message"},
		{name: "not an object", body: "[1,2]", status: http.StatusBadRequest},
		{name: "empty body", body: "", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/chat", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decodeBody[errorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.field, resp.Field)
		})
	}
}

func TestChat_BodyLimit(t *testing.T) {
	h := newTestServer(t, WithMaxBodyBytes(16))
	rec := do(t, h, http.MethodPost, "/api/chat", ChatRequest{Message: "아주 긴 메시지입니다", SessionID: "s1"})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRecommend(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/recommend", SessionRequest{SessionID: "unknown"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, msg := range []string{"가족 4명이서 해변 휴양 가고 싶어요", "총 800만원 정도요"} {
		rec = do(t, h, http.MethodPost, "/api/chat", ChatRequest{Message: msg, SessionID: "s2"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/recommend", SessionRequest{SessionID: "s2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[RecommendResponse](t, rec)
	assert.Equal(t, int64(8000000), resp.Context.BudgetAmount)
	assert.NotNil(t, resp.Recommendations)
}

func TestSelect(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/select", SelectRequest{SessionID: "s3", DestinationID: "japan-okinawa"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sel := decodeBody[core.Selection](t, rec)
	assert.Equal(t, core.StateComplete, sel.State)
	require.NotNil(t, sel.Destination)
	assert.Equal(t, "오키나와", sel.Destination.Name)

	rec = do(t, h, http.MethodPost, "/api/select", map[string]any{"sessionId": "s3"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingEngine struct{ Engine }

func (failingEngine) SelectDestination(context.Context, string, string) (core.Selection, error) {
	return core.Selection{}, context.DeadlineExceeded
}

func (failingEngine) Session(context.Context, string) (*core.Session, error) {
	return nil, errors.New("store offline")
}

func TestEngineErrors(t *testing.T) {
	h := NewServer(failingEngine{}).Handler()

	rec := do(t, h, http.MethodPost, "/api/select", SelectRequest{SessionID: "s", DestinationID: "japan-okinawa"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/recommend", SessionRequest{SessionID: "s"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDestinations(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/destinations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Destinations []core.DestinationRecord `json:"destinations"`
		Count        int                      `json:"count"`
	}](t, rec)
	assert.Equal(t, catalog.Default().Len(), list.Count)
	assert.Len(t, list.Destinations, list.Count)

	rec = do(t, h, http.MethodGet, "/api/destinations/japan-okinawa", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/destinations/atlantis", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, NewServer(engine.New()).Handler(), http.MethodGet, "/api/destinations", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewSession(t *testing.T) {
	h := newTestServer(t, WithIDGenerator(func() string { return "fixed-id" }))
	rec := do(t, h, http.MethodPost, "/api/session", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "fixed-id", decodeBody[SessionRequest](t, rec).SessionID)

	rec = do(t, newTestServer(t), http.MethodPost, "/api/session", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, decodeBody[SessionRequest](t, rec).SessionID, 36)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/chat", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
