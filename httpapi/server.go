package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/namancryu/TravelPMS/core"
	"github.com/namancryu/TravelPMS/internal/util"
	"github.com/namancryu/TravelPMS/logging"
	"github.com/namancryu/TravelPMS/provider"
)

// Version is reported by the health endpoint.
const Version = "2.0.0"

const defaultMaxBodyBytes = int64(1 << 20)

// Engine is the consultation surface the server drives.
type Engine interface {
	ProcessTurn(ctx context.Context, sessionID, message string, settings *core.UserSettings) core.TurnResult
	SelectDestination(ctx context.Context, sessionID, destinationID string) (core.Selection, error)
	Session(ctx context.Context, sessionID string) (*core.Session, error)
	ProviderStatus() []provider.Status
	ActiveProvider() string
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message      string             `json:"message"`
	SessionID    string             `json:"sessionId"`
	UserSettings *core.UserSettings `json:"userSettings"`
}

// SessionRequest is the body of POST /api/recommend.
type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

// SelectRequest is the body of POST /api/select.
type SelectRequest struct {
	SessionID     string `json:"sessionId"`
	DestinationID string `json:"destinationId"`
}

// RecommendResponse is the body returned by POST /api/recommend.
type RecommendResponse struct {
	Recommendations []core.Recommendation  `json:"recommendations"`
	Context         core.TravelContext     `json:"context"`
	State           core.ConversationState `json:"state"`
}

// ModeResponse is the body returned by GET /api/mode.
type ModeResponse struct {
	AIMode         string            `json:"aiMode"`
	ActiveProvider string            `json:"activeProvider"`
	ProviderStatus []provider.Status `json:"providerStatus"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

var (
	chatSchema    = util.SchemaFor(ChatRequest{})
	sessionSchema = util.SchemaFor(SessionRequest{})
	selectSchema  = util.SchemaFor(SelectRequest{})
)

// Options configures a Server.
type Options struct {
	Catalog      core.DestinationFinder
	MaxBodyBytes int64
	Logger       logging.Logger
	NewID        func() string
}

// WithCatalog serves the destination endpoints from c.
func WithCatalog(c core.DestinationFinder) func(o *Options) {
	return func(o *Options) { o.Catalog = c }
}

// WithMaxBodyBytes limits request bodies.
func WithMaxBodyBytes(n int64) func(o *Options) {
	return func(o *Options) { o.MaxBodyBytes = n }
}

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(fn func() string) func(o *Options) {
	return func(o *Options) { o.NewID = fn }
}

// Server is the HTTP transport for an Engine.
type Server struct {
	engine       Engine
	catalog      core.DestinationFinder
	maxBodyBytes int64
	logger       logging.Logger
	newID        func() string
}

// NewServer wraps engine.
func NewServer(engine Engine, optFns ...func(o *Options)) *Server {
	opts := Options{
		MaxBodyBytes: defaultMaxBodyBytes,
		Logger:       logging.NoOpLogger{},
		NewID:        uuid.NewString,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Server{
		engine:       engine,
		catalog:      opts.Catalog,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       opts.Logger,
		newID:        opts.NewID,
	}
}

// Register wires the routes onto mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/mode", s.handleMode)
	mux.HandleFunc("GET /api/destinations", s.handleDestinations)
	mux.HandleFunc("GET /api/destinations/{id}", s.handleDestination)
	mux.HandleFunc("POST /api/session", s.handleNewSession)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/recommend", s.handleRecommend)
	mux.HandleFunc("POST /api/select", s.handleSelect)
}

// Handler returns a mux with every route registered and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return s.logRequests(mux)
}

func (s *Server) aiMode() string {
	if s.engine.ActiveProvider() == provider.MockName {
		return "mock"
	}
	return "ai"
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"aiMode":  s.aiMode(),
		"version": Version,
	})
}

func (s *Server) handleMode(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ModeResponse{
		AIMode:         s.aiMode(),
		ActiveProvider: s.engine.ActiveProvider(),
		ProviderStatus: s.engine.ProviderStatus(),
	})
}

func (s *Server) handleDestinations(w http.ResponseWriter, _ *http.Request) {
	if s.catalog == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "destination catalog is not configured"})
		return
	}
	all := s.catalog.All()
	writeJSON(w, http.StatusOK, map[string]any{"destinations": all, "count": len(all)})
}

func (s *Server) handleDestination(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "destination catalog is not configured"})
		return
	}
	rec, ok := s.catalog.LookupByID(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "목적지를 찾을 수 없습니다."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"destination": rec})
}

func (s *Server) handleNewSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, SessionRequest{SessionID: s.newID()})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !s.decode(w, r, chatSchema, &req) {
		return
	}
	result := s.engine.ProcessTurn(r.Context(), req.SessionID, req.Message, req.UserSettings)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !s.decode(w, r, sessionSchema, &req) {
		return
	}
	sess, err := s.engine.Session(r.Context(), req.SessionID)
	if err != nil {
		s.logger.Error("session lookup failed", "session_id", req.SessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "추천 조회 중 오류가 발생했습니다."})
		return
	}
	if sess.MessageCount == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "세션을 찾을 수 없습니다."})
		return
	}
	recs := sess.Recommendations
	if recs == nil {
		recs = []core.Recommendation{}
	}
	writeJSON(w, http.StatusOK, RecommendResponse{
		Recommendations: recs,
		Context:         sess.Context,
		State:           sess.State,
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !s.decode(w, r, selectSchema, &req) {
		return
	}
	sel, err := s.engine.SelectDestination(r.Context(), req.SessionID, req.DestinationID)
	if err != nil {
		s.logger.Error("select destination failed", "session_id", req.SessionID, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errorResponse{Error: "목적지 선택 중 오류가 발생했습니다."})
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// decode reads a single JSON object, validates it against schema and decodes
// it into v. It writes the error response and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schema util.Schema, v any) bool {
	data, err := io.ReadAll(io.LimitReader(r.Body, s.maxBodyBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("read body: %v", err)})
		return false
	}
	if int64(len(data)) > s.maxBodyBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
		return false
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be a JSON object"})
		return false
	}
	if err := schema.Validate(raw); err != nil {
		resp := errorResponse{Error: err.Error()}
		var verr *util.ValidationError
		if errors.As(err, &verr) {
			resp.Field = verr.Field
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
