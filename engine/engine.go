package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/namancryu/TravelPMS/catalog"
	"github.com/namancryu/TravelPMS/core"
	"github.com/namancryu/TravelPMS/extract"
	"github.com/namancryu/TravelPMS/fallback"
	"github.com/namancryu/TravelPMS/logging"
	"github.com/namancryu/TravelPMS/policy"
	"github.com/namancryu/TravelPMS/postprocess"
	"github.com/namancryu/TravelPMS/provider"
	"github.com/namancryu/TravelPMS/session"
	"github.com/namancryu/TravelPMS/telemetry"
)

// Fallback causes reported to CallbackOnFallback and in logs.
const (
	CauseProvidersExhausted = "providers_exhausted"
	CauseUnstructured       = "unstructured"
	CauseCallback           = "callback"
	CausePrompt             = "prompt"
	CauseEmptyResponse      = "empty_response"
)

// DefaultHomeCountry is stored when user settings omit the country.
const DefaultHomeCountry = "대한민국"

// recoveryMessage answers a turn whose processing panicked.
const recoveryMessage = "죄송해요, 잠시 문제가 생겼어요 😢 방금 하신 말씀을 한 번만 더 들려주시겠어요?"

// Config defines tuning parameters for turn processing.
type Config struct {
	// TurnTimeout bounds a whole turn including the provider chain. When it
	// expires the remaining providers are skipped and the fallback generator
	// answers. Zero disables the bound.
	TurnTimeout time.Duration

	// HistoryLimit caps how many prior messages are rendered into the
	// prompt. Zero includes the full history.
	HistoryLimit int

	// DefaultHomeCountry is used when user settings carry a city but no
	// country.
	DefaultHomeCountry string
}

// DefaultConfig provides production defaults: a 25 second turn budget and the
// full conversation history in every prompt.
var DefaultConfig = Config{
	TurnTimeout:        25 * time.Second,
	DefaultHomeCountry: DefaultHomeCountry,
}

// Options configures an Engine using the functional options pattern. Every
// collaborator has a default suitable for development and tests: an in-memory
// session store, the embedded destination catalog, and an empty provider
// registry, which makes every turn a fallback turn.
type Options struct {
	Config Config

	SessionStore core.SessionStore
	Catalog      core.DestinationFinder
	Extractor    *extract.Extractor
	Orchestrator *provider.Orchestrator
	// Processor and Fallback default to instances bound to Catalog.
	Processor *postprocess.Processor
	Fallback  *fallback.Generator
	Prompt    *PromptBuilder
	Callbacks *CallbackManager

	Logger    logging.Logger
	Telemetry *telemetry.Manager
}

// WithConfig replaces the whole engine configuration. Apply it before the
// narrower options such as WithTurnTimeout, which edit Config in place.
func WithConfig(cfg Config) func(o *Options) {
	return func(o *Options) { o.Config = cfg }
}

// WithTurnTimeout sets Config.TurnTimeout. Zero lets a turn run as long as
// the caller's context allows.
func WithTurnTimeout(d time.Duration) func(o *Options) {
	return func(o *Options) { o.Config.TurnTimeout = d }
}

// WithSessionStore sets where sessions live. The store's Lock serializes
// turns of one session, so a shared store is needed when several engines
// serve the same sessions.
func WithSessionStore(s core.SessionStore) func(o *Options) {
	return func(o *Options) { o.SessionStore = s }
}

// WithCatalog sets the destination catalog used for selection, reference
// data and the default processor and fallback generator.
func WithCatalog(c core.DestinationFinder) func(o *Options) {
	return func(o *Options) { o.Catalog = c }
}

// WithExtractor sets the rules that fold each message into the travel
// context.
func WithExtractor(x *extract.Extractor) func(o *Options) {
	return func(o *Options) { o.Extractor = x }
}

// WithOrchestrator sets the provider chain. Without it every turn is
// answered by the fallback generator.
func WithOrchestrator(orch *provider.Orchestrator) func(o *Options) {
	return func(o *Options) { o.Orchestrator = orch }
}

// WithProcessor sets the post-processor that validates and corrects
// structured recommendations from provider answers.
func WithProcessor(p *postprocess.Processor) func(o *Options) {
	return func(o *Options) { o.Processor = p }
}

// WithFallback sets the generator that answers when no provider does.
func WithFallback(g *fallback.Generator) func(o *Options) {
	return func(o *Options) { o.Fallback = g }
}

// WithCallbacks sets the lifecycle callbacks. See CallbackType for when
// each one runs.
func WithCallbacks(cm *CallbackManager) func(o *Options) {
	return func(o *Options) { o.Callbacks = cm }
}

// WithLogger sets the logger. Turn logs carry session_id and turn_id.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithTelemetry enables turn spans and metrics. A nil manager disables
// both.
func WithTelemetry(m *telemetry.Manager) func(o *Options) {
	return func(o *Options) { o.Telemetry = m }
}

// Engine runs consulting turns.
//
// A turn fetches the session under its per-session lock, folds the message
// into the travel context, advances the dialogue state, asks the provider
// chain for an answer, validates any structured recommendations in it, and
// persists the updated session. When no provider answers, or a RECOMMENDING
// turn comes back without a usable recommendation set, the fallback generator
// produces the reply instead.
//
// Concurrency Model:
//   - Turns for the same session are serialized through SessionStore.Lock.
//   - Turns for different sessions run fully in parallel; the registry,
//     catalog and templates they share are read-only.
//
// The Engine is safe for concurrent use.
type Engine struct {
	store        core.SessionStore
	catalog      core.DestinationFinder
	extractor    *extract.Extractor
	orchestrator *provider.Orchestrator
	processor    *postprocess.Processor
	fallback     *fallback.Generator
	prompt       *PromptBuilder
	callbacks    *CallbackManager
	logger       logging.Logger
	telemetry    *telemetry.Manager
	config       Config
}

// New creates an Engine. Unset options fall back to the defaults described
// on Options.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Extractor == nil {
		opts.Extractor = extract.New()
	}
	if opts.Orchestrator == nil {
		opts.Orchestrator = provider.NewOrchestrator(provider.NewRegistry(nil),
			provider.WithLogger(opts.Logger),
			provider.WithTelemetry(opts.Telemetry))
	}
	if opts.Processor == nil {
		opts.Processor = postprocess.New(opts.Catalog,
			postprocess.WithLogger(opts.Logger),
			postprocess.WithTelemetry(opts.Telemetry))
	}
	if opts.Fallback == nil {
		opts.Fallback = fallback.New(opts.Catalog, fallback.WithLogger(opts.Logger))
	}
	if opts.Prompt == nil {
		opts.Prompt = NewPromptBuilder(opts.Config.HistoryLimit)
	}
	if opts.Config.DefaultHomeCountry == "" {
		opts.Config.DefaultHomeCountry = DefaultHomeCountry
	}

	return &Engine{
		store:        opts.SessionStore,
		catalog:      opts.Catalog,
		extractor:    opts.Extractor,
		orchestrator: opts.Orchestrator,
		processor:    opts.Processor,
		fallback:     opts.Fallback,
		prompt:       opts.Prompt,
		callbacks:    opts.Callbacks,
		logger:       opts.Logger,
		telemetry:    opts.Telemetry,
		config:       opts.Config,
	}
}

// turn is the mutable state of one ProcessTurn call.
type turn struct {
	id        string
	sessionID string
	message   string
	sess      *core.Session
	persist   bool
	started   time.Time
	log       logging.Logger

	text     string
	recs     []core.Recommendation
	provider string
	cause    string
}

// ProcessTurn handles one user message and never fails: provider errors,
// store errors, timeouts and panics all still yield a non-empty response
// with a valid state.
//
// settings may be nil; when present they replace the session's home city and
// country (country defaults to Config.DefaultHomeCountry).
//
// Recommendations in the result are set only when this turn produced a new
// recommendation set, which then replaced the session's set wholesale.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, message string, settings *core.UserSettings) (result core.TurnResult) {
	t := &turn{
		id:        core.NewID(),
		sessionID: sessionID,
		message:   strings.TrimSpace(message),
		started:   time.Now(),
	}
	t.log = logging.With(e.logger, "session_id", sessionID, "turn_id", t.id)

	if e.config.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.TurnTimeout)
		defer cancel()
	}
	ctx, span := e.telemetry.StartSpan(ctx, "travel.turn",
		attribute.String("travel.session_id", sessionID),
		attribute.String("travel.turn_id", t.id))

	defer func() {
		if r := recover(); r != nil {
			t.log.Error("recovered panic while processing turn", "panic", r, "stack", string(debug.Stack()))
			result = recoveredResult(t)
			telemetry.EndSpan(span, fmt.Errorf("panic: %v", r))
		} else {
			telemetry.EndSpan(span, nil)
		}
		e.telemetry.RecordTurn(ctx, telemetry.TurnData{
			State:    result.State.String(),
			Provider: result.Provider,
			Fallback: result.Provider == provider.MockName,
			Duration: time.Since(t.started),
		})
	}()

	unlock := e.acquire(ctx, t)
	defer unlock()

	e.advance(ctx, t, settings)
	e.respond(ctx, t)

	t.sess.AddMessage(core.NewUserMessage(t.message))
	if t.recs != nil {
		t.sess.Recommendations = t.recs
	}
	t.sess.AddMessage(core.NewAssistantMessage(t.text))

	if t.persist {
		if err := e.store.Save(ctx, t.sess); err != nil {
			t.log.Error("failed to save session", "error", err)
		}
	}

	result = core.TurnResult{
		Response:        t.text,
		State:           t.sess.State,
		Context:         t.sess.Context.Clone(),
		Recommendations: core.CloneRecommendations(t.recs),
		MessageCount:    t.sess.MessageCount,
		Provider:        t.provider,
	}

	e.runCallback(ctx, CallbackAfterTurn, t, nil)
	t.log.Info("turn processed",
		"state", result.State.String(),
		"provider", result.Provider,
		"message_count", result.MessageCount,
		"duration_ms", time.Since(t.started).Milliseconds())
	return result
}

// acquire loads the session under its lock. When the lock or the store is
// unavailable the turn continues on a detached copy that is not persisted.
func (e *Engine) acquire(ctx context.Context, t *turn) (unlock func()) {
	unlock = func() {}
	release, err := e.store.Lock(ctx, t.sessionID)
	if err != nil {
		t.log.Warn("session lock unavailable, answering without persisting", "error", err)
	} else {
		unlock = release
		t.persist = true
	}

	sess, err := e.store.GetOrCreate(ctx, t.sessionID)
	if err != nil || sess == nil {
		t.log.Error("failed to load session, using a fresh one", "error", err)
		sess = core.NewSession(t.sessionID)
		t.persist = false
	}
	t.sess = sess
	return unlock
}

// advance counts the turn, applies settings, extracts context and moves the
// dialogue state forward.
func (e *Engine) advance(ctx context.Context, t *turn, settings *core.UserSettings) {
	s := t.sess
	s.MessageCount++

	if settings != nil {
		s.HomeCity = strings.TrimSpace(settings.HomeCity)
		s.HomeCountry = strings.TrimSpace(settings.HomeCountry)
		if s.HomeCountry == "" {
			s.HomeCountry = e.config.DefaultHomeCountry
		}
	}

	s.Context = e.extractor.Extract(t.message, s.Context)

	previous := s.State
	next := policy.Advance(previous, policy.ForSession(s))
	if next == core.StateRecommending && extract.IsConfirmation(t.message) {
		if rec, ok := core.FindRecommendation(s.Recommendations, t.message); ok {
			next = core.StateSelecting
			s.Context.Destination = rec.Name
		}
	}
	if next == previous {
		return
	}

	cc := e.callbackContext(t)
	cc.PreviousState = previous
	cc.State = next
	if err := e.callbacks.ExecuteCallbacks(ctx, CallbackOnStateChange, cc); err != nil {
		t.log.Warn("state transition vetoed",
			"from", previous.String(), "to", next.String(), "error", err)
		return
	}
	s.State = next
	t.log.Debug("state changed", "from", previous.String(), "to", next.String())
}

// respond fills t.text, t.recs and t.provider from the provider chain or the
// fallback generator.
func (e *Engine) respond(ctx context.Context, t *turn) {
	s := t.sess

	prompt, err := e.prompt.Build(s, t.message)
	if err != nil {
		t.log.Error("failed to render prompt", "error", err)
		e.useFallback(ctx, t, CausePrompt)
		return
	}

	cc := e.callbackContext(t)
	cc.Prompt = prompt
	if err := e.callbacks.ExecuteCallbacks(ctx, CallbackBeforeProvider, cc); err != nil {
		t.log.Info("provider call skipped by callback", "error", err)
		e.useFallback(ctx, t, CauseCallback)
		return
	}

	res := e.orchestrator.Generate(ctx, prompt)
	if res.Fallback() {
		e.useFallback(ctx, t, CauseProvidersExhausted)
		return
	}
	t.provider = res.Provider
	e.runCallback(ctx, CallbackAfterProvider, t, func(cc *CallbackContext) { cc.Response = res.Response })

	out := e.processor.Process(ctx, res.Response, s.Context, s.HomeCity)
	if s.State == core.StateRecommending && !out.Structured {
		t.log.Warn("provider answered without recommendations", "provider", res.Provider)
		e.useFallback(ctx, t, CauseUnstructured)
		return
	}

	t.text = out.Text
	if out.Structured {
		t.recs = out.Recommendations
		if t.text == "" {
			t.text = fallback.RenderRecommendations(s.Context, t.recs)
		}
	}
	if t.text == "" {
		e.useFallback(ctx, t, CauseEmptyResponse)
	}
}

func (e *Engine) useFallback(ctx context.Context, t *turn, cause string) {
	reply := e.fallback.Respond(t.sess, t.message)
	t.text = reply.Text
	t.recs = reply.Recommendations
	t.provider = provider.MockName
	t.cause = cause
	t.log.Info("fallback generator answered turn",
		"state", t.sess.State.String(), "cause", cause)
	e.runCallback(ctx, CallbackOnFallback, t, nil)
}

func (e *Engine) callbackContext(t *turn) *CallbackContext {
	return &CallbackContext{
		SessionID: t.sessionID,
		TurnID:    t.id,
		Message:   t.message,
		Response:  t.text,
		Provider:  t.provider,
		State:     t.sess.State,
		Context:   t.sess.Context.Clone(),
		Cause:     t.cause,
		Metadata:  map[string]any{},
	}
}

// runCallback executes callbacks whose errors cannot change the turn.
func (e *Engine) runCallback(ctx context.Context, ct CallbackType, t *turn, fill func(cc *CallbackContext)) {
	if e.callbacks == nil {
		return
	}
	cc := e.callbackContext(t)
	if fill != nil {
		fill(cc)
	}
	if err := e.callbacks.ExecuteCallbacks(ctx, ct, cc); err != nil {
		t.log.Warn("callback failed", "type", string(ct), "error", err)
	}
}

func recoveredResult(t *turn) core.TurnResult {
	res := core.TurnResult{
		Response: recoveryMessage,
		State:    core.StateGreeting,
		Context:  core.TravelContext{}.Clone(),
		Provider: provider.MockName,
	}
	if t.sess != nil {
		if t.sess.State.Valid() {
			res.State = t.sess.State
		}
		res.Context = t.sess.Context.Clone()
		res.MessageCount = t.sess.MessageCount
	}
	return res
}

// SelectDestination confirms destinationID for the session and completes the
// consultation. The destination is resolved from the catalog, then from the
// session's current recommendations; it is nil when neither knows the id.
func (e *Engine) SelectDestination(ctx context.Context, sessionID, destinationID string) (core.Selection, error) {
	defer logging.StartTimer(e.logger, "select_destination", "session_id", sessionID)()

	unlock, err := e.store.Lock(ctx, sessionID)
	if err != nil {
		return core.Selection{}, err
	}
	defer unlock()

	sess, err := e.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		return core.Selection{}, fmt.Errorf("engine: load session %q: %w", sessionID, err)
	}

	var dest *core.DestinationRecord
	if rec, ok := e.catalog.LookupByID(destinationID); ok {
		dest = &rec
	} else {
		for _, r := range sess.Recommendations {
			if r.ID == destinationID {
				dest = &core.DestinationRecord{
					ID:         r.ID,
					Name:       r.Name,
					Country:    r.Country,
					Flag:       r.Flag,
					AvgCost:    r.EstimatedCost,
					BestSeason: r.BestSeason,
					Highlights: append([]string(nil), r.Highlights...),
					Currency:   r.Currency,
				}
				break
			}
		}
	}
	if dest != nil {
		sess.Context.Destination = dest.Name
	}
	sess.State = core.StateComplete

	if err := e.store.Save(ctx, sess); err != nil {
		return core.Selection{}, fmt.Errorf("engine: save session %q: %w", sessionID, err)
	}
	e.logger.Info("destination selected", "session_id", sessionID, "destination", destinationID, "known", dest != nil)

	return core.Selection{
		Destination: dest,
		Context:     sess.Context.Clone(),
		State:       core.StateComplete,
	}, nil
}

// Session returns a snapshot of the session, creating it when unknown.
func (e *Engine) Session(ctx context.Context, sessionID string) (*core.Session, error) {
	sess, err := e.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("engine: load session %q: %w", sessionID, err)
	}
	return sess, nil
}

// ProviderStatus reports every configured provider and whether it is enabled.
func (e *Engine) ProviderStatus() []provider.Status {
	return e.orchestrator.Registry().Status()
}

// ActiveProvider is the provider a turn would try first, or "mock".
func (e *Engine) ActiveProvider() string {
	return e.orchestrator.Registry().ActiveProvider()
}
