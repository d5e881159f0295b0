// Package travelpms provides a high-level façade over the consultation engine
// and its collaborators (destination catalog, provider chain, response
// post-processing, fallback generation and the HTTP transport). Most
// applications interact with this package by:
//  1. Loading a config.Config (config.FromEnv or config.Default)
//  2. Creating a TravelPMS via New, optionally overriding credentials, the
//     session store, logging or telemetry
//  3. Calling Chat per user message, or serving Handler over HTTP
//
// Every collaborator is built from the configuration. Without any API key the
// provider chain is empty and every turn is answered by the fallback
// generator, which keeps local development and tests offline.
package travelpms

import (
	"context"
	"fmt"
	"net/http"

	"github.com/namancryu/TravelPMS/catalog"
	"github.com/namancryu/TravelPMS/config"
	"github.com/namancryu/TravelPMS/core"
	"github.com/namancryu/TravelPMS/engine"
	"github.com/namancryu/TravelPMS/extract"
	"github.com/namancryu/TravelPMS/fallback"
	"github.com/namancryu/TravelPMS/httpapi"
	"github.com/namancryu/TravelPMS/logging"
	"github.com/namancryu/TravelPMS/postprocess"
	"github.com/namancryu/TravelPMS/provider"
	"github.com/namancryu/TravelPMS/session"
	"github.com/namancryu/TravelPMS/telemetry"
)

// Options configures the TravelPMS instance.
type Options struct {
	Config config.Config

	// Credentials resolves provider API keys. Defaults to the environment.
	Credentials provider.Credentials

	// SessionStore defaults to an in-memory store.
	SessionStore core.SessionStore

	// Callbacks observe or veto turn processing.
	Callbacks *engine.CallbackManager

	// Sleep replaces the quota backoff wait. Used by tests.
	Sleep provider.SleepFunc

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Telemetry is optional; nil disables spans and metrics.
	Telemetry *telemetry.Manager
}

// TravelPMS aggregates the engine and the components it was built from.
type TravelPMS struct {
	opts     Options
	catalog  *catalog.Catalog
	registry *provider.Registry
	engine   *engine.Engine
}

// New builds every collaborator from the configuration.
func New(optFns ...func(o *Options)) (*TravelPMS, error) {
	opts := Options{
		Config:       config.Default(),
		Credentials:  provider.EnvCredentials{},
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		loaded, err := catalog.Load(cfg.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("travelpms: %w", err)
		}
		cat = loaded
	}

	registry, err := provider.Build(cfg.Providers, opts.Credentials)
	if err != nil {
		return nil, fmt.Errorf("travelpms: %w", err)
	}

	orchOpts := []func(o *provider.Options){
		provider.WithLogger(opts.Logger),
		provider.WithTelemetry(opts.Telemetry),
		provider.WithMaxAttempts(cfg.Engine.MaxProviderAttempts),
	}
	if opts.Sleep != nil {
		orchOpts = append(orchOpts, provider.WithSleep(opts.Sleep))
	}

	eng := engine.New(
		engine.WithConfig(engine.Config{
			TurnTimeout:        cfg.Engine.TurnTimeout,
			HistoryLimit:       cfg.Engine.HistoryLimit,
			DefaultHomeCountry: engine.DefaultHomeCountry,
		}),
		engine.WithSessionStore(opts.SessionStore),
		engine.WithCatalog(cat),
		engine.WithExtractor(extract.New(
			extract.WithBareBudgetUnit(cfg.Budget.Unit),
			extract.WithDestinations(destinationNames(cat)...),
		)),
		engine.WithOrchestrator(provider.NewOrchestrator(registry, orchOpts...)),
		engine.WithProcessor(postprocess.New(cat,
			postprocess.WithRates(cfg.Currency.Rates),
			postprocess.WithHomeCurrency(cfg.Currency.Home),
			postprocess.WithCurrencyThreshold(cfg.Currency.Threshold),
			postprocess.WithSafetyRatio(cfg.Budget.SafetyRatio),
			postprocess.WithLogger(opts.Logger),
			postprocess.WithTelemetry(opts.Telemetry),
		)),
		engine.WithFallback(fallback.New(cat,
			fallback.WithSafetyRatio(cfg.Budget.SafetyRatio),
			fallback.WithHomeCurrency(cfg.Currency.Home),
			fallback.WithLogger(opts.Logger),
		)),
		engine.WithCallbacks(opts.Callbacks),
		engine.WithLogger(opts.Logger),
		engine.WithTelemetry(opts.Telemetry),
	)

	opts.Logger.Info("travelpms ready",
		"destinations", cat.Len(),
		"providers", len(registry.All()),
		"active_provider", registry.ActiveProvider(),
	)

	return &TravelPMS{opts: opts, catalog: cat, registry: registry, engine: eng}, nil
}

// Chat processes one user message. It never fails.
func (t *TravelPMS) Chat(ctx context.Context, sessionID, message string, settings *core.UserSettings) core.TurnResult {
	return t.engine.ProcessTurn(ctx, sessionID, message, settings)
}

// Select confirms a destination and completes the consultation.
func (t *TravelPMS) Select(ctx context.Context, sessionID, destinationID string) (core.Selection, error) {
	return t.engine.SelectDestination(ctx, sessionID, destinationID)
}

// Session returns a snapshot of a session.
func (t *TravelPMS) Session(ctx context.Context, sessionID string) (*core.Session, error) {
	return t.engine.Session(ctx, sessionID)
}

// Engine exposes the underlying engine.
func (t *TravelPMS) Engine() *engine.Engine { return t.engine }

// Catalog exposes the destination catalog in use.
func (t *TravelPMS) Catalog() *catalog.Catalog { return t.catalog }

// Registry exposes the provider registry.
func (t *TravelPMS) Registry() *provider.Registry { return t.registry }

// Handler serves the HTTP API.
func (t *TravelPMS) Handler(optFns ...func(o *httpapi.Options)) http.Handler {
	opts := append([]func(o *httpapi.Options){
		httpapi.WithCatalog(t.catalog),
		httpapi.WithLogger(t.opts.Logger),
	}, optFns...)
	return httpapi.NewServer(t.engine, opts...).Handler()
}

// destinationNames merges the built-in recognised names with the catalog's.
func destinationNames(cat *catalog.Catalog) []string {
	seen := make(map[string]bool, len(extract.DefaultDestinations))
	names := make([]string, 0, len(extract.DefaultDestinations)+cat.Len())
	for _, n := range extract.DefaultDestinations {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, rec := range cat.All() {
		if rec.Name != "" && !seen[rec.Name] {
			seen[rec.Name] = true
			names = append(names, rec.Name)
		}
	}
	return names
}
