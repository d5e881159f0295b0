package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/namancryu/TravelPMS/core"
	"github.com/namancryu/TravelPMS/logging"
	"github.com/namancryu/TravelPMS/model"
	"github.com/namancryu/TravelPMS/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Result is the outcome of one orchestration call. An empty Response means
// every provider was disabled or failed and Provider is MockName.
type Result struct {
	Response string
	Provider string
}

// Fallback reports whether the caller must produce the answer itself.
func (r Result) Fallback() bool { return r.Response == "" }

// ErrAttemptBudget stops the chain once a turn has spent its provider attempts.
var ErrAttemptBudget = errors.New("provider attempt budget exhausted")

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configure an Orchestrator.
type Options struct {
	Logger    logging.Logger
	Telemetry *telemetry.Manager
	// Sleep is used between quota retries. Tests inject an instant version.
	Sleep SleepFunc
	// MaxAttempts caps attempts per Generate call across all providers,
	// quota retries included. Zero means unlimited.
	MaxAttempts int
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithTelemetry records spans and metrics for every attempt.
func WithTelemetry(m *telemetry.Manager) func(o *Options) {
	return func(o *Options) { o.Telemetry = m }
}

// WithSleep replaces the backoff wait.
func WithSleep(fn SleepFunc) func(o *Options) {
	return func(o *Options) { o.Sleep = fn }
}

// WithMaxAttempts caps the attempts one Generate call may make.
func WithMaxAttempts(n int) func(o *Options) {
	return func(o *Options) { o.MaxAttempts = n }
}

// Orchestrator walks the registry in priority order until one provider answers.
type Orchestrator struct {
	registry *Registry
	opts     Options
}

// NewOrchestrator creates an Orchestrator over registry.
func NewOrchestrator(registry *Registry, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Sleep:  sleepContext,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if registry == nil {
		registry = NewRegistry(nil)
	}
	return &Orchestrator{registry: registry, opts: opts}
}

// Registry exposes the underlying registry.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// Generate returns the first non-empty answer. It never fails: exhaustion and
// cancellation both yield a fallback Result.
func (o *Orchestrator) Generate(ctx context.Context, prompt string) Result {
	available := o.registry.Available()
	if len(available) == 0 {
		o.opts.Logger.Debug("no provider enabled, using fallback")
		return Result{Provider: MockName}
	}

	limiter := core.NewAttemptLimiter(o.opts.MaxAttempts)
	for _, d := range available {
		if ctx.Err() != nil {
			o.opts.Logger.Warn("turn deadline reached before provider chain finished", "next_provider", d.Name, "error", ctx.Err())
			break
		}
		text, err := o.call(ctx, d, prompt, limiter)
		if err == nil {
			return Result{Response: text, Provider: d.Name}
		}
		if errors.Is(err, ErrAttemptBudget) {
			o.opts.Logger.Warn("provider attempt budget spent", "next_provider", d.Name, "attempts", o.opts.MaxAttempts)
			break
		}
		o.opts.Logger.Info("advancing to next provider", "failed_provider", d.Name, "error_kind", model.Classify(err).String())
	}

	o.opts.Logger.Warn("all providers failed, using fallback")
	return Result{Provider: MockName}
}

// call runs one provider, retrying quota errors with linear backoff. Any
// other error, or a spent attempt budget, ends the retries immediately.
func (o *Orchestrator) call(ctx context.Context, d Descriptor, prompt string, limiter *core.AttemptLimiter) (string, error) {
	retries := d.QuotaRetries
	if retries < 0 {
		retries = 0
	}
	b := &linearBackOff{
		ctx:   ctx,
		base:  d.RetryBackoff,
		sleep: o.opts.Sleep,
		onWait: func(attempt int, wait time.Duration) {
			o.opts.Logger.Info("backing off before quota retry", "provider", d.Name, "attempt", attempt, "retries", retries, "wait", wait)
		},
	}
	attempt := 0
	op := func() (string, error) {
		if err := limiter.Increment(); err != nil {
			return "", backoff.Permanent(fmt.Errorf("%w: %v", ErrAttemptBudget, err))
		}
		attempt++
		text, err := o.attempt(ctx, d, attempt, prompt)
		if err != nil && (!model.IsQuota(err) || limiter.Remaining() == 0) {
			return "", backoff.Permanent(err)
		}
		return text, err
	}
	text, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(retries+1)),
		backoff.WithMaxElapsedTime(0),
	)
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	return text, err
}

// linearBackOff waits base×n before the n-th retry. The wait runs through
// the orchestrator's SleepFunc so tests never block on a real timer; the
// retry loop itself is then told to continue without further delay.
type linearBackOff struct {
	ctx    context.Context
	base   time.Duration
	n      int
	sleep  SleepFunc
	onWait func(attempt int, wait time.Duration)
}

func (b *linearBackOff) Reset() { b.n = 0 }

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	wait := b.base * time.Duration(b.n)
	if b.onWait != nil {
		b.onWait(b.n, wait)
	}
	if err := b.sleep(b.ctx, wait); err != nil {
		return backoff.Stop
	}
	return 0
}

func (o *Orchestrator) attempt(ctx context.Context, d Descriptor, attempt int, prompt string) (text string, err error) {
	ctx, span := o.opts.Telemetry.StartSpan(ctx, "travel.provider.generate",
		attribute.String("travel.provider", d.Name),
		attribute.String("travel.provider.model", d.Model),
		attribute.Int("travel.provider.attempt", attempt),
	)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			text, err = "", model.NewProviderError(d.Name, 0, errors.New("provider panicked"))
			o.opts.Logger.Error("provider panicked", "provider", d.Name, "panic", r)
		}
		kind := ""
		if err != nil {
			kind = model.Classify(err).String()
		}
		logging.LogProviderCall(o.opts.Logger, d.Name, attempt, time.Since(start), kind, err)
		o.opts.Telemetry.RecordProviderAttempt(ctx, telemetry.AttemptData{Provider: d.Name, Attempt: attempt, ErrorKind: kind, Error: err})
		o.opts.Telemetry.EndSpan(span, err)
	}()

	text, err = d.Provider.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", model.NewProviderError(d.Name, 0, model.ErrEmptyResponse)
	}
	return text, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
