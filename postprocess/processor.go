package postprocess

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/namancryu/TravelPMS/core"
	"github.com/namancryu/TravelPMS/logging"
	"github.com/namancryu/TravelPMS/telemetry"
)

// Defaults for Options.
const (
	DefaultHomeCurrency      = "KRW"
	DefaultCurrencyThreshold = 100000
	DefaultEstimatedCost     = 1000000
	DefaultFlag              = "🌍"
	maxMatchScore            = 100
)

// DefaultRates converts one unit of a foreign currency to KRW.
func DefaultRates() map[string]float64 {
	return map[string]float64{
		"EUR": 1450,
		"USD": 1350,
		"GBP": 1700,
		"AUD": 900,
		"CNY": 190,
		"TRY": 45,
	}
}

// Options configure a Processor.
type Options struct {
	HomeCurrency string
	// Rates maps currency codes to home-currency units.
	Rates map[string]float64
	// CurrencyThreshold is the cost below which a foreign-currency candidate
	// is assumed to be quoted in that currency.
	CurrencyThreshold int64
	SafetyRatio       float64
	// DefaultCost is used when neither the model nor the reference has a cost.
	DefaultCost int64
	Logger      logging.Logger
	Telemetry   *telemetry.Manager
}

// WithRates replaces the exchange-rate table.
func WithRates(rates map[string]float64) func(o *Options) {
	return func(o *Options) { o.Rates = rates }
}

// WithHomeCurrency sets the currency costs are expressed in.
func WithHomeCurrency(code string) func(o *Options) {
	return func(o *Options) { o.HomeCurrency = strings.ToUpper(code) }
}

// WithCurrencyThreshold sets the suspicious-cost threshold.
func WithCurrencyThreshold(v int64) func(o *Options) {
	return func(o *Options) { o.CurrencyThreshold = v }
}

// WithSafetyRatio sets the fraction of the per-traveler budget used as ceiling.
func WithSafetyRatio(r float64) func(o *Options) {
	return func(o *Options) { o.SafetyRatio = r }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithTelemetry counts corrections.
func WithTelemetry(m *telemetry.Manager) func(o *Options) {
	return func(o *Options) { o.Telemetry = m }
}

// Processor validates and corrects structured recommendations.
type Processor struct {
	ref  core.DestinationReference
	opts Options
}

// New creates a Processor. ref may be nil.
func New(ref core.DestinationReference, optFns ...func(o *Options)) *Processor {
	opts := Options{
		HomeCurrency:      DefaultHomeCurrency,
		Rates:             DefaultRates(),
		CurrencyThreshold: DefaultCurrencyThreshold,
		SafetyRatio:       core.DefaultBudgetSafetyRatio,
		DefaultCost:       DefaultEstimatedCost,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Processor{ref: ref, opts: opts}
}

// Outcome is the processed provider answer.
type Outcome struct {
	// Text is the answer with the structured block removed.
	Text            string
	Recommendations []core.Recommendation
	// Structured is true when a parseable, non-empty recommendation set was found.
	Structured bool
}

type candidate struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Country       string   `json:"country"`
	Flag          string   `json:"flag"`
	MatchScore    float64  `json:"matchScore"`
	Reason        string   `json:"reason"`
	EstimatedCost float64  `json:"estimatedCost"`
	Highlights    []string `json:"highlights"`
	BestSeason    string   `json:"bestSeason"`
	Currency      string   `json:"currency"`
}

type payload struct {
	Recommendations []candidate `json:"recommendations"`
}

// Process extracts and corrects recommendations from raw. Candidates naming
// homeCity, or a longer or shorter form of it, are dropped.
func (p *Processor) Process(ctx context.Context, raw string, tc core.TravelContext, homeCity string) Outcome {
	body, stripped, found := ExtractBlock(raw)
	out := Outcome{Text: stripped}
	if !found {
		return out
	}

	var pl payload
	if err := json.Unmarshal([]byte(body), &pl); err != nil {
		p.opts.Logger.Warn("structured block is not valid JSON", "error", err)
		return out
	}

	homeCity = strings.TrimSpace(homeCity)
	recs := make([]core.Recommendation, 0, len(pl.Recommendations))
	for _, c := range pl.Recommendations {
		rec, ok := p.reconcile(ctx, c, tc)
		if !ok {
			continue
		}
		if core.IsHomeCity(rec.Name, homeCity) {
			p.opts.Logger.Info("dropping recommendation for home city", "name", rec.Name)
			continue
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		p.opts.Logger.Warn("structured block carried no usable recommendations")
		return out
	}
	out.Recommendations = recs
	out.Structured = true
	return out
}

func (p *Processor) reconcile(ctx context.Context, c candidate, tc core.TravelContext) (core.Recommendation, bool) {
	var ref core.DestinationRecord
	known := false
	if p.ref != nil && c.ID != "" {
		ref, known = p.ref.LookupByID(c.ID)
	}

	rec := core.Recommendation{
		ID:         c.ID,
		Name:       firstNonEmpty(c.Name, ref.Name, c.ID),
		Country:    firstNonEmpty(c.Country, ref.Country),
		Flag:       firstNonEmpty(c.Flag, ref.Flag, DefaultFlag),
		MatchScore: clampScore(c.MatchScore),
		Reason:     c.Reason,
		Highlights: c.Highlights,
		BestSeason: firstNonEmpty(c.BestSeason, ref.BestSeason),
		Currency:   strings.ToUpper(firstNonEmpty(c.Currency, p.opts.HomeCurrency)),
	}
	if rec.Name == "" {
		return core.Recommendation{}, false
	}
	if rec.ID == "" {
		rec.ID = rec.Name
	}
	if len(rec.Highlights) == 0 {
		rec.Highlights = append([]string(nil), ref.Highlights...)
	}
	if rec.Highlights == nil {
		rec.Highlights = []string{}
	}

	cost := int64(math.Round(c.EstimatedCost))
	switch {
	case cost > 0:
	case known && ref.AvgCost > 0:
		cost = ref.AvgCost
	default:
		cost = p.opts.DefaultCost
	}

	rec.EstimatedCost = p.correctCurrency(ctx, rec, cost)
	rec.EstimatedCost = p.clamp(ctx, rec, tc)
	return rec, true
}

// correctCurrency converts costs that look like foreign-currency amounts.
func (p *Processor) correctCurrency(ctx context.Context, rec core.Recommendation, cost int64) int64 {
	if cost >= p.opts.CurrencyThreshold || rec.Currency == p.opts.HomeCurrency {
		return cost
	}
	rate, ok := p.opts.Rates[rec.Currency]
	if !ok || rate <= 0 {
		return cost
	}
	corrected := int64(math.Round(float64(cost) * rate))
	p.opts.Logger.Warn("cost corrected from foreign currency",
		"name", rec.Name, "original", cost, "currency", rec.Currency, "rate", rate, "corrected", corrected,
		"reason", "estimate below threshold")
	p.opts.Telemetry.RecordCorrection(ctx, "currency")
	return corrected
}

func (p *Processor) clamp(ctx context.Context, rec core.Recommendation, tc core.TravelContext) int64 {
	clamped, changed := core.ClampCost(rec.EstimatedCost, tc, p.opts.SafetyRatio)
	if changed {
		p.opts.Logger.Warn("cost clamped to budget ceiling",
			"name", rec.Name, "original", rec.EstimatedCost, "corrected", clamped,
			"budget", tc.BudgetAmount, "travelers", tc.EffectiveTravelerCount(), "reason", "over per-traveler budget")
		p.opts.Telemetry.RecordCorrection(ctx, "budget")
	}
	return clamped
}

// Clamp applies the processor's budget ceiling to every recommendation.
func (p *Processor) Clamp(ctx context.Context, recs []core.Recommendation, tc core.TravelContext) []core.Recommendation {
	out := core.CloneRecommendations(recs)
	for i := range out {
		out[i].EstimatedCost = p.clamp(ctx, out[i], tc)
	}
	return out
}

func clampScore(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > maxMatchScore:
		return maxMatchScore
	default:
		return int(math.Round(v))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
