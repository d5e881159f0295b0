package extract

import (
	"strings"

	"github.com/namancryu/TravelPMS/core"
)

// ManwonUnit is the value of the Korean myriad unit 만.
const ManwonUnit = 10000

// Input is a single message prepared for the rules.
type Input struct {
	Raw   string
	Lower string
	// Prev is the context before this message; rules may consult it but the
	// value they receive as ctx is what they update.
	Prev core.TravelContext
}

// Rule is one independent extraction step.
type Rule func(in Input, ctx core.TravelContext) core.TravelContext

// Options configures an Extractor.
type Options struct {
	// BareBudgetUnit multiplies numbers from the keyword ("총 800") and bare
	// ("800") budget idioms. The "만원" idiom always uses ManwonUnit.
	BareBudgetUnit int64
	// Destinations are the names recognised as explicit destination mentions.
	Destinations []string
	// Rules overrides the default pipeline. Used by tests.
	Rules []Rule
}

// Extractor runs the rule pipeline.
type Extractor struct {
	rules []Rule
}

// WithBareBudgetUnit sets the multiplier for unit-less budget idioms.
func WithBareBudgetUnit(unit int64) func(o *Options) {
	return func(o *Options) { o.BareBudgetUnit = unit }
}

// WithDestinations replaces the recognised destination names.
func WithDestinations(names ...string) func(o *Options) {
	return func(o *Options) { o.Destinations = names }
}

// New creates an Extractor with the default rule pipeline.
func New(optFns ...func(o *Options)) *Extractor {
	opts := Options{
		BareBudgetUnit: ManwonUnit,
		Destinations:   DefaultDestinations,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BareBudgetUnit <= 0 {
		opts.BareBudgetUnit = ManwonUnit
	}
	rules := opts.Rules
	if len(rules) == 0 {
		rules = []Rule{
			ExtractStyles,
			ExtractTravelType,
			ExtractCompanions,
			ExtractGroupSize,
			ExtractTravelerDetails,
			BudgetRule(opts.BareBudgetUnit),
			DeriveBudgetTier,
			DeriveCompanionFromCount,
			ExtractDuration,
			ExtractFlightTime,
			DestinationRule(opts.Destinations),
			ExtractKeywords,
		}
	}
	return &Extractor{rules: rules}
}

// Extract returns the context updated with facts found in message. prev is
// never modified; the result already carries every prior value that the
// message did not change.
func (e *Extractor) Extract(message string, prev core.TravelContext) core.TravelContext {
	in := Input{
		Raw:   message,
		Lower: strings.ToLower(message),
		Prev:  prev.Clone(),
	}
	ctx := prev.Clone()
	for _, rule := range e.rules {
		ctx = rule(in, ctx)
	}
	return ctx
}

var defaultExtractor = New()

// Extract runs the default pipeline.
func Extract(message string, prev core.TravelContext) core.TravelContext {
	return defaultExtractor.Extract(message, prev)
}
