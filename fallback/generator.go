package fallback

import (
	"strings"

	"github.com/namancryu/TravelPMS/core"
	"github.com/namancryu/TravelPMS/logging"
)

const (
	keywordScoreStep  = 5
	criteriaScoreStep = 7
	topScore          = 95
	defaultSeason     = "연중"
)

// Options configure a Generator.
type Options struct {
	// MaxRecommendations caps the recommendation set.
	MaxRecommendations int
	// DefaultStyles seed the criteria search when no preference was extracted.
	DefaultStyles []string
	SafetyRatio   float64
	// HomeCurrency labels every generated cost.
	HomeCurrency string
	Logger       logging.Logger
}

// WithMaxRecommendations caps the recommendation set size.
func WithMaxRecommendations(n int) func(o *Options) {
	return func(o *Options) { o.MaxRecommendations = n }
}

// WithSafetyRatio sets the fraction of the per-traveler budget used as ceiling.
func WithSafetyRatio(r float64) func(o *Options) {
	return func(o *Options) { o.SafetyRatio = r }
}

// WithHomeCurrency sets the currency code attached to generated costs.
func WithHomeCurrency(code string) func(o *Options) {
	return func(o *Options) {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			o.HomeCurrency = code
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Generator answers turns from templates and the destination catalog.
type Generator struct {
	finder core.DestinationFinder
	opts   Options
}

// New creates a Generator. finder may be nil, in which case recommendation
// sets are empty.
func New(finder core.DestinationFinder, optFns ...func(o *Options)) *Generator {
	opts := Options{
		MaxRecommendations: 3,
		DefaultStyles:      []string{"relaxation", "food"},
		SafetyRatio:        core.DefaultBudgetSafetyRatio,
		HomeCurrency:       "KRW",
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxRecommendations <= 0 {
		opts.MaxRecommendations = 3
	}
	return &Generator{finder: finder, opts: opts}
}

// Reply is a generated answer. Recommendations is nil unless the session is
// in RECOMMENDING, where it replaces the session's set.
type Reply struct {
	Text            string
	Recommendations []core.Recommendation
}

// Respond answers the latest message of s. The template variant is chosen by
// the session's message count.
func (g *Generator) Respond(s *core.Session, message string) Reply {
	tc := s.Context
	seed := s.MessageCount
	switch s.State {
	case core.StateGathering:
		return Reply{Text: gatheringReply(tc, seed)}
	case core.StateDeepening:
		return Reply{Text: deepeningReply(tc, seed)}
	case core.StateRecommending:
		recs := g.Recommend(tc, s.HomeCity)
		return Reply{Text: RenderRecommendations(tc, recs), Recommendations: recs}
	case core.StateSelecting:
		var chosen *core.Recommendation
		if rec, ok := core.FindRecommendation(s.Recommendations, message); ok {
			chosen = &rec
		} else if rec, ok := core.FindRecommendation(s.Recommendations, tc.Destination); ok {
			chosen = &rec
		}
		return Reply{Text: selectingReply(chosen, tc)}
	case core.StateComplete:
		return Reply{Text: completeReply(tc)}
	default:
		return Reply{Text: Greeting}
	}
}

// Recommend builds a budget-safe recommendation set for tc. Destinations
// named after homeCity are never suggested. Keyword matches take precedence
// over the scored criteria search; short criteria results are padded with
// the first catalog entries.
func (g *Generator) Recommend(tc core.TravelContext, homeCity string) []core.Recommendation {
	if g.finder == nil {
		return []core.Recommendation{}
	}
	homeCity = strings.TrimSpace(homeCity)
	limit := g.opts.MaxRecommendations

	if matched := excludeHome(g.finder.MatchKeywords(tc.Keywords), homeCity); len(matched) > 0 {
		return g.build(tc, head(matched, limit), keywordScoreStep)
	}

	styles := tc.Preferences
	if len(styles) == 0 {
		styles = g.opts.DefaultStyles
	}
	found := excludeHome(g.finder.Find(core.Criteria{
		Styles:     styles,
		Budget:     tc.Budget,
		Travelers:  tc.Travelers,
		FlightTime: tc.FlightTime,
	}), homeCity)
	found = head(found, limit)
	if len(found) < limit {
		seen := make(map[string]bool, len(found))
		for _, d := range found {
			seen[d.ID] = true
		}
		for _, d := range excludeHome(g.finder.All(), homeCity) {
			if len(found) == limit {
				break
			}
			if !seen[d.ID] {
				seen[d.ID] = true
				found = append(found, d)
			}
		}
	}
	return g.build(tc, found, criteriaScoreStep)
}

func (g *Generator) build(tc core.TravelContext, dests []core.DestinationRecord, step int) []core.Recommendation {
	recs := make([]core.Recommendation, 0, len(dests))
	for i, d := range dests {
		cost, clamped := core.ClampCost(d.AvgCost, tc, g.opts.SafetyRatio)
		if clamped {
			g.opts.Logger.Info("fallback cost clamped to budget ceiling",
				"destination", d.ID, "original", d.AvgCost, "corrected", cost)
		}
		season := d.BestSeason
		if season == "" {
			season = defaultSeason
		}
		highlights := append([]string{}, d.Highlights...)
		recs = append(recs, core.Recommendation{
			ID:            d.ID,
			Name:          d.Name,
			Country:       d.Country,
			Flag:          d.Flag,
			MatchScore:    max(topScore-i*step, 0),
			Reason:        reason(d),
			EstimatedCost: cost,
			Highlights:    highlights,
			BestSeason:    season,
			Currency:      g.opts.HomeCurrency,
		})
	}
	return recs
}

func reason(d core.DestinationRecord) string {
	pros := head(d.Pros, 2)
	switch {
	case len(pros) == 0:
		return d.Description
	case d.Description == "":
		return strings.Join(pros, ", ")
	default:
		return strings.Join(pros, ", ") + " - " + d.Description
	}
}

func excludeHome(dests []core.DestinationRecord, homeCity string) []core.DestinationRecord {
	if homeCity == "" {
		return dests
	}
	out := dests[:0:0]
	for _, d := range dests {
		if !core.IsHomeCity(d.Name, homeCity) {
			out = append(out, d)
		}
	}
	return out
}

func head[T any](list []T, n int) []T {
	if len(list) > n {
		return list[:n]
	}
	return list
}
