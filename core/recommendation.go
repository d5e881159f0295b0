package core

import (
	"math"
	"strings"
)

// Recommendation is a single destination suggestion. EstimatedCost is a
// per-traveler amount in the home currency.
type Recommendation struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Country       string   `json:"country"`
	Flag          string   `json:"flag"`
	MatchScore    int      `json:"matchScore"`
	Reason        string   `json:"reason"`
	EstimatedCost int64    `json:"estimatedCost"`
	Highlights    []string `json:"highlights"`
	BestSeason    string   `json:"bestSeason"`
	Currency      string   `json:"currency"`
}

// DefaultBudgetSafetyRatio keeps suggestions comfortably inside the stated budget.
const DefaultBudgetSafetyRatio = 0.9

// BudgetCeiling returns the highest per-traveler cost a recommendation may
// carry for ctx, computed as floor(budget × ratio / travelers). ok is false
// when no budget was stated. The ceiling is never below 1.
func BudgetCeiling(ctx TravelContext, ratio float64) (ceiling int64, ok bool) {
	if ctx.BudgetAmount <= 0 {
		return math.MaxInt64, false
	}
	if ratio <= 0 || ratio > 1 {
		ratio = DefaultBudgetSafetyRatio
	}
	perMille := int64(math.Round(ratio * 1000))
	d := int64(ctx.EffectiveTravelerCount()) * 1000
	// Split so the multiplication cannot overflow for large budgets.
	q, r := ctx.BudgetAmount/d, ctx.BudgetAmount%d
	ceiling = q*perMille + r*perMille/d
	if ceiling < 1 {
		ceiling = 1
	}
	return ceiling, true
}

// ClampCost applies the budget ceiling to cost. It reports whether the value
// was changed.
func ClampCost(cost int64, ctx TravelContext, ratio float64) (int64, bool) {
	ceiling, ok := BudgetCeiling(ctx, ratio)
	if !ok || cost <= ceiling {
		return cost, false
	}
	return ceiling, true
}

// CloneRecommendations deep-copies recs, preserving nil.
func CloneRecommendations(recs []Recommendation) []Recommendation {
	if recs == nil {
		return nil
	}
	out := make([]Recommendation, len(recs))
	for i, r := range recs {
		r.Highlights = append([]string(nil), r.Highlights...)
		out[i] = r
	}
	return out
}

// FindRecommendation returns the first recommendation whose name appears in
// text.
func FindRecommendation(recs []Recommendation, text string) (Recommendation, bool) {
	if text == "" {
		return Recommendation{}, false
	}
	for _, r := range recs {
		if r.Name != "" && strings.Contains(text, r.Name) {
			return r, true
		}
	}
	return Recommendation{}, false
}
