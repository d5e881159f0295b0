package core

// DestinationRecord is a catalog entry for a known destination.
type DestinationRecord struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Country     string   `json:"country" yaml:"country"`
	Flag        string   `json:"flag" yaml:"flag"`
	Styles      []string `json:"styles" yaml:"styles"`
	BudgetRange []string `json:"budgetRange" yaml:"budget_range"`
	BestFor     []string `json:"bestFor" yaml:"best_for"`
	FlightTime  string   `json:"flightTime" yaml:"flight_time"`
	AvgCost     int64    `json:"avgCost" yaml:"avg_cost"`
	Rating      float64  `json:"rating" yaml:"rating"`
	BestSeason  string   `json:"bestSeason" yaml:"best_season"`
	Pros        []string `json:"pros" yaml:"pros"`
	Cons        []string `json:"cons" yaml:"cons"`
	Description string   `json:"description" yaml:"description"`
	Highlights  []string `json:"highlights" yaml:"highlights"`
	Currency    string   `json:"currency" yaml:"currency"`
}

// Clone returns a deep copy.
func (d DestinationRecord) Clone() DestinationRecord {
	out := d
	out.Styles = append([]string(nil), d.Styles...)
	out.BudgetRange = append([]string(nil), d.BudgetRange...)
	out.BestFor = append([]string(nil), d.BestFor...)
	out.Pros = append([]string(nil), d.Pros...)
	out.Cons = append([]string(nil), d.Cons...)
	out.Highlights = append([]string(nil), d.Highlights...)
	return out
}

// Criteria drives a scored search over the catalog.
type Criteria struct {
	Styles     []string
	Budget     BudgetTier
	Travelers  string
	FlightTime string
}

// DestinationReference is the read-only catalog consumed by the engine.
// ok=false from LookupByID is a normal outcome.
type DestinationReference interface {
	LookupByID(id string) (DestinationRecord, bool)
}

// DestinationFinder is implemented by references that also support the
// keyword and criteria queries used by the mock fallback.
type DestinationFinder interface {
	DestinationReference
	MatchKeywords(keywords []string) []DestinationRecord
	Find(c Criteria) []DestinationRecord
	All() []DestinationRecord
}
