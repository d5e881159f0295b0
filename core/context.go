package core

// TravelType distinguishes package tours from self-organized trips.
type TravelType string

const (
	TravelTypeUnset   TravelType = ""
	TravelTypePackage TravelType = "package"
	TravelTypeFree    TravelType = "free"
)

// BudgetTier is the coarse budget bucket derived from BudgetAmount or keywords.
type BudgetTier string

const (
	BudgetUnset  BudgetTier = ""
	BudgetLow    BudgetTier = "low"
	BudgetMedium BudgetTier = "medium"
	BudgetHigh   BudgetTier = "high"
)

// Companion type tags.
const (
	CompanionFamily  = "family"
	CompanionCouple  = "couple"
	CompanionFriends = "friends"
	CompanionSolo    = "solo"
)

// DefaultTravelerCount is assumed whenever the traveler did not state a group size.
const DefaultTravelerCount = 2

// TravelContext is the structured preference record accumulated over a
// conversation. It is a value type: copy with Clone before mutating slices.
type TravelContext struct {
	TravelType      TravelType `json:"travelType,omitempty"`
	TravelStyle     string     `json:"travelStyle,omitempty"`
	Preferences     []string   `json:"preferences"`
	Budget          BudgetTier `json:"budget,omitempty"`
	BudgetAmount    int64      `json:"budgetAmount,omitempty"`
	TravelerCount   int        `json:"travelerCount,omitempty"`
	Travelers       string     `json:"travelers,omitempty"`
	TravelerDetails string     `json:"travelerDetails,omitempty"`
	Duration        string     `json:"duration,omitempty"`
	FlightTime      string     `json:"flightTime,omitempty"`
	Destination     string     `json:"destination,omitempty"`
	Keywords        []string   `json:"keywords"`
}

// Clone returns a deep copy safe for independent mutation.
func (c TravelContext) Clone() TravelContext {
	out := c
	out.Preferences = append([]string(nil), c.Preferences...)
	out.Keywords = append([]string(nil), c.Keywords...)
	if out.Preferences == nil {
		out.Preferences = []string{}
	}
	if out.Keywords == nil {
		out.Keywords = []string{}
	}
	return out
}

// EffectiveTravelerCount returns the stated group size or DefaultTravelerCount.
func (c TravelContext) EffectiveTravelerCount() int {
	if c.TravelerCount > 0 {
		return c.TravelerCount
	}
	return DefaultTravelerCount
}

// HasPreference reports whether style tag p was extracted.
func (c TravelContext) HasPreference(p string) bool {
	for _, v := range c.Preferences {
		if v == p {
			return true
		}
	}
	return false
}

// PopulatedFields counts the qualifying fields (style, companions, budget,
// duration) that drive the state transition policy.
func (c TravelContext) PopulatedFields() int {
	n := 0
	if c.TravelStyle != "" || len(c.Preferences) > 0 {
		n++
	}
	if c.Travelers != "" {
		n++
	}
	if c.Budget != BudgetUnset || c.BudgetAmount > 0 {
		n++
	}
	if c.Duration != "" {
		n++
	}
	return n
}
