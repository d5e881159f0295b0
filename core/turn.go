package core

import "strings"

// UserSettings carries caller-supplied traveler facts.
type UserSettings struct {
	HomeCity    string `json:"homeCity"`
	HomeCountry string `json:"homeCountry"`
}

// IsHomeCity reports whether name refers to the traveler's home city. Names
// match when one is a prefix of the other, so "제주" covers "제주도".
func IsHomeCity(name, homeCity string) bool {
	name, homeCity = strings.TrimSpace(name), strings.TrimSpace(homeCity)
	if name == "" || homeCity == "" {
		return false
	}
	return strings.HasPrefix(name, homeCity) || strings.HasPrefix(homeCity, name)
}

// TurnResult is the outcome of processing one user turn. Response is never
// empty and State is always a valid ConversationState.
type TurnResult struct {
	Response        string            `json:"response"`
	State           ConversationState `json:"state"`
	Context         TravelContext     `json:"context"`
	Recommendations []Recommendation  `json:"recommendations"`
	MessageCount    int               `json:"messageCount"`
	Provider        string            `json:"provider"`
}

// Selection is the outcome of confirming a destination.
type Selection struct {
	Destination *DestinationRecord `json:"destination"`
	Context     TravelContext      `json:"context"`
	State       ConversationState  `json:"state"`
}
