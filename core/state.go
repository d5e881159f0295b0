package core

// ConversationState is the position of a session in the consulting dialogue.
type ConversationState string

const (
	StateGreeting     ConversationState = "GREETING"
	StateGathering    ConversationState = "GATHERING"
	StateDeepening    ConversationState = "DEEPENING"
	StateRecommending ConversationState = "RECOMMENDING"
	StateSelecting    ConversationState = "SELECTING"
	StateComplete     ConversationState = "COMPLETE"
)

var stateRank = map[ConversationState]int{
	StateGreeting:     0,
	StateGathering:    1,
	StateDeepening:    2,
	StateRecommending: 3,
	StateSelecting:    4,
	StateComplete:     5,
}

// Valid reports whether s is one of the declared states.
func (s ConversationState) Valid() bool {
	_, ok := stateRank[s]
	return ok
}

// AtLeast reports whether s is at or beyond other in dialogue order.
func (s ConversationState) AtLeast(other ConversationState) bool {
	return stateRank[s] >= stateRank[other]
}

func (s ConversationState) String() string { return string(s) }
