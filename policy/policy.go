// Package policy decides the next conversation state of a consulting session.
package policy

import "github.com/namancryu/TravelPMS/core"

// Thresholds used by Next.
const (
	recommendAfterTurns       = 2
	recommendWithFields       = 2
	recommendAfterTurnsSparse = 3
)

// Next computes the state a session should move to from its turn count, the
// number of populated qualifying fields, and whether a destination is fixed.
func Next(messageCount, populated int, destinationFixed bool) core.ConversationState {
	switch {
	case destinationFixed && messageCount >= recommendAfterTurns:
		return core.StateRecommending
	case messageCount >= recommendAfterTurns && populated >= recommendWithFields:
		return core.StateRecommending
	case messageCount >= recommendAfterTurnsSparse && populated >= 1:
		return core.StateRecommending
	case messageCount >= 1 && populated >= 1:
		return core.StateDeepening
	case messageCount >= 1:
		return core.StateGathering
	default:
		return core.StateGreeting
	}
}

// ForSession applies Next to the session's counters and context.
func ForSession(s *core.Session) core.ConversationState {
	return Next(s.MessageCount, s.Context.PopulatedFields(), s.Context.Destination != "")
}

// Advance returns the state to store given the current one and the freshly
// computed one. Sessions that already reached recommendations never fall back
// to a qualifying state.
func Advance(current, next core.ConversationState) core.ConversationState {
	if current.AtLeast(core.StateRecommending) && !next.AtLeast(core.StateRecommending) {
		return current
	}
	return next
}
