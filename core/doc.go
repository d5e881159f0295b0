// Package core provides the foundational domain types and interfaces of the
// travel consulting engine. It defines:
//
//   - ConversationState (the GREETING → … → COMPLETE dialogue machine)
//   - TravelContext (structured preferences extracted from free-form text)
//   - Recommendation (a destination suggestion bound by the budget ceiling)
//   - Session / Message (per-conversation state with append-only history)
//   - SessionStore and DestinationReference (pluggable collaborators)
//   - TurnResult / UserSettings (the processTurn contract)
//
// The package keeps implementation concerns (persistence, provider calls,
// extraction heuristics) out of scope, exposing small interfaces so storage
// backends and catalogs can be swapped without touching the engine.
package core
