package testutil

import (
	"github.com/namancryu/TravelPMS/core"
)

// SessionBuilder constructs sessions with fluent chaining.
//
//	sess := NewSessionBuilder("s1").State(core.StateDeepening).Turns(2).
//	    User("바다 좋아요").Assistant("좋아요!").Build()
type SessionBuilder struct {
	sess *core.Session
}

// NewSessionBuilder starts from core.NewSession(id).
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{sess: core.NewSession(id)}
}

// State sets the dialogue state (chainable).
func (b *SessionBuilder) State(s core.ConversationState) *SessionBuilder {
	b.sess.State = s
	return b
}

// Turns sets the message count (chainable).
func (b *SessionBuilder) Turns(n int) *SessionBuilder {
	b.sess.MessageCount = n
	return b
}

// Context replaces the travel context (chainable).
func (b *SessionBuilder) Context(tc core.TravelContext) *SessionBuilder {
	b.sess.Context = tc.Clone()
	return b
}

// Home sets the traveler's home city and country (chainable).
func (b *SessionBuilder) Home(city, country string) *SessionBuilder {
	b.sess.HomeCity = city
	b.sess.HomeCountry = country
	return b
}

// Recommendations replaces the current recommendation set (chainable).
func (b *SessionBuilder) Recommendations(recs ...core.Recommendation) *SessionBuilder {
	b.sess.Recommendations = core.CloneRecommendations(recs)
	return b
}

// User appends a user message to the history (chainable).
func (b *SessionBuilder) User(text string) *SessionBuilder {
	b.sess.AddMessage(core.NewUserMessage(text))
	return b
}

// Assistant appends an assistant message to the history (chainable).
func (b *SessionBuilder) Assistant(text string) *SessionBuilder {
	b.sess.AddMessage(core.NewAssistantMessage(text))
	return b
}

// Build returns a copy of the constructed session.
func (b *SessionBuilder) Build() *core.Session {
	return b.sess.Clone()
}
