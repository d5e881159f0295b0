package core

import (
	"context"
	"time"
)

// Session is the per-conversation state owned by a SessionStore. Stores hand
// out clones; the engine mutates its copy while holding the session lock and
// writes it back with Save.
type Session struct {
	ID              string            `json:"id"`
	State           ConversationState `json:"state"`
	MessageCount    int               `json:"messageCount"`
	Context         TravelContext     `json:"context"`
	History         []Message         `json:"history"`
	Recommendations []Recommendation  `json:"recommendations"`
	HomeCity        string            `json:"homeCity,omitempty"`
	HomeCountry     string            `json:"homeCountry,omitempty"`
	Created         time.Time         `json:"created"`
	Updated         time.Time         `json:"updated"`
}

// NewSession creates a session in the GREETING state.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:              id,
		State:           StateGreeting,
		Context:         TravelContext{}.Clone(),
		History:         []Message{},
		Recommendations: []Recommendation{},
		Created:         now,
		Updated:         now,
	}
}

// AddMessage appends to the history updating the Updated timestamp.
func (s *Session) AddMessage(m Message) {
	s.History = append(s.History, m)
	s.Updated = time.Now()
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	clone := *s
	clone.Context = s.Context.Clone()
	clone.History = make([]Message, len(s.History))
	copy(clone.History, s.History)
	clone.Recommendations = CloneRecommendations(s.Recommendations)
	if clone.Recommendations == nil {
		clone.Recommendations = []Recommendation{}
	}
	return &clone
}

// SessionStore persists sessions. Implementations must serialize turns for the
// same session id through Lock so read-modify-write cycles cannot interleave.
type SessionStore interface {
	// GetOrCreate returns a clone of the stored session, creating a default
	// one when the id is unknown.
	GetOrCreate(ctx context.Context, id string) (*Session, error)
	// Save upserts a clone of s.
	Save(ctx context.Context, s *Session) error
	// Lock blocks until the caller holds the exclusive turn lock for id or ctx
	// is done. The returned function releases the lock.
	Lock(ctx context.Context, id string) (unlock func(), err error)
}
