package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/namancryu/TravelPMS/core"
)

// InMemoryStore is a volatile SessionStore implementation storing sessions in a
// process local map. It is safe for concurrent access. Each returned session
// is cloned to prevent external mutation of internal state. Sessions live for
// the process lifetime; there is no delete operation.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// NewInMemoryStore constructs an empty in‑memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*core.Session),
		locks:    make(map[string]chan struct{}),
	}
}

// GetOrCreate returns an existing session (clone) or creates a new one lazily.
func (s *InMemoryStore) GetOrCreate(_ context.Context, sessionID string) (*core.Session, error) {
	s.mu.RLock()
	if sess, ok := s.sessions[sessionID]; ok {
		defer s.mu.RUnlock()
		return sess.Clone(), nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess.Clone(), nil
	}
	return s.createSessionLocked(sessionID).Clone(), nil
}

// Save stores a clone of the provided session snapshot.
func (s *InMemoryStore) Save(_ context.Context, sess *core.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session: cannot save session without id")
	}
	clone := sess.Clone()
	clone.Updated = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = clone
	return nil
}

// Lock acquires the per-session turn lock. Waiting honours ctx so a stuck turn
// cannot starve callers indefinitely.
func (s *InMemoryStore) Lock(ctx context.Context, sessionID string) (func(), error) {
	sem := s.semaphore(sessionID)
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("session %q: lock: %w", sessionID, ctx.Err())
	}
	var once sync.Once
	return func() { once.Do(func() { <-sem }) }, nil
}

// Len reports the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *InMemoryStore) semaphore(sessionID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	sem, ok := s.locks[sessionID]
	if !ok {
		sem = make(chan struct{}, 1)
		s.locks[sessionID] = sem
	}
	return sem
}

// createSessionLocked allocates and stores a new session; caller must already
// hold the write lock.
func (s *InMemoryStore) createSessionLocked(sessionID string) *core.Session {
	sess := core.NewSession(sessionID)
	s.sessions[sessionID] = sess
	return sess
}
