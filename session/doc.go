// Package session houses concrete implementations of core.SessionStore.
// The interface itself (and the Session struct) live in the core package so
// the engine depends only on the contract, never on a concrete backend.
//
// InMemoryStore keeps sessions for the process lifetime and serializes turns
// per session id with a cancellable lock. Add additional backends (Redis,
// Postgres, …) in sub‑packages without changing any calling code.
package session
