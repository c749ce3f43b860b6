// Package session tracks which access token is the live session of each
// player.
package session

import (
	"sync"

	"github.com/pixil98/go-cave/internal/game"
)

type entry[T any] struct {
	token string
	value T
}

// Registry maps a player id to its live session. At most one session per
// player exists; adding a new one supersedes the old token.
type Registry[T any] struct {
	mu       sync.RWMutex
	sessions map[string]entry[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		sessions: map[string]entry[T]{},
	}
}

// Add installs v as the session of id, replacing any previous one.
func (r *Registry[T]) Add(id, token string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = entry[T]{token: token, value: v}
}

// Get returns the session of id regardless of token.
func (r *Registry[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	return e.value, ok
}

// Validate returns the session of id if token is its live token, and
// game.ErrSessionExpired otherwise.
func (r *Registry[T]) Validate(id, token string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok || e.token != token {
		var zero T
		return zero, game.ErrSessionExpired
	}
	return e.value, nil
}

// Token returns the live token of id, or "" if there is no session.
func (r *Registry[T]) Token(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[id].token
}

// Remove ends the session of id. It reports whether there was one.
func (r *Registry[T]) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

// Clear ends every session.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = map[string]entry[T]{}
}

func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
