package handlers

import (
	"sync"

	"github.com/google/uuid"

	"github.com/alvaroquispe1998/email-generator/internal/engine"
)

type sessionEntry struct {
	mu      sync.Mutex
	profile string
	state   engine.Session
}

// Registry keeps one working-state tuple per session id. Sessions never see
// each other's state; the per-entry lock serializes updates so each session
// stays effectively single-actor.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*sessionEntry)}
}

func (r *Registry) Create(profile string, state engine.Session) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &sessionEntry{profile: profile, state: state}
	return id
}

// Snapshot returns a copy of the current state; evaluation runs on the copy.
func (r *Registry) Snapshot(id string) (engine.Session, string, bool) {
	entry, ok := r.lookup(id)
	if !ok {
		return engine.Session{}, "", false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state, entry.profile, true
}

// Update applies fn to the session state under its lock and keeps the result.
func (r *Registry) Update(id string, fn func(engine.Session) engine.Session) (engine.Session, bool) {
	entry, ok := r.lookup(id)
	if !ok {
		return engine.Session{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.state = fn(entry.state)
	return entry.state, true
}

func (r *Registry) lookup(id string) (*sessionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[id]
	return entry, ok
}
