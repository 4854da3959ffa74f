package wizard

import (
	"sync"
	"time"

	"dataforge/internal/store"

	"github.com/google/uuid"
)

// Session is one in-flight wizard, owned by a single user. Handlers must
// hold the session mutex while driving the controller.
type Session struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	CreatedAt time.Time

	Mu         sync.Mutex
	Controller *Controller
}

// Sessions is an in-memory registry of in-flight wizard sessions.
// Abandoning a session has no side effects; nothing is persisted until the
// controller commits.
type Sessions struct {
	mu sync.Mutex
	m  map[uuid.UUID]*Session
}

// NewSessions creates an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[uuid.UUID]*Session)}
}

// Create starts a new wizard session for the given owner.
func (s *Sessions) Create(ownerID uuid.UUID) *Session {
	sess := &Session{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		CreatedAt:  time.Now().UTC(),
		Controller: New(ownerID),
	}

	s.mu.Lock()
	s.m[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns the session if it exists and belongs to the owner. A missing
// session and a foreign session are both ErrNotFound.
func (s *Sessions) Get(id, ownerID uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[id]
	if !ok || sess.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	return sess, nil
}

// Remove discards a session. Safe to call for unknown ids.
func (s *Sessions) Remove(id uuid.UUID) {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()
}
