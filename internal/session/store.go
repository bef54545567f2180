package session

import (
	"sync"
	"time"

	"github.com/auditnote/auditnote-api/internal/models"
)

// Store keeps live sessions keyed by session id
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session), now: time.Now}
}

// GetOrCreate returns the session for id, creating it for owner when it
// does not exist (first request after login, or after a restart).
func (s *Store) GetOrCreate(id string, owner models.Identity) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := newSession(id, owner, s.now)
	s.sessions[id] = sess
	return sess
}

// Get returns the session for id
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete drops a session
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle drops sessions unused for longer than ttl and returns how
// many were removed.
func (s *Store) EvictIdle(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
