package domain

import (
	"sync"
	"time"
)

// Session is the per-connection viewer state. A connection may exist
// unauthenticated (watch-only) and unsubscribed.
type Session struct {
	ID              string
	UserID          string
	Username        string
	Roles           []string
	Authenticated   bool
	CurrentStreamID string
	CreatedAt       time.Time
	LastActiveAt    time.Time
	mu              sync.RWMutex
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

func (s *Session) Authenticate(userID, username string, roles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserID = userID
	s.Username = username
	s.Roles = roles
	s.Authenticated = true
	s.LastActiveAt = time.Now()
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Authenticated
}

func (s *Session) JoinStream(streamID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CurrentStreamID = streamID
	s.LastActiveAt = time.Now()
}

func (s *Session) LeaveStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CurrentStreamID = ""
	s.LastActiveAt = time.Now()
}

func (s *Session) GetCurrentStream() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CurrentStreamID
}

func (s *Session) GetUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID
}

func (s *Session) GetUsername() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Username
}

func (s *Session) IsInStream() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CurrentStreamID != ""
}

func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
