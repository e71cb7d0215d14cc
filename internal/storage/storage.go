package storage

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/shopdesk/internal/imagelist"
	"github.com/lehigh-university-libraries/shopdesk/internal/productform"
)

var ErrSessionNotFound = errors.New("session not found")

// EditSession is one open product form
type EditSession struct {
	ID        string            `json:"id"`
	Form      *productform.Form `json:"form"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (e *EditSession) clone() *EditSession {
	c := *e
	if e.Form != nil {
		form := *e.Form
		if e.Form.Images != nil {
			form.Images = imagelist.New(e.Form.Images.Slots()...)
		}
		c.Form = &form
	}
	return &c
}

// SessionStore keeps editing sessions in memory. Every session it returns is
// a copy; changes go through Update.
type SessionStore struct {
	sessions map[string]*EditSession
	mu       sync.RWMutex
	now      func() time.Time
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*EditSession),
		now:      time.Now,
	}
}

// Create opens a session for form and takes ownership of it
func (s *SessionStore) Create(form *productform.Form) *EditSession {
	now := s.now()
	session := &EditSession{
		ID:        uuid.NewString(),
		Form:      form,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return session.clone()
}

func (s *SessionStore) Get(sessionID string) (*EditSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session.clone(), nil
}

// Update runs fn on the session while holding the store lock. UpdatedAt is
// only bumped when fn succeeds.
func (s *SessionStore) Update(sessionID string, fn func(*EditSession) error) (*EditSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	if err := fn(session); err != nil {
		return session.clone(), err
	}
	session.UpdatedAt = s.now()
	return session.clone(), nil
}

// GetAll returns every session, oldest first
func (s *SessionStore) GetAll() []*EditSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*EditSession, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, v.clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (s *SessionStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}
