// File: internal/session/store.go
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"authportal/internal/common"
	"authportal/internal/shared"

	"go.uber.org/zap"
)

// Listener is told about every session change; nil means signed out.
type Listener func(*Session)

// Reader is the read-only view of the session handed to screens.
type Reader interface {
	Current() *Session
	Subscribe(l Listener) (unsubscribe func())
}

// Repository persists the session between runs.
type Repository interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context) error
}

// Store holds the single session. Memory is authoritative; every change is
// written through to the repository, and a write failure is reported without
// undoing the in-memory change.
type Store struct {
	repo   Repository
	logger *zap.Logger

	mu          sync.RWMutex
	current     *Session
	initialized bool
	listeners   map[uint64]Listener
	nextID      uint64
}

var _ Reader = (*Store)(nil)

func NewStore(repo Repository, logger *zap.Logger) *Store {
	return &Store{
		repo:      repo,
		logger:    logger.Named("session"),
		listeners: make(map[uint64]Listener),
	}
}

// Load restores the persisted session. The store is initialized afterwards
// whatever the outcome; a missing row is not an error.
func (s *Store) Load(ctx context.Context) error {
	restored, err := s.repo.Load(ctx)
	if errors.Is(err, common.ErrNotFound) {
		restored, err = nil, nil
	}
	if err != nil {
		s.logger.Warn("Failed to restore persisted session", zap.Error(err))
		restored = nil
	}

	s.mu.Lock()
	s.current = restored.Clone()
	s.initialized = true
	s.mu.Unlock()

	s.notify(restored)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	return nil
}

// Initialized reports whether Load has completed.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Current returns a copy of the session, or nil when signed out.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// CurrentUser returns a copy of the session user, or nil when signed out.
func (s *Store) CurrentUser() *shared.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	u := s.current.User
	return &u
}

// Set replaces the session.
func (s *Store) Set(ctx context.Context, sess Session) error {
	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	s.notify(&sess)
	if err := s.repo.Save(ctx, &sess); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Update applies fn to the current session atomically. fn reports whether it
// changed anything; unchanged sessions are neither persisted nor announced.
// Update is a no-op when signed out.
func (s *Store) Update(ctx context.Context, fn func(*Session) bool) (bool, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return false, nil
	}
	next := s.current.Clone()
	if !fn(next) {
		s.mu.Unlock()
		return false, nil
	}
	s.current = next
	s.mu.Unlock()

	s.notify(next)
	if err := s.repo.Save(ctx, next); err != nil {
		return true, fmt.Errorf("failed to persist session: %w", err)
	}
	return true, nil
}

// Clear signs out locally and removes the persisted session.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.notify(nil)
	if err := s.repo.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete persisted session: %w", err)
	}
	return nil
}

// Subscribe registers l for every subsequent change.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// notify runs the listeners outside the lock, each with its own copy.
func (s *Store) notify(sess *Session) {
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(sess.Clone())
	}
}
