package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/docqa/pkg/utils"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// ErrNotFound is returned for an unknown or expired session ID.
var ErrNotFound = errors.New("session not found")

// Manager owns every live session. Sessions expire after ttl without use; an expired
// or deleted session is closed, dropping its index and history.
type Manager struct {
	sessions *cache.Cache
	ttl      time.Duration
	deps     Deps
	logger   *zap.Logger
}

// NewManager creates a manager whose sessions share deps. Expired sessions are
// swept every cleanupInterval.
func NewManager(deps Deps, ttl, cleanupInterval time.Duration) *Manager {
	m := &Manager{
		sessions: cache.New(ttl, cleanupInterval),
		ttl:      ttl,
		deps:     deps,
		logger:   utils.LoggerOrNop(deps.Logger),
	}
	m.sessions.OnEvicted(func(id string, v interface{}) {
		if s, ok := v.(*Session); ok {
			if err := s.Close(); err != nil {
				m.logger.Warn("close session failed", zap.String("session", id), zap.Error(err))
			}
			m.logger.Debug("session closed", zap.String("session", id))
		}
	})
	return m
}

// Create starts a new empty session with a random ID.
func (m *Manager) Create() *Session {
	s := New(uuid.New().String(), m.deps)
	m.sessions.Set(s.ID(), s, cache.DefaultExpiration)
	m.logger.Debug("session created", zap.String("session", s.ID()))
	return s
}

// Get returns the session with id and extends its expiry.
func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	s := v.(*Session)
	// Replace, not Set, so a concurrent Delete is not undone.
	_ = m.sessions.Replace(id, s, cache.DefaultExpiration)
	return s, nil
}

// Delete closes and removes the session with id.
func (m *Manager) Delete(id string) error {
	if _, ok := m.sessions.Get(id); !ok {
		return ErrNotFound
	}
	m.sessions.Delete(id)
	return nil
}

// Count returns the number of live sessions, including expired ones not yet swept.
func (m *Manager) Count() int {
	return m.sessions.ItemCount()
}

// Close closes every session.
func (m *Manager) Close() {
	for id := range m.sessions.Items() {
		m.sessions.Delete(id)
	}
}
