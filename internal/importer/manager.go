package importer

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Manager holds live import sessions by id. Sessions expire after the TTL:
// there is no persistence of partial progress, an expired session simply
// starts over from upload.
type Manager struct {
	sessions *cache.Cache
}

// NewManager creates a session registry with the given idle TTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{
		sessions: cache.New(ttl, 2*ttl),
	}
}

// Put registers a session, refreshing its TTL.
func (m *Manager) Put(s *Session) {
	m.sessions.Set(s.ID(), s, cache.DefaultExpiration)
}

// Get looks a session up by id, refreshing its TTL on hit.
func (m *Manager) Get(id string) (*Session, bool) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s := v.(*Session)
	m.sessions.Set(id, s, cache.DefaultExpiration)
	return s, true
}

// Delete removes a session.
func (m *Manager) Delete(id string) {
	m.sessions.Delete(id)
}
