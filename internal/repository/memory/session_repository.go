// Package memory keeps sessions in an expiring in-process cache. Idle
// sessions fall out after the configured TTL instead of accumulating for the
// life of the process.
package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"voice-agent-be/pkg/store"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository builds a session cache whose entries expire ttl after
// their last Save. A ttl of zero or less disables expiry entirely.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		return &SessionRepository{cache: cache.New(cache.NoExpiration, 0)}
	}
	// Purge expired sessions at a fraction of the TTL so memory is
	// reclaimed well before the next save cycle
	return &SessionRepository{cache: cache.New(ttl, ttl/6)}
}

// Save stores the session and refreshes its expiry window.
func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

// Keys returns the ids of every live session, in no particular order.
func (r *SessionRepository) Keys() []string {
	items := r.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	return keys
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
