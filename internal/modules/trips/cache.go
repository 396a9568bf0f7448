package trips

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DraftStore is the ephemeral draft store contract: a key/value cache with
// per-entry expiration, keyed by trip identifier and holding the UTF-8 JSON
// serialization of an itinerary variant. The draft copy is authoritative
// until explicitly persisted; expiration is its only reclamation.
type DraftStore interface {
	Get(tripID string) ([]byte, bool)
	Set(tripID string, doc []byte, ttl time.Duration)
	Delete(tripID string)
}

// MemoryDraftStore backs DraftStore with an in-process expiring cache.
type MemoryDraftStore struct {
	entries *gocache.Cache
}

// NewMemoryDraftStore creates a store whose entries default to defaultTTL
// when Set is called with a non-positive duration.
func NewMemoryDraftStore(defaultTTL time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{
		entries: gocache.New(defaultTTL, 10*time.Minute),
	}
}

func (m *MemoryDraftStore) Get(tripID string) ([]byte, bool) {
	v, ok := m.entries.Get(tripID)
	if !ok {
		return nil, false
	}
	doc, ok := v.([]byte)
	return doc, ok
}

func (m *MemoryDraftStore) Set(tripID string, doc []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.entries.Set(tripID, doc, ttl)
}

func (m *MemoryDraftStore) Delete(tripID string) {
	m.entries.Delete(tripID)
}
