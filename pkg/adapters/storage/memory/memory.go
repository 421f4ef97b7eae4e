// Package memory provides in-memory storage implementations for testing.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
)

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// Cache is an in-memory cache. Entries round-trip through JSON so behavior
// matches the Redis implementation.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache creates a new in-memory cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Get retrieves and unmarshals a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return true, nil
}

// Set stores a value with the given TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	entry := cacheEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	return nil
}

// HistoryStore is an in-memory session store
type HistoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewHistoryStore creates a new in-memory history store
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{sessions: make(map[string]*domain.Session)}
}

// SaveSession persists one session
func (s *HistoryStore) SaveSession(ctx context.Context, session *domain.Session) error {
	copied := *session

	s.mu.Lock()
	s.sessions[session.ID] = &copied
	s.mu.Unlock()

	return nil
}

// GetSession retrieves one session by id
func (s *HistoryStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ports.ErrNotFound
	}

	copied := *session
	return &copied, nil
}

// ListSessions returns all sessions, newest first
func (s *HistoryStore) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	s.mu.RLock()
	sessions := make([]*domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		copied := *session
		sessions = append(sessions, &copied)
	}
	s.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})

	return sessions, nil
}

// DeleteSession removes one session by id
func (s *HistoryStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.sessions, id)

	return nil
}

var (
	_ ports.Cache        = (*Cache)(nil)
	_ ports.HistoryStore = (*HistoryStore)(nil)
)
