package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache implements result memoization using Redis
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCache creates a new Redis cache
func NewCache(client *redis.Client, logger *zap.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Get retrieves and unmarshals a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, getCacheKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
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

	if err := c.client.Set(ctx, getCacheKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}

	return nil
}

// HistoryStore persists execution sessions using Redis
type HistoryStore struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewHistoryStore creates a new Redis history store
func NewHistoryStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *HistoryStore {
	return &HistoryStore{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// SaveSession persists one completed execution with the retention TTL
func (s *HistoryStore) SaveSession(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, getHistoryKey(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession retrieves one session by id
func (s *HistoryStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, getHistoryKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// ListSessions returns all retained sessions, newest first
func (s *HistoryStore) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	var sessions []*domain.Session

	iter := s.client.Scan(ctx, 0, historyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if err == redis.Nil {
				// Expired between SCAN and GET
				continue
			}
			return nil, fmt.Errorf("failed to get session: %w", err)
		}

		var session domain.Session
		if err := json.Unmarshal(data, &session); err != nil {
			s.logger.Warn("skipping unreadable session",
				zap.String("key", iter.Val()),
				zap.Error(err))
			continue
		}
		sessions = append(sessions, &session)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})

	return sessions, nil
}

// DeleteSession removes one session by id
func (s *HistoryStore) DeleteSession(ctx context.Context, id string) error {
	deleted, err := s.client.Del(ctx, getHistoryKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if deleted == 0 {
		return ports.ErrNotFound
	}

	return nil
}

const (
	cachePrefix   = "trivium:cache:"
	historyPrefix = "trivium:history:"
)

func getCacheKey(key string) string {
	return cachePrefix + key
}

func getHistoryKey(id string) string {
	return historyPrefix + id
}

var (
	_ ports.Cache        = (*Cache)(nil)
	_ ports.HistoryStore = (*HistoryStore)(nil)
)
