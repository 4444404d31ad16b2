package screen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found")

// DefaultSessionTTL is how long an idle session is kept
const DefaultSessionTTL = 30 * time.Minute

// Store persists session states by id
type Store interface {
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, id string, s State) error
}

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	sessions *cache.Cache
}

// NewMemoryStore creates a store whose entries expire after ttl of inactivity
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{sessions: cache.New(ttl, 2*ttl)}
}

func (m *MemoryStore) Load(ctx context.Context, id string) (State, error) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return State{}, ErrSessionNotFound
	}
	return v.(State), nil
}

func (m *MemoryStore) Save(ctx context.Context, id string, s State) error {
	m.sessions.Set(id, s, cache.DefaultExpiration)
	return nil
}

const redisKeyPrefix = "routeplanner:session:"

// RedisStore shares sessions between server instances
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store on an existing client
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, id string) (State, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, ErrSessionNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("redis: failed to load session: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("redis: failed to decode session: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, s State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("redis: failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+id, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to save session: %w", err)
	}
	return nil
}
