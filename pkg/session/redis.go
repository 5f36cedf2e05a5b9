package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// sessionPrefix namespaces session keys in Redis.
const sessionPrefix = "session:"

// RedisStore implements Store using Redis via rueidis.
// Expiry is delegated to the Redis key TTL.
type RedisStore struct {
	client rueidis.Client
	ttl    time.Duration
}

// RedisOptions contains configuration for Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore creates a new instance of RedisStore with the provided rueidis client.
func NewRedisStore(client rueidis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// NewRedisStoreFromOptions creates a new RedisStore with simplified options.
func NewRedisStoreFromOptions(opts RedisOptions, ttl time.Duration) (*RedisStore, error) {
	return NewRedisStoreFromClientOption(rueidis.ClientOption{
		InitAddress: []string{opts.Addr},
		Password:    opts.Password,
		SelectDB:    opts.DB,
	}, ttl)
}

// NewRedisStoreFromClientOption creates a new RedisStore with full rueidis client options.
func NewRedisStoreFromClientOption(opts rueidis.ClientOption, ttl time.Duration) (*RedisStore, error) {
	client, err := rueidis.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return NewRedisStore(client, ttl), nil
}

// Close closes the Redis client connection.
func (r *RedisStore) Close() {
	r.client.Close()
}

// Get retrieves a session from Redis by ID.
// It returns ErrSessionNotFound if the key does not exist or has expired.
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	cmd := r.client.B().Get().Key(sessionPrefix + id).Build()
	result, err := r.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var s Session
	if err := json.Unmarshal(result, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	s.normalize()
	return &s, nil
}

// Set stores the session as JSON and resets its TTL.
func (r *RedisStore) Set(ctx context.Context, s *Session) error {
	if err := validate(s); err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	seconds := int64(r.ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	cmd := r.client.B().Set().Key(sessionPrefix + s.ID).Value(rueidis.BinaryString(data)).ExSeconds(seconds).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Do(ctx, r.client.B().Ping().Build()).Error()
}
