package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// setupRedisStore starts a Redis container and returns a store connected to it.
// Tests are skipped when Docker is not available.
func setupRedisStore(t *testing.T, ttl time.Duration) *RedisStore {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Skipf("Redis container not available, skipping test: %v", err)
	}

	addr, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Skipf("Cannot resolve Redis endpoint, skipping test: %v", err)
	}

	store, err := NewRedisStoreFromClientOption(rueidis.ClientOption{
		InitAddress: []string{addr},
	}, ttl)
	if err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}
	t.Cleanup(store.Close)

	if err := store.Ping(ctx); err != nil {
		t.Skipf("Cannot connect to Redis, skipping test: %v", err)
	}
	return store
}

func TestRedisStore(t *testing.T) {
	store := setupRedisStore(t, time.Hour)
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		s := New("redis-auth")
		s.CompleteLogin(adaProfile())
		if err := store.Set(ctx, s); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := store.Get(ctx, "redis-auth")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !got.IsAuthenticated() {
			t.Fatalf("expected authenticated session, got %v", got.State)
		}
		if got.User.Profile.Name != "Ada" || got.User.Profile.Email != "ada@example.com" {
			t.Errorf("unexpected profile %+v", got.User.Profile)
		}
		if got.User.Profile.Claims["locale"] != "en_GB" {
			t.Errorf("provider-specific claim lost: %v", got.User.Profile.Claims)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		s := New("redis-overwrite")
		s.BeginLogin()
		_ = store.Set(ctx, s)
		s.AbandonLogin()
		_ = store.Set(ctx, s)

		got, err := store.Get(ctx, "redis-overwrite")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.State != StateAnonymous {
			t.Errorf("state = %v, want %v", got.State, StateAnonymous)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := store.Get(ctx, "redis-missing"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Get() error = %v, want %v", err, ErrSessionNotFound)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		if err := store.Set(ctx, nil); !errors.Is(err, ErrNilSession) {
			t.Errorf("Set(nil) error = %v, want %v", err, ErrNilSession)
		}
		if _, err := store.Get(ctx, ""); !errors.Is(err, ErrEmptySessionID) {
			t.Errorf("Get(\"\") error = %v, want %v", err, ErrEmptySessionID)
		}
	})
}

func TestRedisStore_Expiry(t *testing.T) {
	store := setupRedisStore(t, time.Second)
	ctx := context.Background()

	if err := store.Set(ctx, New("redis-expiring")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Wait for expiration
	time.Sleep(2 * time.Second)

	if _, err := store.Get(ctx, "redis-expiring"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() error = %v, want %v", err, ErrSessionNotFound)
	}
}
