package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// StoreType names a session backend.
type StoreType string

const (
	// StoreTypeMemory keeps sessions in process memory; they vanish on restart.
	StoreTypeMemory StoreType = "memory"
	// StoreTypeRedis keeps sessions in Redis under session:<id>.
	StoreTypeRedis StoreType = "redis"
)

// Config selects and configures the session backend.
type Config struct {
	Type StoreType
	// TTL is how long a session lives after its last write.
	TTL time.Duration
	// Redis is only read for StoreTypeRedis.
	Redis RedisOptions
}

// NewStore builds the backend named by cfg.Type.
func NewStore(cfg Config) (Store, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	switch cfg.Type {
	case StoreTypeMemory:
		return NewMemoryStore(cfg.TTL), nil
	case StoreTypeRedis:
		return NewRedisStoreFromOptions(cfg.Redis, cfg.TTL)
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.Type)
	}
}

// ParseStoreType maps a SESSION_STORE value to a StoreType, case-insensitively.
// Anything unrecognised falls back to memory.
func ParseStoreType(s string) StoreType {
	if StoreType(strings.ToLower(strings.TrimSpace(s))) == StoreTypeRedis {
		return StoreTypeRedis
	}
	return StoreTypeMemory
}

func (t StoreType) String() string {
	return string(t)
}

// IsValid reports whether t names a known backend.
func (t StoreType) IsValid() bool {
	return t == StoreTypeMemory || t == StoreTypeRedis
}
