package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
)

var (
	// ErrClosed is returned by every operation after Close
	ErrClosed = errors.New("kvstore: store is closed")
	// ErrInvalidKey is returned for keys outside the safe character set
	ErrInvalidKey = errors.New("kvstore: invalid key")
)

// MaxKeyLength bounds key size for every backend
const MaxKeyLength = 256

// Store is a string key-value store
type Store interface {
	// Get returns the value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names a Store implementation
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendRedis  Backend = "redis"
	BackendSQLite Backend = "sqlite"
)

// Config selects and configures a backend
type Config struct {
	Backend Backend

	// Dir is the directory of the file backend
	Dir string

	Redis RedisConfig

	// SQLitePath is the database file of the sqlite backend
	SQLitePath string
}

// New opens the configured backend
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(cfg.Dir)
	case BackendRedis:
		return NewRedis(ctx, cfg.Redis)
	case BackendSQLite:
		return NewSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("kvstore: unknown backend %q", cfg.Backend)
	}
}

func validateKey(key string) error {
	if err := utils.ValidateString(key, "key", 1, MaxKeyLength, true); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if !utils.SafeIDPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
