package distributed

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lease is a Redis-backed mutual exclusion lease. At most one instance holds
// a given lease at a time; periodic work guarded by the lease therefore runs
// on exactly one instance of a deployment.
type Lease interface {
	// TryAcquire attempts to take the lease, returning true when this
	// instance now holds it. It never blocks waiting for the holder.
	TryAcquire(ctx context.Context) (bool, error)

	// Renew extends the lease TTL. It fails if this instance no longer
	// holds the lease.
	Renew(ctx context.Context) (bool, error)

	// Release gives the lease up. Releasing a lease held by another
	// instance is a no-op.
	Release(ctx context.Context) error

	// Holder returns the instance ID currently holding the lease, or an
	// empty string when the lease is free.
	Holder(ctx context.Context) (string, error)

	// InstanceID returns this instance's identifier.
	InstanceID() string
}

// Config holds configuration for a Redis lease.
type Config struct {
	// Redis client for coordination
	Redis redis.UniversalClient

	// Key is the Redis key the lease is stored under
	Key string

	// TTL is how long an acquired lease lives without renewal
	TTL time.Duration

	// InstanceID uniquely identifies this application instance
	InstanceID string

	// RedisTimeout is the timeout for Redis operations
	RedisTimeout time.Duration
}

// DefaultConfig returns a default lease configuration.
func DefaultConfig() Config {
	return Config{
		InstanceID:   generateInstanceID(),
		TTL:          30 * time.Second,
		RedisTimeout: 500 * time.Millisecond,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "lease config error: " + e.Message
}

// RedisError represents a Redis operation error.
type RedisError struct {
	Operation string
	Err       error
}

func (e *RedisError) Error() string {
	return "redis error in " + e.Operation + ": " + e.Err.Error()
}

func (e *RedisError) Unwrap() error {
	return e.Err
}

// Lua script to renew the lease only when this instance still holds it.
const luaRenew = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`

// Lua script to release the lease only when this instance still holds it.
const luaRelease = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type redisLease struct {
	config Config

	renewScript   *redis.Script
	releaseScript *redis.Script
}

// NewLease creates a Redis lease from config. It does not touch Redis; the
// first network round trip happens on TryAcquire.
func NewLease(config Config) (Lease, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = applyConfigDefaults(config)

	return &redisLease{
		config:        config,
		renewScript:   redis.NewScript(luaRenew),
		releaseScript: redis.NewScript(luaRelease),
	}, nil
}

// validateConfig validates the lease configuration.
func validateConfig(config Config) error {
	if config.Redis == nil {
		return &ConfigError{"redis client is required"}
	}
	if config.Key == "" {
		return &ConfigError{"key is required"}
	}
	if config.TTL < 0 {
		return &ConfigError{"ttl must not be negative"}
	}
	return nil
}

// applyConfigDefaults sets default values for unspecified config fields.
func applyConfigDefaults(config Config) Config {
	if config.InstanceID == "" {
		config.InstanceID = generateInstanceID()
	}
	if config.TTL == 0 {
		config.TTL = 30 * time.Second
	}
	if config.RedisTimeout == 0 {
		config.RedisTimeout = 500 * time.Millisecond
	}
	return config
}

func (l *redisLease) TryAcquire(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.config.RedisTimeout)
	defer cancel()

	ok, err := l.config.Redis.SetNX(ctx, l.config.Key, l.config.InstanceID, l.config.TTL).Result()
	if err != nil {
		return false, &RedisError{"acquire", err}
	}
	if ok {
		return true, nil
	}

	// SetNX loses to our own stale value after a crash and restart with a
	// stable instance ID; treat holding our own ID as acquired.
	holder, err := l.Holder(ctx)
	if err != nil {
		return false, err
	}
	return holder == l.config.InstanceID, nil
}

func (l *redisLease) Renew(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.config.RedisTimeout)
	defer cancel()

	result, err := l.renewScript.Run(ctx, l.config.Redis,
		[]string{l.config.Key},
		l.config.InstanceID,
		l.config.TTL.Milliseconds(),
	).Result()
	if err != nil {
		return false, &RedisError{"renew", err}
	}

	renewed, ok := result.(int64)
	return ok && renewed == 1, nil
}

func (l *redisLease) Release(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.config.RedisTimeout)
	defer cancel()

	if _, err := l.releaseScript.Run(ctx, l.config.Redis,
		[]string{l.config.Key},
		l.config.InstanceID,
	).Result(); err != nil {
		return &RedisError{"release", err}
	}
	return nil
}

func (l *redisLease) Holder(ctx context.Context) (string, error) {
	holder, err := l.config.Redis.Get(ctx, l.config.Key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", &RedisError{"holder", err}
	}
	return holder, nil
}

func (l *redisLease) InstanceID() string {
	return l.config.InstanceID
}
