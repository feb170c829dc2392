// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-interactions.
//
// go-interactions is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package challenge

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed implementation of Store. Challenges are
// stored as hashes with a TTL, so multiple gateway instances can share
// one challenge space and abandoned entries expire server-side.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// RedisConfig holds Redis store configuration.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string

	// Password is the Redis password (optional).
	Password string

	// DB is the Redis database number.
	DB int

	// TTL is how long an issued challenge remains acceptable.
	// Defaults to DefaultTTL.
	TTL time.Duration
}

const redisKeyPrefix = "challenge:"

// transitionScript performs the check-and-set atomically on the Redis
// side. Returns 1 on success, 0 when the key is absent, -1 when the
// current state does not match the expected state.
var transitionScript = redis.NewScript(`
local current = redis.call("HGET", KEYS[1], "state")
if current == false then
  return 0
end
if current ~= ARGV[1] then
  return -1
end
redis.call("HSET", KEYS[1], "state", ARGV[2])
return 1
`)

// NewRedisStore creates a Redis-backed challenge store.
func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Create inserts or overwrites the challenge for id.
func (s *RedisStore) Create(ctx context.Context, id, challengerID, object string) (*Challenge, error) {
	c := &Challenge{
		ID:           id,
		ChallengerID: challengerID,
		Object:       object,
		State:        StateIssued,
		CreatedAt:    s.now().UTC(),
	}

	key := redisKeyPrefix + id
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"id", c.ID,
		"challenger_id", c.ChallengerID,
		"object", c.Object,
		"state", string(c.State),
		"created_at", c.CreatedAt.Format(time.RFC3339Nano),
	)
	if s.ttl > 0 {
		pipe.PExpire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// Get retrieves a challenge by id. Expiration is handled by Redis.
func (s *RedisStore) Get(ctx context.Context, id string) (*Challenge, error) {
	fields, err := s.client.HGetAll(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return challengeFromFields(fields)
}

// Transition atomically moves the challenge for id from one state to
// another using a server-side script, so concurrent acceptance attempts
// across gateway instances still resolve to exactly one winner.
func (s *RedisStore) Transition(ctx context.Context, id string, from, to State) (*Challenge, error) {
	key := redisKeyPrefix + id

	result, err := transitionScript.Run(ctx, s.client, []string{key}, string(from), string(to)).Int64()
	if err != nil {
		return nil, err
	}

	switch result {
	case 0:
		return nil, ErrNotFound
	case -1:
		return nil, ErrInvalidTransition
	}

	return s.Get(ctx, id)
}

// Ping verifies connectivity to the Redis server.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// challengeFromFields rebuilds a Challenge from a Redis hash.
func challengeFromFields(fields map[string]string) (*Challenge, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, err
	}
	return &Challenge{
		ID:           fields["id"],
		ChallengerID: fields["challenger_id"],
		Object:       fields["object"],
		State:        State(fields["state"]),
		CreatedAt:    createdAt,
	}, nil
}
