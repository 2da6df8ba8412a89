package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/installment-plan/internal/plan"
	"github.com/iwvelando/installment-plan/pkg/constants"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps results as JSON values in Redis with a TTL.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with a PING.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Address, err)
	}
	return NewRedisStoreWithClient(client, opts.TTL), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl, prefix: constants.SessionKeyPrefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Save stores result under id with the store TTL.
func (s *RedisStore) Save(ctx context.Context, id string, result plan.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store plan %s: %w", id, err)
	}
	return nil
}

// Load returns the result stored under id.
func (s *RedisStore) Load(ctx context.Context, id string) (plan.Result, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return plan.Result{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return plan.Result{}, fmt.Errorf("failed to load plan %s: %w", id, err)
	}
	var result plan.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return plan.Result{}, fmt.Errorf("failed to decode plan %s: %w", id, err)
	}
	return result, nil
}

// Delete removes id.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete plan %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
