package session

import (
	"context"
	"fmt"

	"github.com/iwvelando/installment-plan/pkg/constants"
)

// Open returns the store for the named backend. The returned function
// releases any connections the store holds.
func Open(ctx context.Context, backend string, opts RedisOptions) (Store, func() error, error) {
	switch backend {
	case "", constants.SessionBackendMemory:
		return NewMemoryStore(opts.TTL), func() error { return nil }, nil
	case constants.SessionBackendRedis:
		store, err := NewRedisStore(ctx, opts)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session backend %q", backend)
	}
}
