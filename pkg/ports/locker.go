package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates per-document access across bridge replicas.
// The in-process dispatcher already serializes operations per document handle;
// a DistributedLocker extends that guarantee when several bridge instances
// share one host process.
type DistributedLocker interface {
	// Lock acquires a lock for the given key (a document handle). It blocks
	// until the lock is acquired or the context is canceled. The returned
	// UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
