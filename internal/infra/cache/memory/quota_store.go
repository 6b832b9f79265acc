// Package memory holds in-process session and quota stores for single
// instance deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/quota"
)

type bucket struct {
	used    int64
	resetAt time.Time
}

// QuotaStore is a mutex-guarded quota.Store. Each Consume is a single
// read-modify-write under the lock.
type QuotaStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewQuotaStore(now func() time.Time) *QuotaStore {
	if now == nil {
		now = time.Now
	}
	return &QuotaStore{buckets: make(map[string]*bucket), now: now}
}

func (s *QuotaStore) Consume(_ context.Context, key string, tokens, limit int64, window time.Duration) (quota.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(window)}
		s.buckets[key] = b
	}

	if b.used+tokens > limit {
		return quota.Decision{Used: b.used, Remaining: max(0, limit-b.used), ResetAt: b.resetAt}, nil
	}
	b.used += tokens
	return quota.Decision{Allowed: true, Used: b.used, Remaining: limit - b.used, ResetAt: b.resetAt}, nil
}

// Sweep drops buckets whose window has passed.
func (s *QuotaStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, b := range s.buckets {
		if now.After(b.resetAt) {
			delete(s.buckets, k)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *QuotaStore) Run(ctx context.Context, interval time.Duration) error {
	return runEvery(ctx, interval, func() { s.Sweep() })
}

func runEvery(ctx context.Context, interval time.Duration, fn func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn()
		}
	}
}
