package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/session"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock { return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)} }

func TestQuotaStore(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := NewQuotaStore(clock.Now)

	d, err := s.Consume(ctx, "ip:negotiation", 60, 100, time.Hour)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(40), d.Remaining)
	assert.Equal(t, clock.Now().Add(time.Hour), d.ResetAt)

	d, _ = s.Consume(ctx, "ip:negotiation", 50, 100, time.Hour)
	assert.False(t, d.Allowed)
	assert.Equal(t, int64(60), d.Used, "refused charge is not recorded")

	d, _ = s.Consume(ctx, "ip:salary", 50, 100, time.Hour)
	assert.True(t, d.Allowed, "keys are independent")

	clock.Advance(time.Hour + time.Second)
	d, _ = s.Consume(ctx, "ip:negotiation", 100, 100, time.Hour)
	assert.True(t, d.Allowed, "window reset")
	assert.Equal(t, int64(0), d.Remaining)

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 2, s.Sweep())
}

func TestQuotaStore_Concurrent(t *testing.T) {
	s := NewQuotaStore(nil)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, _ := s.Consume(context.Background(), "k", 10, 100, time.Minute)
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := NewSessionStore(clock.Now)

	sess := session.Session{ID: "abc", Username: "admin", CreatedAt: clock.Now(), ExpiresAt: clock.Now().Add(time.Hour)}
	require.NoError(t, s.Save(ctx, sess))

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrInvalid)

	clock.Advance(time.Hour)
	_, err = s.Get(ctx, "abc")
	assert.ErrorIs(t, err, session.ErrInvalid, "expired")
	assert.Equal(t, 1, s.Sweep())

	require.NoError(t, s.Save(ctx, session.Session{ID: "x", ExpiresAt: clock.Now().Add(time.Hour)}))
	require.NoError(t, s.Delete(ctx, "x"))
	_, err = s.Get(ctx, "x")
	assert.ErrorIs(t, err, session.ErrInvalid)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewSessionStore(nil).Run(ctx, time.Millisecond) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
